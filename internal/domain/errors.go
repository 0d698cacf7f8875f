package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")

	// ErrValidation marks a registration missing a required field.
	ErrValidation = errors.New("validation failed")
	// ErrStore marks a row-store rejection during intake.
	ErrStore = errors.New("store rejected write")
	// ErrInvalidOrUsedToken covers both unknown and consumed tokens; callers
	// must not be able to tell the two apart.
	ErrInvalidOrUsedToken = errors.New("token invalid or already used")
	// ErrVerificationInProgress is returned while another request holds the
	// claim on the same pending registration.
	ErrVerificationInProgress = errors.New("verification in progress")
	// ErrProvider wraps any identity-provider or row-store failure during
	// finalization. It is always safe to retry with the same token.
	ErrProvider = errors.New("provider error")
)
