package http

import (
	"context"
	"time"

	"github.com/medskill-verify/internal/domain"
)

// PendingRepository is the minimal interface the router requires from a pending-registration store.
type PendingRepository interface {
	Upsert(ctx context.Context, p *domain.PendingRegistration) error
	Claim(ctx context.Context, token, claimID string, until, now time.Time) (*domain.PendingRegistration, error)
	Release(ctx context.Context, email, claimID string) error
	Delete(ctx context.Context, email, claimID string) error
}

// ProfileRepository is the minimal interface the router requires from a user-profile store.
type ProfileRepository interface {
	Insert(ctx context.Context, p *domain.UserProfile) error
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// IdentityProvider is the minimal interface the router requires from the auth server's admin API.
type IdentityProvider interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.Identity, error)
	CreateUser(ctx context.Context, u domain.NewIdentity) (*domain.Identity, error)
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error
}

// VerificationDispatcher delivers the verification link to a new registrant.
type VerificationDispatcher interface {
	SendVerification(ctx context.Context, email, token string) error
}
