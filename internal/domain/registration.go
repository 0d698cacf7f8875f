package domain

import "time"

// PendingRegistration is a provisional account waiting for email verification.
// PK: email. verify_token is indexed for lookup.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; zero means no expiry.
type PendingRegistration struct {
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FullName     string    `json:"full_name" dynamodbav:"full_name"`
	University   string    `json:"university" dynamodbav:"university"`
	VerifyToken  string    `json:"-" dynamodbav:"verify_token"`
	ClaimID      string    `json:"-" dynamodbav:"claim_id,omitempty"`
	ClaimedUntil int64     `json:"-" dynamodbav:"claimed_until,omitempty"`
	ExpiresAt    int64     `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the registration is past its expiry at now.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return p.ExpiresAt != 0 && p.ExpiresAt <= now.Unix()
}

// RegisterRequest is the intake payload. Only presence of email and password is checked.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	FullName   string `json:"full_name"`
	University string `json:"university"`
}
