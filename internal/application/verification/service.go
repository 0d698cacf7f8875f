package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medskill-verify/internal/domain"
	"github.com/medskill-verify/internal/pkg/id"
)

// Result describes a successful verification.
type Result struct {
	UserID string
	// Replayed is true when the identity already existed, e.g. a retry after
	// a partial failure or an account created out of band.
	Replayed bool
}

// Service turns a verification token into a durable account.
type Service interface {
	Verify(ctx context.Context, token string) (*Result, error)
}

type pendingStore interface {
	// Claim atomically marks the pending row holding token as owned by claimID
	// until the given time. It returns domain.ErrNotFound when no row holds the
	// token and domain.ErrConflict when another live claim exists.
	Claim(ctx context.Context, token, claimID string, until, now time.Time) (*domain.PendingRegistration, error)
	// Release clears the claim if it is still held by claimID.
	Release(ctx context.Context, email, claimID string) error
	// Delete removes the pending row if it is still held by claimID.
	Delete(ctx context.Context, email, claimID string) error
}

type profileStore interface {
	// Insert creates the profile row; a duplicate returns domain.ErrConflict.
	Insert(ctx context.Context, p *domain.UserProfile) error
}

type identityProvider interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.Identity, error)
	CreateUser(ctx context.Context, u domain.NewIdentity) (*domain.Identity, error)
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error
}

type service struct {
	pendingRepo pendingStore
	profileRepo profileStore
	identities  identityProvider
	lease       time.Duration
	now         func() time.Time
}

type ServiceDeps struct {
	PendingRepo pendingStore
	ProfileRepo profileStore
	Identities  identityProvider
	ClaimLease  time.Duration // defaults to 30s
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		pendingRepo: deps.PendingRepo,
		profileRepo: deps.ProfileRepo,
		identities:  deps.Identities,
		lease:       deps.ClaimLease,
		now:         deps.Now,
	}
	if s.lease <= 0 {
		s.lease = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Verify(ctx context.Context, token string) (*Result, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidOrUsedToken
	}

	now := s.now().UTC()
	claimID := id.New()
	p, err := s.pendingRepo.Claim(ctx, token, claimID, now.Add(s.lease), now)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrInvalidOrUsedToken
	case errors.Is(err, domain.ErrConflict):
		return nil, domain.ErrVerificationInProgress
	case err != nil:
		return nil, providerErr("claim pending registration", err)
	}

	if p.Expired(now) {
		if err := s.pendingRepo.Delete(ctx, p.Email, claimID); err != nil {
			slog.Warn("failed to delete expired pending registration", "email", p.Email, "err", err)
		}
		return nil, domain.ErrInvalidOrUsedToken
	}

	res, err := s.finalize(ctx, p, claimID)
	if err != nil {
		// Keep the pending row so the same token can be retried.
		if rErr := s.pendingRepo.Release(context.WithoutCancel(ctx), p.Email, claimID); rErr != nil {
			slog.Warn("failed to release verification claim", "email", p.Email, "err", rErr)
		}
		return nil, err
	}
	slog.Info("account verified", "email", p.Email, "user_id", res.UserID, "replayed", res.Replayed)
	return res, nil
}

func (s *service) finalize(ctx context.Context, p *domain.PendingRegistration, claimID string) (*Result, error) {
	ident, existed, err := s.resolveIdentity(ctx, p)
	if err != nil {
		return nil, err
	}

	// Always rewrite metadata so a replay repairs drift on existing identities.
	if err := s.identities.UpdateUserMetadata(ctx, ident.ID, domain.ProfileMetadata(p.FullName, p.University)); err != nil {
		return nil, providerErr("update identity metadata", err)
	}

	profile := &domain.UserProfile{
		UserID:     ident.ID,
		Email:      p.Email,
		FullName:   nullable(p.FullName),
		University: nullable(p.University),
		IsVerified: true,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.profileRepo.Insert(ctx, profile); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, providerErr("insert user profile", err)
		}
		slog.Debug("user profile already exists", "user_id", ident.ID)
	}

	if err := s.pendingRepo.Delete(ctx, p.Email, claimID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrVerificationInProgress
		}
		return nil, providerErr("delete pending registration", err)
	}
	return &Result{UserID: ident.ID, Replayed: existed}, nil
}

// resolveIdentity returns the identity for the pending email, creating it when
// absent. existed reports whether it was found rather than created.
func (s *service) resolveIdentity(ctx context.Context, p *domain.PendingRegistration) (ident *domain.Identity, existed bool, err error) {
	ident, err = s.findIdentity(ctx, p.Email)
	if err != nil {
		return nil, false, err
	}
	if ident != nil {
		return ident, true, nil
	}

	ident, err = s.identities.CreateUser(ctx, domain.NewIdentity{
		Email:          p.Email,
		PasswordHash:   p.PasswordHash,
		EmailConfirmed: true,
		Metadata:       domain.ProfileMetadata(p.FullName, p.University),
	})
	if errors.Is(err, domain.ErrConflict) {
		// Created concurrently by someone else; reuse it.
		ident, err = s.findIdentity(ctx, p.Email)
		if err == nil && ident == nil {
			err = providerErr("create identity", domain.ErrConflict)
		}
		return ident, true, err
	}
	if err != nil {
		return nil, false, providerErr("create identity", err)
	}
	return ident, false, nil
}

func (s *service) findIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	ident, err := s.identities.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, providerErr("find identity", err)
	}
	return ident, nil
}

func providerErr(step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, domain.ErrProvider, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
