package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medskill-verify/internal/domain"
	pkgtoken "github.com/medskill-verify/internal/pkg/token"
	"github.com/medskill-verify/internal/pkg/validate"
)

// Service accepts new registrations and sends the verification email.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
}

type pendingStore interface {
	// Upsert replaces any earlier pending registration for the same email.
	Upsert(ctx context.Context, p *domain.PendingRegistration) error
}

type dispatcher interface {
	SendVerification(ctx context.Context, email, token string) error
}

type service struct {
	pendingRepo pendingStore
	dispatcher  dispatcher
	expiry      ExpiryPolicy
	bcryptCost  int
	now         func() time.Time
}

type ServiceDeps struct {
	PendingRepo pendingStore
	Dispatcher  dispatcher
	Expiry      ExpiryPolicy // defaults to NoExpiry
	BcryptCost  int          // defaults to bcrypt.DefaultCost
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		pendingRepo: deps.PendingRepo,
		dispatcher:  deps.Dispatcher,
		expiry:      deps.Expiry,
		bcryptCost:  deps.BcryptCost,
		now:         deps.Now,
	}
	if s.expiry == nil {
		s.expiry = NoExpiry{}
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	req.Email = NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}

	verifyToken, err := pkgtoken.NewVerifyToken()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	p := &domain.PendingRegistration{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		University:   req.University,
		VerifyToken:  verifyToken,
		CreatedAt:    now,
	}
	if exp := s.expiry.ExpiresAt(now); !exp.IsZero() {
		p.ExpiresAt = exp.Unix()
	}
	if err := s.pendingRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	// The pending row is kept if delivery fails; registering again replaces it.
	if err := s.dispatcher.SendVerification(ctx, req.Email, verifyToken); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	slog.Info("pending registration created", "email", req.Email)
	return nil
}

// NormalizeEmail trims and lower-cases an address so that pending rows and
// identity lookups agree on a single key per mailbox.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
