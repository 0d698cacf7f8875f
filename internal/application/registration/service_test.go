package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medskill-verify/internal/domain"
)

// --- mocks ---

type mockPendingStore struct{ mock.Mock }

func (m *mockPendingStore) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	return m.Called(ctx, p).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) SendVerification(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

// --- builder ---

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newService(ps *mockPendingStore, d *mockDispatcher, expiry ExpiryPolicy) Service {
	return NewService(ServiceDeps{
		PendingRepo: ps,
		Dispatcher:  d,
		Expiry:      expiry,
		BcryptCost:  bcrypt.MinCost,
		Now:         func() time.Time { return fixedNow },
	})
}

func TestRegister_MissingPassword_ReturnsValidation(t *testing.T) {
	svc := newService(nil, nil, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRegister_BlankEmail_ReturnsValidation(t *testing.T) {
	svc := newService(nil, nil, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "   ", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegister_HappyPath(t *testing.T) {
	ps := &mockPendingStore{}
	d := &mockDispatcher{}

	var saved *domain.PendingRegistration
	ps.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.PendingRegistration")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.PendingRegistration) }).
		Return(nil)
	d.On("SendVerification", mock.Anything, "a@x.com", mock.AnythingOfType("string")).Return(nil)

	svc := newService(ps, d, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: " A@X.com ", Password: "p", FullName: "A", University: "U",
	})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "a@x.com", saved.Email)
	assert.Equal(t, "A", saved.FullName)
	assert.Equal(t, "U", saved.University)
	assert.Len(t, saved.VerifyToken, 64)
	assert.Zero(t, saved.ExpiresAt)
	assert.Equal(t, fixedNow, saved.CreatedAt)

	// plaintext is never stored
	assert.NotEqual(t, "p", saved.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("p")))

	// the mailed token is the stored one
	d.AssertCalled(t, "SendVerification", mock.Anything, "a@x.com", saved.VerifyToken)
	ps.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestRegister_FixedTTL_SetsExpiry(t *testing.T) {
	ps := &mockPendingStore{}
	d := &mockDispatcher{}
	ps.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.PendingRegistration) bool {
		return p.ExpiresAt == fixedNow.Add(48*time.Hour).Unix()
	})).Return(nil)
	d.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(ps, d, FixedTTL(48*time.Hour))
	require.NoError(t, svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "p"}))
	ps.AssertExpectations(t)
}

func TestRegister_StoreFailure_ReturnsStoreError(t *testing.T) {
	ps := &mockPendingStore{}
	ps.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("row rejected by policy"))

	svc := newService(ps, &mockDispatcher{}, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "p"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))
	assert.ErrorContains(t, err, "row rejected by policy")
}

func TestRegister_DispatchFailure_IsNotStoreError(t *testing.T) {
	ps := &mockPendingStore{}
	d := &mockDispatcher{}
	ps.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	d.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(ps, d, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "p"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrStore))
	assert.False(t, errors.Is(err, domain.ErrValidation))
}

func TestRegister_SameEmailTwice_GetsDistinctTokens(t *testing.T) {
	ps := &mockPendingStore{}
	d := &mockDispatcher{}
	var tokens []string
	ps.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			tokens = append(tokens, args.Get(1).(*domain.PendingRegistration).VerifyToken)
		}).Return(nil)
	d.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(ps, d, nil)
	req := domain.RegisterRequest{Email: "a@x.com", Password: "p"}
	require.NoError(t, svc.Register(context.Background(), req))
	require.NoError(t, svc.Register(context.Background(), req))

	require.Len(t, tokens, 2)
	assert.NotEqual(t, tokens[0], tokens[1])
}

func TestPolicyFor(t *testing.T) {
	assert.IsType(t, NoExpiry{}, PolicyFor(0))
	assert.True(t, PolicyFor(0).ExpiresAt(fixedNow).IsZero())
	assert.Equal(t, fixedNow.Add(time.Hour), PolicyFor(time.Hour).ExpiresAt(fixedNow))
}
