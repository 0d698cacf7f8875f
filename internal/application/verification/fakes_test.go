package verification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/medskill-verify/internal/domain"
)

// memPending mimics the conditional-write semantics of the real pending stores.
type memPending struct {
	mu     sync.Mutex
	rows   map[string]domain.PendingRegistration
	writes int
}

func newMemPending() *memPending {
	return &memPending{rows: make(map[string]domain.PendingRegistration)}
}

func (m *memPending) Upsert(_ context.Context, p *domain.PendingRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.rows[p.Email] = *p
	return nil
}

func (m *memPending) Claim(_ context.Context, token, claimID string, until, now time.Time) (*domain.PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, p := range m.rows {
		if p.VerifyToken != token {
			continue
		}
		if p.ClaimID != "" && p.ClaimedUntil > now.Unix() {
			return nil, domain.ErrConflict
		}
		m.writes++
		p.ClaimID = claimID
		p.ClaimedUntil = until.Unix()
		m.rows[email] = p
		out := p
		return &out, nil
	}
	return nil, fmt.Errorf("pending registration: %w", domain.ErrNotFound)
}

func (m *memPending) Release(_ context.Context, email, claimID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[email]
	if !ok || p.ClaimID != claimID {
		return nil
	}
	m.writes++
	p.ClaimID, p.ClaimedUntil = "", 0
	m.rows[email] = p
	return nil
}

func (m *memPending) Delete(_ context.Context, email, claimID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[email]
	if !ok {
		return nil
	}
	if p.ClaimID != claimID {
		return domain.ErrConflict
	}
	m.writes++
	delete(m.rows, email)
	return nil
}

func (m *memPending) get(email string) (domain.PendingRegistration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[email]
	return p, ok
}

type memProfiles struct {
	mu      sync.Mutex
	rows    map[string]domain.UserProfile
	inserts int
	failN   int // fail the next failN inserts with failErr
	failErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: make(map[string]domain.UserProfile)}
}

func (m *memProfiles) Insert(_ context.Context, p *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failN > 0 {
		m.failN--
		return m.failErr
	}
	if _, ok := m.rows[p.UserID]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint: %w", domain.ErrConflict)
	}
	m.rows[p.UserID] = *p
	return nil
}

func (m *memProfiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memIdentities is a stand-in identity provider enforcing one identity per email.
type memIdentities struct {
	mu          sync.Mutex
	users       map[string]*domain.Identity
	seq         int
	creates     int
	metaUpdates int
	createErr   error
}

func newMemIdentities() *memIdentities {
	return &memIdentities{users: make(map[string]*domain.Identity)}
}

func (m *memIdentities) FindUserByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memIdentities) CreateUser(_ context.Context, nu domain.NewIdentity) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, nu.Email) {
			return nil, fmt.Errorf("email_exists: %w", domain.ErrConflict)
		}
	}
	m.seq++
	m.creates++
	u := &domain.Identity{
		ID:             fmt.Sprintf("id-%d", m.seq),
		Email:          nu.Email,
		EmailConfirmed: nu.EmailConfirmed,
		Metadata:       nu.Metadata,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memIdentities) UpdateUserMetadata(_ context.Context, userID string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	m.metaUpdates++
	u.Metadata = metadata
	return nil
}

func (m *memIdentities) seed(u domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
}

func (m *memIdentities) byEmail(email string) []domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Identity
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, *u)
		}
	}
	return out
}

// mailbox records the last token sent to each address.
type mailbox struct {
	mu   sync.Mutex
	sent map[string][]string
}

func newMailbox() *mailbox { return &mailbox{sent: make(map[string][]string)} }

func (m *mailbox) SendVerification(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[email] = append(m.sent[email], token)
	return nil
}

func (m *mailbox) tokens(email string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent[email]...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
