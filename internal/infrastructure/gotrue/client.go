package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medskill-verify/internal/domain"
)

const (
	adminUsersPath = "/auth/v1/admin/users"
	defaultPerPage = 1000
)

// TokenSource yields the bearer token for admin API calls.
type TokenSource interface {
	ServiceToken() (string, error)
}

// StaticKey is a pre-issued service role key.
type StaticKey string

func (k StaticKey) ServiceToken() (string, error) { return string(k), nil }

// Client talks to the GoTrue admin API (Supabase Auth) to look up, create and
// update identities.
type Client struct {
	baseURL    string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
	perPage    int
}

// Option customises a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithPerPage sets the list page size. Non-positive values keep the default.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// NewClient builds an admin client for the project at baseURL. apiKey is sent
// as the apikey header; tokens provides the Authorization bearer. An empty
// apiKey sends the bearer token as the apikey as well.
func NewClient(baseURL, apiKey string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gotrue: base url is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("gotrue: token source is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		perPage:    defaultPerPage,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type user struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
}

func (u *user) toIdentity() *domain.Identity {
	return &domain.Identity{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		Metadata:       u.UserMetadata,
	}
}

type listUsersResponse struct {
	Users []user `json:"users"`
}

type createUserRequest struct {
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash,omitempty"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type updateUserRequest struct {
	UserMetadata map[string]any `json:"user_metadata"`
}

// apiError is the error body returned by GoTrue.
type apiError struct {
	Code      any    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
}

// FindUserByEmail pages through the admin user list and matches the email
// case-insensitively. It returns domain.ErrNotFound when nobody matches.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		var resp listUsersResponse
		if err := c.do(ctx, http.MethodGet, adminUsersPath+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for i := range resp.Users {
			if strings.EqualFold(resp.Users[i].Email, email) {
				return resp.Users[i].toIdentity(), nil
			}
		}
		if len(resp.Users) < c.perPage {
			return nil, fmt.Errorf("identity %s: %w", email, domain.ErrNotFound)
		}
	}
}

// CreateUser creates a confirmed identity from a bcrypt password hash.
// An already-registered email returns domain.ErrConflict.
func (c *Client) CreateUser(ctx context.Context, nu domain.NewIdentity) (*domain.Identity, error) {
	var u user
	err := c.do(ctx, http.MethodPost, adminUsersPath, createUserRequest{
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		EmailConfirm: nu.EmailConfirmed,
		UserMetadata: nu.Metadata,
	}, &u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u.toIdentity(), nil
}

// UpdateUserMetadata replaces the user_metadata of the identity.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("identity id %q: %w", userID, domain.ErrBadRequest)
	}
	if err := c.do(ctx, http.MethodPut, adminUsersPath+"/"+userID, updateUserRequest{UserMetadata: metadata}, nil); err != nil {
		return fmt.Errorf("update user metadata: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	bearer, err := c.tokens.ServiceToken()
	if err != nil {
		return err
	}
	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = bearer
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	_ = json.Unmarshal(raw, &ae)
	msg := ae.Msg
	if msg == "" {
		msg = ae.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	err := fmt.Errorf("gotrue %d: %s", resp.StatusCode, msg)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", err, domain.ErrNotFound)
	case isEmailExists(resp.StatusCode, ae.ErrorCode, msg):
		return fmt.Errorf("%w: %w", err, domain.ErrConflict)
	}
	return err
}

func isEmailExists(status int, code, msg string) bool {
	if code == "email_exists" || code == "user_already_exists" {
		return true
	}
	if status != http.StatusUnprocessableEntity && status != http.StatusConflict {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "already been registered") || strings.Contains(lower, "already registered")
}
