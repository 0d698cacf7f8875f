package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medskill-verify/internal/domain"
)

const pendingColumns = `email, password_hash, full_name, university, verify_token,
	COALESCE(claim_id, ''), COALESCE(claimed_until, 0), COALESCE(expires_at, 0), created_at`

type PendingRepo struct {
	db querier
}

func NewPendingRepo(db *Connection) *PendingRepo {
	return &PendingRepo{db: db}
}

// Upsert stores the registration, replacing any earlier one for the same
// email along with its token and claim.
func (r *PendingRepo) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	query := `INSERT INTO pending_users (email, password_hash, full_name, university, verify_token, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6::bigint, 0), $7)
			  ON CONFLICT (email) DO UPDATE SET
			      password_hash = EXCLUDED.password_hash,
			      full_name     = EXCLUDED.full_name,
			      university    = EXCLUDED.university,
			      verify_token  = EXCLUDED.verify_token,
			      expires_at    = EXCLUDED.expires_at,
			      created_at    = EXCLUDED.created_at,
			      claim_id      = NULL,
			      claimed_until = NULL`

	_, err := r.db.Exec(ctx, query,
		p.Email, p.PasswordHash, p.FullName, p.University, p.VerifyToken, p.ExpiresAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pending registration: %w", err)
	}
	return nil
}

func (r *PendingRepo) Claim(ctx context.Context, token, claimID string, until, now time.Time) (*domain.PendingRegistration, error) {
	query := `UPDATE pending_users SET claim_id = $2, claimed_until = $3
			  WHERE verify_token = $1 AND (claim_id IS NULL OR claimed_until < $4)
			  RETURNING ` + pendingColumns

	var p domain.PendingRegistration
	err := r.db.QueryRow(ctx, query, token, claimID, until.Unix(), now.Unix()).Scan(
		&p.Email, &p.PasswordHash, &p.FullName, &p.University, &p.VerifyToken,
		&p.ClaimID, &p.ClaimedUntil, &p.ExpiresAt, &p.CreatedAt,
	)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim pending registration: %w", err)
	}

	held, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM pending_users WHERE verify_token = $1)`, token)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, fmt.Errorf("pending registration claimed: %w", domain.ErrConflict)
	}
	return nil, fmt.Errorf("pending registration: %w", domain.ErrNotFound)
}

func (r *PendingRepo) Release(ctx context.Context, email, claimID string) error {
	query := `UPDATE pending_users SET claim_id = NULL, claimed_until = NULL
			  WHERE email = $1 AND claim_id = $2`

	if _, err := r.db.Exec(ctx, query, email, claimID); err != nil {
		return fmt.Errorf("failed to release pending registration: %w", err)
	}
	return nil
}

// Delete removes the row only while claimID still holds it. A row that is
// already gone is not an error.
func (r *PendingRepo) Delete(ctx context.Context, email, claimID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pending_users WHERE email = $1 AND claim_id = $2`, email, claimID)
	if err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	present, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM pending_users WHERE email = $1)`, email)
	if err != nil {
		return err
	}
	if present {
		return fmt.Errorf("pending registration reclaimed: %w", domain.ErrConflict)
	}
	return nil
}

func (r *PendingRepo) exists(ctx context.Context, query string, arg string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check pending registration: %w", err)
	}
	return ok, nil
}
