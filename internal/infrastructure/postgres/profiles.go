package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medskill-verify/internal/domain"
)

type ProfileRepo struct {
	db querier
}

func NewProfileRepo(db *Connection) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Insert(ctx context.Context, p *domain.UserProfile) error {
	query := `INSERT INTO users (id, email, full_name, university, is_verified, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query, p.UserID, p.Email, p.FullName, p.University, p.IsVerified, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user profile %s: %w", p.UserID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert user profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT id, email, full_name, university, is_verified, created_at
			  FROM users WHERE id = $1`

	var p domain.UserProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Email, &p.FullName, &p.University, &p.IsVerified, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &p, nil
}
