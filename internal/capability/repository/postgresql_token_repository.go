// Package repository implements capability token persistence for PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	"github.com/biodidseq/bioseq/internal/database"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

// PostgreSQLTokenRepository implements token-record persistence for
// PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new token record.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, record *domain.TokenRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO capability_tokens (id, user_id, token, audience_did, issued_at, expires_at, revoked, revoked_at, delegated_from)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.Token,
		record.AudienceDID,
		record.IssuedAt,
		record.ExpiresAt,
		record.Revoked,
		record.RevokedAt,
		record.DelegatedFrom,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token record")
	}
	return nil
}

// Get retrieves a token record by ID. Returns ErrTokenNotFound if no record
// exists.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, id uuid.UUID) (*domain.TokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token, audience_did, issued_at, expires_at, revoked, revoked_at, delegated_from
			  FROM capability_tokens WHERE id = $1`

	var record domain.TokenRecord

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.Token,
		&record.AudienceDID,
		&record.IssuedAt,
		&record.ExpiresAt,
		&record.Revoked,
		&record.RevokedAt,
		&record.DelegatedFrom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token record")
	}

	return &record, nil
}

// Revoke marks a token record as revoked. Revoking an already revoked token
// is a no-op, so the operation stays idempotent.
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE capability_tokens SET revoked = true, revoked_at = $1 WHERE id = $2 AND revoked = false`

	_, err := querier.ExecContext(ctx, query, revokedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token record")
	}
	return nil
}
