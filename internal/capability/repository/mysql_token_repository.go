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

// MySQLTokenRepository implements token-record persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new token record.
func (m *MySQLTokenRepository) Create(ctx context.Context, record *domain.TokenRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO capability_tokens (id, user_id, token, audience_did, issued_at, expires_at, revoked, revoked_at, delegated_from)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID.String(),
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
func (m *MySQLTokenRepository) Get(ctx context.Context, id uuid.UUID) (*domain.TokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token, audience_did, issued_at, expires_at, revoked, revoked_at, delegated_from
			  FROM capability_tokens WHERE id = ?`

	var (
		record domain.TokenRecord
		rawID  string
	)

	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID,
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

	record.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse token record id")
	}

	return &record, nil
}

// Revoke marks a token record as revoked. Revoking an already revoked token
// is a no-op, so the operation stays idempotent.
func (m *MySQLTokenRepository) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE capability_tokens SET revoked = true, revoked_at = ? WHERE id = ? AND revoked = false`

	_, err := querier.ExecContext(ctx, query, revokedAt, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token record")
	}
	return nil
}
