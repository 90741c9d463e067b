// Package repository implements identity pointer persistence for PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/biodidseq/bioseq/internal/database"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
	"github.com/biodidseq/bioseq/internal/identity/domain"
)

// PostgreSQLPointerRepository implements pointer-record persistence for
// PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLPointerRepository struct {
	db *sql.DB
}

// NewPostgreSQLPointerRepository creates a new PostgreSQL pointer repository.
func NewPostgreSQLPointerRepository(db *sql.DB) *PostgreSQLPointerRepository {
	return &PostgreSQLPointerRepository{db: db}
}

// Create inserts a new pointer record. Returns ErrDuplicateDID if a record
// already exists for the DID.
func (p *PostgreSQLPointerRepository) Create(ctx context.Context, record *domain.PointerRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO identity_documents (did, cid, owner_user_id, external_link, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.DID,
		record.ContentAddress,
		record.OwnerUserID,
		record.ExternalLink,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrDuplicateDID
		}
		return apperrors.Wrap(err, "failed to create pointer record")
	}
	return nil
}

// Get retrieves the pointer record for a DID. Returns ErrDocumentNotFound if
// no record exists.
func (p *PostgreSQLPointerRepository) Get(ctx context.Context, did string) (*domain.PointerRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT did, cid, owner_user_id, external_link, created_at, updated_at
			  FROM identity_documents WHERE did = $1`

	var record domain.PointerRecord

	err := querier.QueryRowContext(ctx, query, did).Scan(
		&record.DID,
		&record.ContentAddress,
		&record.OwnerUserID,
		&record.ExternalLink,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pointer record")
	}

	return &record, nil
}

// UpdateAddress moves the pointer to a new content address in a single
// statement, preconditioned on the address the caller last read. A nil
// externalLink leaves the stored link unchanged. Returns ErrDocumentConflict
// if the pointer moved since it was read.
func (p *PostgreSQLPointerRepository) UpdateAddress(
	ctx context.Context,
	did, expectedAddress, newAddress string,
	externalLink *string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE identity_documents
			  SET cid = $1,
				  external_link = COALESCE($2, external_link),
				  updated_at = $3
			  WHERE did = $4 AND cid = $5`

	result, err := querier.ExecContext(ctx, query, newAddress, externalLink, updatedAt, did, expectedAddress)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pointer record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrDocumentConflict
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
