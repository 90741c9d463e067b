package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/biodidseq/bioseq/internal/database"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
	"github.com/biodidseq/bioseq/internal/identity/domain"
)

// MySQLPointerRepository implements pointer-record persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLPointerRepository struct {
	db *sql.DB
}

// NewMySQLPointerRepository creates a new MySQL pointer repository.
func NewMySQLPointerRepository(db *sql.DB) *MySQLPointerRepository {
	return &MySQLPointerRepository{db: db}
}

// Create inserts a new pointer record. Returns ErrDuplicateDID if a record
// already exists for the DID.
func (m *MySQLPointerRepository) Create(ctx context.Context, record *domain.PointerRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO identity_documents (did, cid, owner_user_id, external_link, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

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
		if isMySQLDuplicateEntry(err) {
			return domain.ErrDuplicateDID
		}
		return apperrors.Wrap(err, "failed to create pointer record")
	}
	return nil
}

// Get retrieves the pointer record for a DID. Returns ErrDocumentNotFound if
// no record exists.
func (m *MySQLPointerRepository) Get(ctx context.Context, did string) (*domain.PointerRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT did, cid, owner_user_id, external_link, created_at, updated_at
			  FROM identity_documents WHERE did = ?`

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
func (m *MySQLPointerRepository) UpdateAddress(
	ctx context.Context,
	did, expectedAddress, newAddress string,
	externalLink *string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE identity_documents
			  SET cid = ?,
				  external_link = COALESCE(?, external_link),
				  updated_at = ?
			  WHERE did = ? AND cid = ?`

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

// isMySQLDuplicateEntry checks if the error is a MySQL duplicate entry error
// (error number 1062).
func isMySQLDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
