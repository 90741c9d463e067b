package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

func newPostgresTokenRepo(t *testing.T) (*PostgreSQLTokenRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewPostgreSQLTokenRepository(db), mock, db
}

func testTokenRecord() *domain.TokenRecord {
	now := time.Now().UTC()
	return &domain.TokenRecord{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      42,
		Token:       "ucan:demo:0196a1b2-0000-7000-8000-000000000002:aXNz:YXVk:1756500000:W10",
		AudienceDID: "did:bio:0196a1b2-0000-7000-8000-000000000003",
		IssuedAt:    now,
		ExpiresAt:   now.Add(24 * time.Hour),
		Revoked:     false,
	}
}

func TestPostgreSQLTokenRepository_Create(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	record := testTokenRecord()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO capability_tokens")).
		WithArgs(
			record.ID,
			record.UserID,
			record.Token,
			record.AudienceDID,
			record.IssuedAt,
			record.ExpiresAt,
			record.Revoked,
			record.RevokedAt,
			record.DelegatedFrom,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTokenRepository_Create_DatabaseError(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO capability_tokens")).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), testTokenRecord())
	require.Error(t, err)
}

func TestPostgreSQLTokenRepository_Get(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	record := testTokenRecord()
	delegatedFrom := "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK"
	record.DelegatedFrom = &delegatedFrom

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "token", "audience_did", "issued_at", "expires_at", "revoked", "revoked_at", "delegated_from",
	}).AddRow(
		record.ID, record.UserID, record.Token, record.AudienceDID,
		record.IssuedAt, record.ExpiresAt, record.Revoked, record.RevokedAt, record.DelegatedFrom,
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token, audience_did")).
		WithArgs(record.ID).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.UserID, got.UserID)
	assert.Equal(t, record.Token, got.Token)
	assert.Equal(t, record.AudienceDID, got.AudienceDID)
	assert.False(t, got.Revoked)
	assert.Nil(t, got.RevokedAt)
	require.NotNil(t, got.DelegatedFrom)
	assert.Equal(t, delegatedFrom, *got.DelegatedFrom)
}

func TestPostgreSQLTokenRepository_Get_NotFound(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token, audience_did")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLTokenRepository_Revoke(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	id := uuid.Must(uuid.NewV7())
	revokedAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE capability_tokens SET revoked = true")).
		WithArgs(revokedAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Revoke(context.Background(), id, revokedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTokenRepository_Revoke_AlreadyRevoked(t *testing.T) {
	repo, mock, db := newPostgresTokenRepo(t)
	defer db.Close()

	id := uuid.Must(uuid.NewV7())
	revokedAt := time.Now().UTC()

	// No rows match because the token is already revoked. The call still
	// succeeds to keep revocation idempotent.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE capability_tokens SET revoked = true")).
		WithArgs(revokedAt, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Revoke(context.Background(), id, revokedAt)
	assert.NoError(t, err)
}
