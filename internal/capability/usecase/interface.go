// Package usecase defines business logic interfaces for capability token
// operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/biodidseq/bioseq/internal/capability/domain"
)

// TokenRepository defines persistence operations for capability token
// records. Implementations must support transaction-aware operations via
// context propagation.
type TokenRepository interface {
	// Create stores a new token record.
	Create(ctx context.Context, record *domain.TokenRecord) error

	// Get retrieves a token record by ID. Returns ErrTokenNotFound if not
	// found.
	Get(ctx context.Context, id uuid.UUID) (*domain.TokenRecord, error)

	// Revoke marks a token record as revoked. Revoking an already revoked
	// record is a no-op.
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
}

// TokenUseCase defines business logic operations for capability tokens.
// Token strings are unsigned; the stored record is authoritative for
// revocation and expiry.
type TokenUseCase interface {
	// Issue mints a new root token granted by the service itself and
	// persists its record under the calling user's ownership.
	Issue(
		ctx context.Context,
		userID int64,
		issueTokenInput *domain.IssueTokenInput,
	) (*domain.IssueTokenOutput, error)

	// Validate checks a token string and reports the outcome as a value.
	// Ordinary invalidity (malformed, unknown, revoked, expired) comes back
	// as an Invalid result, never as an error.
	Validate(ctx context.Context, token string) (*domain.ValidationResult, error)

	// Revoke decodes a token string and marks its record revoked. Returns
	// ErrTokenNotFound when no record with that id is owned by the caller.
	// Revoking twice is not an error.
	Revoke(ctx context.Context, userID int64, token string) error

	// Delegate mints a new token derived from a parent token, recording the
	// parent's issuer as its delegation provenance.
	Delegate(
		ctx context.Context,
		userID int64,
		delegateTokenInput *domain.DelegateTokenInput,
	) (*domain.IssueTokenOutput, error)
}
