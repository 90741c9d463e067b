// Package usecase defines business logic interfaces for identity document
// operations.
package usecase

import (
	"context"
	"time"

	"github.com/biodidseq/bioseq/internal/identity/domain"
)

// PointerRepository defines persistence operations for document pointer
// records. Implementations must support transaction-aware operations via
// context propagation.
type PointerRepository interface {
	// Create stores a new pointer record. Returns ErrDuplicateDID if a
	// record already exists for the DID.
	Create(ctx context.Context, record *domain.PointerRecord) error

	// Get retrieves the pointer record for a DID. Returns
	// ErrDocumentNotFound if not found.
	Get(ctx context.Context, did string) (*domain.PointerRecord, error)

	// UpdateAddress moves the pointer to a new content address,
	// preconditioned on the address the caller last read. Returns
	// ErrDocumentConflict if the pointer moved in between.
	UpdateAddress(
		ctx context.Context,
		did, expectedAddress, newAddress string,
		externalLink *string,
		updatedAt time.Time,
	) error
}

// DocumentUseCase defines business logic operations for identity documents.
// Documents are stored content-addressed and versioned by replacement: every
// mutation writes a full new document and repoints the DID at it.
type DocumentUseCase interface {
	// Create mints a new DID, builds its document, stores it content
	// addressed, and records the pointer owned by the calling user.
	Create(
		ctx context.Context,
		userID int64,
		createDocumentInput *domain.CreateDocumentInput,
	) (*domain.Document, error)

	// Get retrieves the current document for a DID. Reads are public and
	// carry no ownership check.
	Get(ctx context.Context, did string) (*domain.Document, error)

	// Resolve retrieves the current document for a DID together with the
	// pointer metadata that located it.
	Resolve(ctx context.Context, did string) (*domain.ResolutionResult, error)

	// Update applies a patch to the current document, stores the result
	// under a new content address, and repoints the DID.
	//
	// Returns ErrNotDocumentOwner if the caller does not own the DID, and
	// ErrDocumentConflict if the document changed since it was read.
	Update(
		ctx context.Context,
		userID int64,
		did string,
		updateDocumentInput *domain.UpdateDocumentInput,
	) (*domain.Document, error)

	// LinkExternalReference records an external archive identifier (a DOI)
	// on the document metadata and the pointer row.
	//
	// Returns ErrNotDocumentOwner if the caller does not own the DID.
	LinkExternalReference(
		ctx context.Context,
		userID int64,
		did, externalID string,
	) (*domain.Document, error)
}
