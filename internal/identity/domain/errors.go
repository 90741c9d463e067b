package domain

import (
	"github.com/biodidseq/bioseq/internal/errors"
)

// Identity document errors.
var (
	// ErrDocumentNotFound indicates no pointer record exists for the DID.
	ErrDocumentNotFound = errors.Wrap(errors.ErrNotFound, "identity document not found")

	// ErrNotDocumentOwner indicates the requester does not own the document.
	ErrNotDocumentOwner = errors.Wrap(errors.ErrForbidden, "not the document owner")

	// ErrDocumentConflict indicates the pointer moved since the document was
	// read; the caller should re-read and retry.
	ErrDocumentConflict = errors.Wrap(errors.ErrConflict, "identity document was modified concurrently")

	// ErrDuplicateDID indicates a pointer record already exists for the DID.
	ErrDuplicateDID = errors.Wrap(errors.ErrConflict, "identity document already exists")
)
