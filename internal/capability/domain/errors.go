package domain

import (
	"github.com/biodidseq/bioseq/internal/errors"
)

// Capability token errors.
var (
	// ErrTokenNotFound indicates no token row exists for the id, or the row
	// is not owned by the requester. The two cases are deliberately not
	// distinguished.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrMalformedToken indicates the token string could not be decoded.
	ErrMalformedToken = errors.Wrap(errors.ErrTokenDecode, "malformed capability token")

	// ErrEmptyCapabilities indicates a token was requested with no
	// capabilities.
	ErrEmptyCapabilities = errors.Wrap(errors.ErrInvalidInput, "capability list must not be empty")
)
