package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecord is the relational row for an issued capability token. The row,
// not the token string, is authoritative for revocation and expiry.
type TokenRecord struct {
	ID            uuid.UUID
	UserID        int64
	Token         string
	AudienceDID   string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Revoked       bool
	RevokedAt     *time.Time
	DelegatedFrom *string
}

// TokenData is the decoded content of a valid token.
type TokenData struct {
	Issuer       string
	Audience     string
	Capabilities []Capability
	ExpiresAt    int64
}

// ValidationResult is the outcome of validating a token string. Ordinary
// invalidity (malformed, revoked, expired, unknown) is a result, not an
// error.
type ValidationResult struct {
	Valid  bool
	Reason string
	Data   *TokenData
}

// Invalid builds a failed validation result with a human-readable reason.
func Invalid(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: reason}
}

// ValidResult builds a successful validation result.
func ValidResult(data *TokenData) *ValidationResult {
	return &ValidationResult{Valid: true, Data: data}
}

// IssueTokenInput contains the parameters for issuing a root token.
type IssueTokenInput struct {
	AudienceDID  string
	Capabilities []Capability
	// TTL overrides the configured default lifetime when positive.
	TTL time.Duration
}

// IssueTokenOutput contains the minted token string and its expiry.
type IssueTokenOutput struct {
	Token     string
	ExpiresAt int64
}

// DelegateTokenInput contains the parameters for delegating from an existing
// token.
type DelegateTokenInput struct {
	ParentToken  string
	AudienceDID  string
	Capabilities []Capability
}
