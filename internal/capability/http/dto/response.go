package dto

import (
	"github.com/biodidseq/bioseq/internal/capability/domain"
)

// TokenResponse contains a minted token string and its expiry.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// MapIssueOutputToResponse converts an issue result to a response.
func MapIssueOutputToResponse(output *domain.IssueTokenOutput) TokenResponse {
	return TokenResponse{
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
	}
}

// ValidationResponse reports the outcome of validating a token string. The
// decoded fields are present only for valid tokens, the reason only for
// invalid ones.
type ValidationResponse struct {
	Valid        bool             `json:"valid"`
	Issuer       *string          `json:"issuer,omitempty"`
	Audience     *string          `json:"audience,omitempty"`
	Capabilities []CapabilityPair `json:"capabilities,omitempty"`
	ExpiresAt    *int64           `json:"expires_at,omitempty"`
	Reason       *string          `json:"reason,omitempty"`
}

// MapValidationToResponse converts a validation result to a response.
func MapValidationToResponse(result *domain.ValidationResult) ValidationResponse {
	if !result.Valid {
		reason := result.Reason
		return ValidationResponse{Valid: false, Reason: &reason}
	}

	data := result.Data
	return ValidationResponse{
		Valid:        true,
		Issuer:       &data.Issuer,
		Audience:     &data.Audience,
		Capabilities: MapCapabilitiesToPairs(data.Capabilities),
		ExpiresAt:    &data.ExpiresAt,
	}
}

// RevokeResponse confirms a successful revocation.
type RevokeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
