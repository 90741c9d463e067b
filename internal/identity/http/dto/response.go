package dto

import (
	"time"

	"github.com/biodidseq/bioseq/internal/identity/domain"
)

// ResolutionResponse pairs a resolved document with its pointer metadata.
type ResolutionResponse struct {
	Document       *domain.Document `json:"document"`
	ContentAddress string           `json:"content_address"`
	ExternalLink   *string          `json:"external_link,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// MapResolutionToResponse converts a domain resolution result to a response.
func MapResolutionToResponse(result *domain.ResolutionResult) ResolutionResponse {
	return ResolutionResponse{
		Document:       result.Document,
		ContentAddress: result.ContentAddress,
		ExternalLink:   result.ExternalLink,
		CreatedAt:      result.CreatedAt,
		UpdatedAt:      result.UpdatedAt,
	}
}

// LinkDataverseResponse confirms a successful external link.
type LinkDataverseResponse struct {
	Message      string `json:"message"`
	DID          string `json:"did"`
	DataverseDOI string `json:"dataverse_doi"`
}
