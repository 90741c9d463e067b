package domain

import "time"

// ResolutionResult pairs a resolved document with the pointer metadata that
// located it.
type ResolutionResult struct {
	Document       *Document `json:"document"`
	ContentAddress string    `json:"content_address"`
	ExternalLink   *string   `json:"external_link,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
