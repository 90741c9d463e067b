// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	customValidation "github.com/biodidseq/bioseq/internal/validation"
)

// CapabilityPair is the wire form of a single capability grant: "with" names
// the resource as "<kind>:<id>" and "can" names the action.
type CapabilityPair struct {
	With string `json:"with"`
	Can  string `json:"can"`
}

// ToDomain converts the wire pair to a domain capability, rejecting unknown
// resource kinds and actions.
func (p CapabilityPair) ToDomain() (domain.Capability, error) {
	resource, err := domain.ParseResource(p.With)
	if err != nil {
		return domain.Capability{}, err
	}

	action := domain.Action(p.Can)
	if !action.Valid() {
		return domain.Capability{}, fmt.Errorf("unknown action %q", p.Can)
	}

	return domain.Capability{Resource: resource, Action: action}, nil
}

// MapCapabilityPairs converts a list of wire pairs to domain capabilities.
func MapCapabilityPairs(pairs []CapabilityPair) ([]domain.Capability, error) {
	capabilities := make([]domain.Capability, 0, len(pairs))
	for _, pair := range pairs {
		capability, err := pair.ToDomain()
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, capability)
	}
	return capabilities, nil
}

// MapCapabilitiesToPairs converts domain capabilities back to the wire form.
func MapCapabilitiesToPairs(capabilities []domain.Capability) []CapabilityPair {
	pairs := make([]CapabilityPair, 0, len(capabilities))
	for _, capability := range capabilities {
		pairs = append(pairs, CapabilityPair{
			With: capability.Resource.String(),
			Can:  string(capability.Action),
		})
	}
	return pairs
}

// IssueTokenRequest contains the parameters for issuing a root token.
type IssueTokenRequest struct {
	Audience     string           `json:"audience" binding:"required"`
	Capabilities []CapabilityPair `json:"capabilities" binding:"required"`
	// Expiration is a lifetime in seconds. Zero means the configured
	// default.
	Expiration int64 `json:"expiration"`
}

// Validate checks if the issue request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Audience, validation.Required, customValidation.DIDFormat),
		validation.Field(&r.Capabilities, validation.Required),
		validation.Field(&r.Expiration, validation.Min(int64(0))),
	)
}

// ValidateTokenRequest contains the token string to check.
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate checks if the validate request is valid.
func (r *ValidateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// RevokeTokenRequest contains the token string to revoke.
type RevokeTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// DelegateTokenRequest contains the parameters for delegating from an
// existing token.
type DelegateTokenRequest struct {
	ParentToken  string           `json:"parent_token" binding:"required"`
	Audience     string           `json:"audience" binding:"required"`
	Capabilities []CapabilityPair `json:"capabilities" binding:"required"`
}

// Validate checks if the delegate request is valid.
func (r *DelegateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ParentToken, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Audience, validation.Required, customValidation.DIDFormat),
		validation.Field(&r.Capabilities, validation.Required),
	)
}
