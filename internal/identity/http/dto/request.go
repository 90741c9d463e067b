// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/biodidseq/bioseq/internal/identity/domain"
	customValidation "github.com/biodidseq/bioseq/internal/validation"
)

// CreateDocumentRequest contains the parameters for creating a DID document.
type CreateDocumentRequest struct {
	Controller       string              `json:"controller"`
	PublicKey        string              `json:"public_key" binding:"required"`
	ServiceEndpoints []domain.Service    `json:"service_endpoints"`
	Metadata         *domain.BioMetadata `json:"metadata"`
}

// Validate checks if the create document request is valid.
func (r *CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PublicKey, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Controller, validation.When(r.Controller != "", customValidation.DIDFormat)),
		validation.Field(&r.Metadata, validation.By(validateResearcherEmails)),
	)
}

// validateResearcherEmails checks the contact email of every researcher
// listed in the metadata block, when one is present.
func validateResearcherEmails(value interface{}) error {
	metadata, _ := value.(*domain.BioMetadata)
	if metadata == nil {
		return nil
	}
	for _, researcher := range metadata.Researchers {
		if researcher.Email == nil || *researcher.Email == "" {
			continue
		}
		if err := customValidation.Email.Validate(*researcher.Email); err != nil {
			return err
		}
	}
	return nil
}

// ToInput converts the request to a domain input.
func (r *CreateDocumentRequest) ToInput() *domain.CreateDocumentInput {
	return &domain.CreateDocumentInput{
		Controller:       r.Controller,
		PublicKey:        r.PublicKey,
		ServiceEndpoints: r.ServiceEndpoints,
		Metadata:         r.Metadata,
	}
}

// UpdateDocumentRequest contains the optional mutations for a DID document.
// Absent fields leave the document untouched.
type UpdateDocumentRequest struct {
	Controller               *string                     `json:"controller"`
	AddVerificationMethod    []domain.VerificationMethod `json:"add_verification_method"`
	RemoveVerificationMethod []string                    `json:"remove_verification_method"`
	AddService               []domain.Service            `json:"add_service"`
	RemoveService            []string                    `json:"remove_service"`
	UpdateMetadata           *domain.BioMetadata         `json:"update_metadata"`
}

// Validate checks if the update document request is valid.
func (r *UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Controller, validation.When(r.Controller != nil, customValidation.DIDFormat)),
		validation.Field(&r.UpdateMetadata, validation.By(validateResearcherEmails)),
	)
}

// ToInput converts the request to a domain input.
func (r *UpdateDocumentRequest) ToInput() *domain.UpdateDocumentInput {
	return &domain.UpdateDocumentInput{
		Controller:               r.Controller,
		AddVerificationMethods:   r.AddVerificationMethod,
		RemoveVerificationMethod: r.RemoveVerificationMethod,
		AddServices:              r.AddService,
		RemoveService:            r.RemoveService,
		Metadata:                 r.UpdateMetadata,
	}
}

// LinkDataverseRequest contains the external dataset identifier to link a DID
// document to.
type LinkDataverseRequest struct {
	DataverseDOI string `json:"dataverse_doi" binding:"required"`
}

// Validate checks if the link request is valid.
func (r *LinkDataverseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DataverseDOI, validation.Required, customValidation.NotBlank, customValidation.NoWhitespace),
	)
}
