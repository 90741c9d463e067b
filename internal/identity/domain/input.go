package domain

// CreateDocumentInput contains the parameters for creating a new identity
// document.
type CreateDocumentInput struct {
	Controller       string
	PublicKey        string
	ServiceEndpoints []Service
	Metadata         *BioMetadata
}

// UpdateDocumentInput contains the optional mutations for an existing
// document. Absent fields are left untouched.
type UpdateDocumentInput struct {
	Controller               *string
	AddVerificationMethods   []VerificationMethod
	RemoveVerificationMethod []string
	AddServices              []Service
	RemoveService            []string
	Metadata                 *BioMetadata
}

// Patch converts the input into a document patch.
func (i *UpdateDocumentInput) Patch() *UpdatePatch {
	return &UpdatePatch{
		Controller:               i.Controller,
		AddVerificationMethods:   i.AddVerificationMethods,
		RemoveVerificationMethod: i.RemoveVerificationMethod,
		AddServices:              i.AddServices,
		RemoveService:            i.RemoveService,
		Metadata:                 i.Metadata,
	}
}
