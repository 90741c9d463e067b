// Package domain defines the identity document data model.
//
// Documents follow the W3C DID document structure with a metadata extension
// for biological research data. They are immutable by replacement: every
// mutation produces a new canonical serialization stored at a new content
// address, and only the pointer record moves.
package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

// Context URLs embedded in every document.
var documentContext = []string{
	"https://www.w3.org/ns/did/v1",
	"https://w3id.org/security/suites/ed25519-2020/v1",
	"https://w3id.org/biodata/v1",
}

// Document is a versioned identity record describing a controlled research
// data resource.
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	AlsoKnownAs        []string             `json:"alsoKnownAs,omitempty"`
	Controller         []string             `json:"controller"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod,omitempty"`
	Service            []Service            `json:"service"`
	Created            time.Time            `json:"created"`
	Updated            time.Time            `json:"updated"`
	Metadata           *BioMetadata         `json:"metadata,omitempty"`
}

// VerificationMethod proves control of the document.
type VerificationMethod struct {
	ID                 string  `json:"id"`
	Controller         string  `json:"controller"`
	Type               string  `json:"type"`
	PublicKeyMultibase *string `json:"publicKeyMultibase,omitempty"`
	PublicKeyJWK       *KeyJWK `json:"publicKeyJwk,omitempty"`
}

// KeyJWK is a JSON Web Key representation of public key material.
type KeyJWK struct {
	Kty string  `json:"kty"`
	Crv string  `json:"crv"`
	X   string  `json:"x"`
	Y   *string `json:"y,omitempty"`
	N   *string `json:"n,omitempty"`
	E   *string `json:"e,omitempty"`
}

// Service describes where the underlying data lives.
type Service struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	ServiceEndpoint string  `json:"serviceEndpoint"`
	Description     *string `json:"description,omitempty"`
}

// BioMetadata is the research-data extension block of a document.
type BioMetadata struct {
	Title              string              `json:"title"`
	Description        *string             `json:"description,omitempty"`
	Researchers        []Researcher        `json:"researchers"`
	Keywords           []string            `json:"keywords"`
	DataType           string              `json:"data_type"`
	License            string              `json:"license"`
	DOI                *string             `json:"doi,omitempty"`
	Handle             *string             `json:"handle,omitempty"`
	DataverseLink      *string             `json:"dataverse_link,omitempty"`
	RelatedIdentifiers []RelatedIdentifier `json:"related_identifiers,omitempty"`
	DatasetSize        *uint64             `json:"dataset_size,omitempty"`
	FundingInfo        []FundingInfo       `json:"funding_info,omitempty"`
	CreationDate       time.Time           `json:"creation_date"`
	LastModified       time.Time           `json:"last_modified"`
	CustomFields       map[string]any      `json:"custom_fields,omitempty"`
}

// Researcher identifies a contributor to the dataset.
type Researcher struct {
	Name        string  `json:"name"`
	ORCID       *string `json:"orcid,omitempty"`
	Role        string  `json:"role"`
	Affiliation *string `json:"affiliation,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// RelatedIdentifier cross-references an external record.
type RelatedIdentifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifier_type"`
	RelationType   string `json:"relation_type"`
}

// FundingInfo records a funding source.
type FundingInfo struct {
	FunderName string  `json:"funder_name"`
	GrantID    *string `json:"grant_id,omitempty"`
	AwardTitle *string `json:"award_title,omitempty"`
}

// GenerateDID returns a fresh identity string using the bio method.
func GenerateDID() string {
	return fmt.Sprintf("did:bio:%s", uuid.New().String())
}

// NewDocument builds the canonical default document for a fresh DID: one
// verification method keyed "<did>#keys-1" referenced by authentication, one
// default storage service entry pointing at storageEndpoint, and any extra
// service endpoints the caller supplied.
func NewDocument(did, controller, publicKey, storageEndpoint string, extraServices []Service, metadata *BioMetadata) *Document {
	now := time.Now().UTC()
	vmID := fmt.Sprintf("%s#keys-1", did)
	pk := publicKey
	desc := "Storage endpoint for biological research data"

	services := []Service{{
		ID:              fmt.Sprintf("%s#storage", did),
		Type:            "IPFSStorage",
		ServiceEndpoint: storageEndpoint,
		Description:     &desc,
	}}
	services = append(services, extraServices...)

	return &Document{
		Context:    documentContext,
		ID:         did,
		Controller: []string{controller},
		VerificationMethod: []VerificationMethod{{
			ID:                 vmID,
			Controller:         did,
			Type:               "Ed25519VerificationKey2020",
			PublicKeyMultibase: &pk,
		}},
		Authentication: []string{vmID},
		Service:        services,
		Created:        now,
		Updated:        now,
		Metadata:       metadata,
	}
}

// Marshal serializes the document to its canonical byte form.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSerialization, err.Error())
	}
	return data, nil
}

// UnmarshalDocument decodes a canonical byte form back into a document.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDeserialization, err.Error())
	}
	return &doc, nil
}

// UpdatePatch carries the optional mutations applied by an update. Absent
// fields leave the document untouched; removals of unknown ids are silent
// no-ops.
type UpdatePatch struct {
	Controller               *string
	AddVerificationMethods   []VerificationMethod
	RemoveVerificationMethod []string
	AddServices              []Service
	RemoveService            []string
	Metadata                 *BioMetadata
}

// Apply mutates the document in place according to the patch and advances
// the updated timestamp.
func (d *Document) Apply(patch *UpdatePatch) {
	if patch.Controller != nil {
		d.Controller = []string{*patch.Controller}
	}

	d.VerificationMethod = append(d.VerificationMethod, patch.AddVerificationMethods...)
	if len(patch.RemoveVerificationMethod) > 0 {
		d.VerificationMethod = filterVerificationMethods(d.VerificationMethod, patch.RemoveVerificationMethod)
	}

	d.Service = append(d.Service, patch.AddServices...)
	if len(patch.RemoveService) > 0 {
		d.Service = filterServices(d.Service, patch.RemoveService)
	}

	if patch.Metadata != nil {
		d.Metadata = patch.Metadata
	}

	d.Updated = time.Now().UTC()
}

// LinkExternalReference points the document's metadata at an external
// dataset repository record. A document without a metadata block has nothing
// to link and is left unchanged.
func (d *Document) LinkExternalReference(externalID string) {
	if d.Metadata == nil {
		return
	}
	link := fmt.Sprintf("https://dataverse.harvard.edu/dataset.xhtml?persistentId=%s", externalID)
	d.Metadata.DOI = &externalID
	d.Metadata.DataverseLink = &link
	d.Updated = time.Now().UTC()
}

func filterVerificationMethods(methods []VerificationMethod, removeIDs []string) []VerificationMethod {
	kept := methods[:0]
	for _, m := range methods {
		if !slices.Contains(removeIDs, m.ID) {
			kept = append(kept, m)
		}
	}
	return kept
}

func filterServices(services []Service, removeIDs []string) []Service {
	kept := services[:0]
	for _, s := range services {
		if !slices.Contains(removeIDs, s.ID) {
			kept = append(kept, s)
		}
	}
	return kept
}
