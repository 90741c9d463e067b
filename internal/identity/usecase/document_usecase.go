// Package usecase implements business logic orchestration for identity
// document operations.
package usecase

import (
	"context"
	"time"

	"github.com/biodidseq/bioseq/internal/config"
	"github.com/biodidseq/bioseq/internal/contentstore"
	"github.com/biodidseq/bioseq/internal/database"
	"github.com/biodidseq/bioseq/internal/identity/domain"
)

// documentUseCase implements DocumentUseCase for managing identity documents.
type documentUseCase struct {
	config       *config.Config
	pointerRepo  PointerRepository
	contentStore contentstore.Store
	txManager    database.TxManager
}

// Create mints a new DID, stores its document content addressed, and records
// the pointer row owned by the calling user.
//
// The DID is generated server side, so a duplicate pointer row should never
// happen in practice; ErrDuplicateDID is still propagated if it does.
func (d *documentUseCase) Create(
	ctx context.Context,
	userID int64,
	createDocumentInput *domain.CreateDocumentInput,
) (*domain.Document, error) {
	did := domain.GenerateDID()

	// A document controls itself unless the caller names a controller.
	controller := createDocumentInput.Controller
	if controller == "" {
		controller = did
	}

	document := domain.NewDocument(
		did,
		controller,
		createDocumentInput.PublicKey,
		d.config.StorageEndpoint,
		createDocumentInput.ServiceEndpoints,
		createDocumentInput.Metadata,
	)

	data, err := document.Marshal()
	if err != nil {
		return nil, err
	}

	address, err := d.contentStore.Put(ctx, data)
	if err != nil {
		return nil, err
	}

	record := &domain.PointerRecord{
		DID:            did,
		ContentAddress: address,
		OwnerUserID:    userID,
		CreatedAt:      document.Created,
		UpdatedAt:      document.Updated,
	}

	if err := d.pointerRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return document, nil
}

// Get retrieves the current document for a DID without ownership checks.
func (d *documentUseCase) Get(ctx context.Context, did string) (*domain.Document, error) {
	record, err := d.pointerRepo.Get(ctx, did)
	if err != nil {
		return nil, err
	}

	return d.fetchDocument(ctx, record.ContentAddress)
}

// Resolve retrieves the current document for a DID together with the pointer
// metadata that located it.
func (d *documentUseCase) Resolve(ctx context.Context, did string) (*domain.ResolutionResult, error) {
	record, err := d.pointerRepo.Get(ctx, did)
	if err != nil {
		return nil, err
	}

	document, err := d.fetchDocument(ctx, record.ContentAddress)
	if err != nil {
		return nil, err
	}

	return &domain.ResolutionResult{
		Document:       document,
		ContentAddress: record.ContentAddress,
		ExternalLink:   record.ExternalLink,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

// Update applies a patch to the current document, stores the result under a
// new content address, and repoints the DID.
//
// The repoint is preconditioned on the content address the document was read
// at. A concurrent writer that moved the pointer in between makes the
// precondition miss, and the caller gets ErrDocumentConflict instead of
// having its read silently overwritten.
func (d *documentUseCase) Update(
	ctx context.Context,
	userID int64,
	did string,
	updateDocumentInput *domain.UpdateDocumentInput,
) (*domain.Document, error) {
	return d.mutate(ctx, userID, did, nil, func(document *domain.Document) {
		document.Apply(updateDocumentInput.Patch())
	})
}

// LinkExternalReference records an external archive identifier on the
// document metadata and the pointer row.
func (d *documentUseCase) LinkExternalReference(
	ctx context.Context,
	userID int64,
	did, externalID string,
) (*domain.Document, error) {
	return d.mutate(ctx, userID, did, &externalID, func(document *domain.Document) {
		document.LinkExternalReference(externalID)
		document.Updated = time.Now().UTC()
	})
}

// mutate runs the read-modify-write cycle shared by Update and
// LinkExternalReference inside a transaction.
func (d *documentUseCase) mutate(
	ctx context.Context,
	userID int64,
	did string,
	externalLink *string,
	apply func(*domain.Document),
) (*domain.Document, error) {
	var document *domain.Document

	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		record, err := d.pointerRepo.Get(ctx, did)
		if err != nil {
			return err
		}

		if record.OwnerUserID != userID {
			return domain.ErrNotDocumentOwner
		}

		document, err = d.fetchDocument(ctx, record.ContentAddress)
		if err != nil {
			return err
		}

		apply(document)

		data, err := document.Marshal()
		if err != nil {
			return err
		}

		address, err := d.contentStore.Put(ctx, data)
		if err != nil {
			return err
		}

		return d.pointerRepo.UpdateAddress(ctx, did, record.ContentAddress, address, externalLink, document.Updated)
	})
	if err != nil {
		return nil, err
	}

	return document, nil
}

func (d *documentUseCase) fetchDocument(ctx context.Context, address string) (*domain.Document, error) {
	data, err := d.contentStore.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	return domain.UnmarshalDocument(data)
}

// NewDocumentUseCase creates a new DocumentUseCase with the provided dependencies.
func NewDocumentUseCase(
	config *config.Config,
	pointerRepo PointerRepository,
	contentStore contentstore.Store,
	txManager database.TxManager,
) DocumentUseCase {
	return &documentUseCase{
		config:       config,
		pointerRepo:  pointerRepo,
		contentStore: contentStore,
		txManager:    txManager,
	}
}
