package usecase

import (
	"context"
	"time"

	"github.com/biodidseq/bioseq/internal/identity/domain"
	"github.com/biodidseq/bioseq/internal/metrics"
)

// documentUseCaseWithMetrics decorates DocumentUseCase with metrics instrumentation.
type documentUseCaseWithMetrics struct {
	next    DocumentUseCase
	metrics metrics.BusinessMetrics
}

// NewDocumentUseCaseWithMetrics wraps a DocumentUseCase with metrics recording.
func NewDocumentUseCaseWithMetrics(useCase DocumentUseCase, m metrics.BusinessMetrics) DocumentUseCase {
	return &documentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for document creation operations.
func (d *documentUseCaseWithMetrics) Create(
	ctx context.Context,
	userID int64,
	createDocumentInput *domain.CreateDocumentInput,
) (*domain.Document, error) {
	start := time.Now()
	document, err := d.next.Create(ctx, userID, createDocumentInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "identity", "document_create", status)
	d.metrics.RecordDuration(ctx, "identity", "document_create", time.Since(start), status)

	return document, err
}

// Get records metrics for document retrieval operations.
func (d *documentUseCaseWithMetrics) Get(ctx context.Context, did string) (*domain.Document, error) {
	start := time.Now()
	document, err := d.next.Get(ctx, did)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "identity", "document_get", status)
	d.metrics.RecordDuration(ctx, "identity", "document_get", time.Since(start), status)

	return document, err
}

// Resolve records metrics for document resolution operations.
func (d *documentUseCaseWithMetrics) Resolve(ctx context.Context, did string) (*domain.ResolutionResult, error) {
	start := time.Now()
	result, err := d.next.Resolve(ctx, did)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "identity", "document_resolve", status)
	d.metrics.RecordDuration(ctx, "identity", "document_resolve", time.Since(start), status)

	return result, err
}

// Update records metrics for document update operations.
func (d *documentUseCaseWithMetrics) Update(
	ctx context.Context,
	userID int64,
	did string,
	updateDocumentInput *domain.UpdateDocumentInput,
) (*domain.Document, error) {
	start := time.Now()
	document, err := d.next.Update(ctx, userID, did, updateDocumentInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "identity", "document_update", status)
	d.metrics.RecordDuration(ctx, "identity", "document_update", time.Since(start), status)

	return document, err
}

// LinkExternalReference records metrics for external reference link operations.
func (d *documentUseCaseWithMetrics) LinkExternalReference(
	ctx context.Context,
	userID int64,
	did, externalID string,
) (*domain.Document, error) {
	start := time.Now()
	document, err := d.next.LinkExternalReference(ctx, userID, did, externalID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "identity", "document_link", status)
	d.metrics.RecordDuration(ctx, "identity", "document_link", time.Since(start), status)

	return document, err
}
