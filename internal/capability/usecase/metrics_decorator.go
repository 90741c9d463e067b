package usecase

import (
	"context"
	"time"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	"github.com/biodidseq/bioseq/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance operations.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	userID int64,
	issueTokenInput *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, userID, issueTokenInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "capability", "token_issue", status)
	t.metrics.RecordDuration(ctx, "capability", "token_issue", time.Since(start), status)

	return output, err
}

// Validate records metrics for token validation operations. An Invalid
// outcome is still a successful validation call.
func (t *tokenUseCaseWithMetrics) Validate(ctx context.Context, token string) (*domain.ValidationResult, error) {
	start := time.Now()
	result, err := t.next.Validate(ctx, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "capability", "token_validate", status)
	t.metrics.RecordDuration(ctx, "capability", "token_validate", time.Since(start), status)

	return result, err
}

// Revoke records metrics for token revocation operations.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, userID int64, token string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, userID, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "capability", "token_revoke", status)
	t.metrics.RecordDuration(ctx, "capability", "token_revoke", time.Since(start), status)

	return err
}

// Delegate records metrics for token delegation operations.
func (t *tokenUseCaseWithMetrics) Delegate(
	ctx context.Context,
	userID int64,
	delegateTokenInput *domain.DelegateTokenInput,
) (*domain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Delegate(ctx, userID, delegateTokenInput)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "capability", "token_delegate", status)
	t.metrics.RecordDuration(ctx, "capability", "token_delegate", time.Since(start), status)

	return output, err
}
