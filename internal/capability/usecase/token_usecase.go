// Package usecase implements business logic orchestration for capability
// token operations.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	capabilityService "github.com/biodidseq/bioseq/internal/capability/service"
	"github.com/biodidseq/bioseq/internal/config"
)

// tokenUseCase implements TokenUseCase for managing capability tokens.
type tokenUseCase struct {
	config     *config.Config
	tokenRepo  TokenRepository
	tokenCodec capabilityService.TokenCodec
}

// Issue mints a new root token with the service as issuer.
//
// The expiry comes from the requested TTL, falling back to
// Config.TokenDefaultTTL when the caller specifies none. The token string
// carries the issuance timestamp, but the stored record is what validation
// trusts for expiry.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	userID int64,
	issueTokenInput *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	return t.mint(ctx, userID, t.config.ServiceDID, issueTokenInput.AudienceDID, issueTokenInput.Capabilities, issueTokenInput.TTL, nil)
}

// Validate checks a token string against the stored record.
//
// Ordinary invalidity never surfaces as an error:
//   - a token that does not decode is Invalid("malformed token")
//   - a token with no stored record is Invalid("unknown token")
//   - a revoked record is Invalid("revoked")
//   - a record past its stored expiry is Invalid("expired")
//
// The stored expiry is authoritative over anything embedded in the token
// string, so operational edits to a record never require reissuing tokens.
func (t *tokenUseCase) Validate(ctx context.Context, token string) (*domain.ValidationResult, error) {
	decoded, err := t.tokenCodec.Decode(token)
	if err != nil {
		return domain.Invalid("malformed token"), nil
	}

	record, err := t.tokenRepo.Get(ctx, decoded.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.Invalid("unknown token"), nil
		}
		return nil, err
	}

	if record.Revoked {
		return domain.Invalid("revoked"), nil
	}

	if record.ExpiresAt.Before(time.Now().UTC()) {
		return domain.Invalid("expired"), nil
	}

	return domain.ValidResult(&domain.TokenData{
		Issuer:       decoded.Issuer,
		Audience:     decoded.Audience,
		Capabilities: decoded.Capabilities,
		ExpiresAt:    record.ExpiresAt.Unix(),
	}), nil
}

// Revoke decodes a token string and marks its record revoked.
//
// An ownership mismatch is reported as ErrTokenNotFound, the same as a
// missing record, so a caller cannot probe for other users' token ids.
func (t *tokenUseCase) Revoke(ctx context.Context, userID int64, token string) error {
	decoded, err := t.tokenCodec.Decode(token)
	if err != nil {
		return err
	}

	record, err := t.tokenRepo.Get(ctx, decoded.ID)
	if err != nil {
		return err
	}

	if record.UserID != userID {
		return domain.ErrTokenNotFound
	}

	return t.tokenRepo.Revoke(ctx, record.ID, time.Now().UTC())
}

// Delegate mints a new token derived from a parent token.
//
// The parent only has to decode; its current validity is not checked, so
// delegating from an expired or revoked token still succeeds. The new token
// is issued by the parent's audience (the delegator) and records the
// parent's issuer as provenance.
func (t *tokenUseCase) Delegate(
	ctx context.Context,
	userID int64,
	delegateTokenInput *domain.DelegateTokenInput,
) (*domain.IssueTokenOutput, error) {
	parent, err := t.tokenCodec.Decode(delegateTokenInput.ParentToken)
	if err != nil {
		return nil, err
	}

	return t.mint(
		ctx,
		userID,
		parent.Audience,
		delegateTokenInput.AudienceDID,
		delegateTokenInput.Capabilities,
		0,
		&parent.Issuer,
	)
}

// mint encodes and persists a token, shared by Issue and Delegate.
func (t *tokenUseCase) mint(
	ctx context.Context,
	userID int64,
	issuer, audience string,
	capabilities []domain.Capability,
	ttl time.Duration,
	delegatedFrom *string,
) (*domain.IssueTokenOutput, error) {
	if len(capabilities) == 0 {
		return nil, domain.ErrEmptyCapabilities
	}

	if ttl <= 0 {
		ttl = t.config.TokenDefaultTTL
	}

	id := uuid.Must(uuid.NewV7())
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(ttl)

	token, err := t.tokenCodec.Encode(id, issuer, audience, issuedAt, capabilities)
	if err != nil {
		return nil, err
	}

	record := &domain.TokenRecord{
		ID:            id,
		UserID:        userID,
		Token:         token,
		AudienceDID:   audience,
		IssuedAt:      issuedAt,
		ExpiresAt:     expiresAt,
		Revoked:       false,
		DelegatedFrom: delegatedFrom,
	}

	if err := t.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &domain.IssueTokenOutput{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	tokenRepo TokenRepository,
	tokenCodec capabilityService.TokenCodec,
) TokenUseCase {
	return &tokenUseCase{
		config:     config,
		tokenRepo:  tokenRepo,
		tokenCodec: tokenCodec,
	}
}
