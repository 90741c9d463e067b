// Package http provides HTTP handlers for capability token operations.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	"github.com/biodidseq/bioseq/internal/capability/http/dto"
	capabilityUseCase "github.com/biodidseq/bioseq/internal/capability/usecase"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
	"github.com/biodidseq/bioseq/internal/httputil"
	customValidation "github.com/biodidseq/bioseq/internal/validation"
)

// TokenHandler handles HTTP requests for capability token operations.
type TokenHandler struct {
	tokenUseCase capabilityUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase capabilityUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueHandler mints a new root token for an audience DID.
// POST /api/ucan/issue - Requires an authenticated user.
// Returns 201 Created with the token string and its expiry.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.IssueTokenRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	capabilities, err := dto.MapCapabilityPairs(req.Capabilities)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := &domain.IssueTokenInput{
		AudienceDID:  req.Audience,
		Capabilities: capabilities,
		TTL:          time.Duration(req.Expiration) * time.Second,
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), userID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueOutputToResponse(output))
}

// ValidateHandler checks a token string against the stored record.
// POST /api/ucan/validate - Public.
// Returns 200 OK for both valid and invalid tokens; invalidity is reported
// in the response body, not the status code.
func (h *TokenHandler) ValidateHandler(c *gin.Context) {
	var req dto.ValidateTokenRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.tokenUseCase.Validate(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapValidationToResponse(result))
}

// RevokeHandler marks a token as revoked.
// POST /api/ucan/revoke - Requires the calling user to own the token.
// Returns 200 OK with a confirmation. Revoking twice succeeds.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.RevokeTokenRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.tokenUseCase.Revoke(c.Request.Context(), userID, req.Token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.RevokeResponse{
		Status:  "success",
		Message: "Token revoked successfully",
	}
	c.JSON(http.StatusOK, response)
}

// DelegateHandler mints a new token derived from a parent token.
// POST /api/ucan/delegate - Requires an authenticated user.
// Returns 201 Created with the delegated token string and its expiry.
func (h *TokenHandler) DelegateHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.DelegateTokenRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	capabilities, err := dto.MapCapabilityPairs(req.Capabilities)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := &domain.DelegateTokenInput{
		ParentToken:  req.ParentToken,
		AudienceDID:  req.Audience,
		Capabilities: capabilities,
	}

	output, err := h.tokenUseCase.Delegate(c.Request.Context(), userID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueOutputToResponse(output))
}
