// Package http provides HTTP handlers for identity document operations.
// Documents are stored content-addressed and versioned by replacement.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/biodidseq/bioseq/internal/errors"
	"github.com/biodidseq/bioseq/internal/httputil"
	"github.com/biodidseq/bioseq/internal/identity/http/dto"
	identityUseCase "github.com/biodidseq/bioseq/internal/identity/usecase"
	customValidation "github.com/biodidseq/bioseq/internal/validation"
)

// DocumentHandler handles HTTP requests for identity document operations.
type DocumentHandler struct {
	documentUseCase identityUseCase.DocumentUseCase
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler with required dependencies.
func NewDocumentHandler(
	documentUseCase identityUseCase.DocumentUseCase,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentUseCase: documentUseCase,
		logger:          logger,
	}
}

// CreateHandler registers a new DID document owned by the calling user.
// POST /api/did - Requires an authenticated user.
// Returns 201 Created with the full document.
func (h *DocumentHandler) CreateHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateDocumentRequest

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

	document, err := h.documentUseCase.Create(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, document)
}

// GetHandler retrieves the current document for a DID.
// GET /api/did/:did - Public, no ownership check.
// Returns 200 OK with the full document.
func (h *DocumentHandler) GetHandler(c *gin.Context) {
	did := c.Param("did")

	document, err := h.documentUseCase.Get(c.Request.Context(), did)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, document)
}

// ResolveHandler retrieves the current document for a DID together with the
// pointer metadata that located it.
// GET /api/did/resolve/:did - Public, no ownership check.
// Returns 200 OK with the document and its content address.
func (h *DocumentHandler) ResolveHandler(c *gin.Context) {
	did := c.Param("did")

	result, err := h.documentUseCase.Resolve(c.Request.Context(), did)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResolutionToResponse(result))
}

// UpdateHandler applies a patch to the current document and repoints the DID
// at the new content address.
// PUT /api/did/:did - Requires the calling user to own the DID.
// Returns 200 OK with the updated document.
func (h *DocumentHandler) UpdateHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	did := c.Param("did")

	var req dto.UpdateDocumentRequest

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

	document, err := h.documentUseCase.Update(c.Request.Context(), userID, did, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, document)
}

// LinkDataverseHandler records a Dataverse dataset DOI on the document.
// POST /api/did/:did/dataverse - Requires the calling user to own the DID.
// Returns 200 OK with a link confirmation.
func (h *DocumentHandler) LinkDataverseHandler(c *gin.Context) {
	userID, ok := httputil.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	did := c.Param("did")

	var req dto.LinkDataverseRequest

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

	document, err := h.documentUseCase.LinkExternalReference(c.Request.Context(), userID, did, req.DataverseDOI)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.LinkDataverseResponse{
		Message:      "DID successfully linked to Dataverse dataset",
		DID:          document.ID,
		DataverseDOI: req.DataverseDOI,
	}
	c.JSON(http.StatusOK, response)
}
