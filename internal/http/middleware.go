package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/biodidseq/bioseq/internal/errors"
	"github.com/biodidseq/bioseq/internal/httputil"
)

// UserIDHeader carries the id of the user a request acts on behalf of.
// Upstream authentication (the API gateway) is responsible for setting it.
const UserIDHeader = "X-User-ID"

// CustomLoggerMiddleware logs each request through the structured logger,
// tagged with the request id set by the requestid middleware.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// UserIdentityMiddleware extracts the calling user from the request and
// stores the id in the request context for handlers to read via
// httputil.GetUserID.
//
// Error handling:
//   - Missing header → 401 Unauthorized
//   - Non-numeric or non-positive id → 401 Unauthorized
func UserIdentityMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(UserIDHeader)
		if header == "" {
			logger.Debug("identity extraction failed: missing user header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			logger.Debug("identity extraction failed: invalid user header",
				slog.String("header", header))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		ctx := httputil.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// HealthHandler returns a plain liveness handler. Used by the metrics
// server, which runs outside the Gin API router chain.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.MakeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
}
