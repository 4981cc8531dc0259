// Package respond writes JSON error responses for the HTTP handlers.
package respond

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/pkg/logger"
)

// Error sends a standardized error response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Unauthorized:
		return http.StatusUnauthorized
	case errs.Forbidden:
		return http.StatusForbidden
	case errs.Conflict:
		return http.StatusConflict
	case errs.ExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail logs err and answers with its status. Client errors carry the
// underlying reason; everything else gets the fallback message.
func Fail(c *gin.Context, log *logger.Logger, err error, fallback string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		Error(c, status, fallback)
		return
	}
	log.Debug().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request rejected")
	Error(c, status, Reason(err))
}

// Reason returns the cause wrapped by the innermost *errs.Error, or the
// error text when there is none.
func Reason(err error) string {
	reason := err
	var e *errs.Error
	for errors.As(reason, &e) {
		reason = e.Err
	}
	return reason.Error()
}
