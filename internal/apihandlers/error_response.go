package apihandlers

import (
	"errors"
	"net/http"

	"inkwell/internal/analysis"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/store"
	"inkwell/internal/store/taxonomyfile"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// APIError defines standard error response
// Example: { "error": { "code": "bad_request", "message": "Invalid ID" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Conflict(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusConflict, "conflict", msg)
}

func ServiceUnavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, "service_unavailable", msg)
}

// RespondError maps service and store errors onto the error envelope.
// Unknown errors are logged and reported as internal errors.
func RespondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		BadRequest(ctx, err.Error())
	case errors.Is(err, store.ErrNotFound):
		NotFound(ctx, err.Error())
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrForeignKeyViolation), errors.Is(err, taxonomyfile.ErrReadOnly):
		Conflict(ctx, err.Error())
	case errors.Is(err, analysis.ErrTaxonomyUnavailable), errors.Is(err, services.ErrJobsDisabled):
		ServiceUnavailable(ctx, err.Error())
	default:
		log.WithFields(log.Fields{
			"request_id": ctx.GetString(requestIDKey),
			"path":       ctx.FullPath(),
		}).Errorf("request failed: %v", err)
		Internal(ctx, "internal error")
	}
}
