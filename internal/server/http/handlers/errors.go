package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/pkg/signature"
	"github.com/polkiloo/paygate/internal/server/http/dto"
)

const (
	msgInvalidJSON        = "invalid JSON"
	msgInvalidSignature   = "invalid signature"
	msgMisconfigured      = "service misconfigured"
	msgProcessorError     = "payment processor error"
	msgProcessorDown      = "payment processor unavailable"
	msgInternal           = "internal error"
	msgDefaultNotFound    = "not found"
	msgProductNotFound    = "product not found"
	msgOrderNotFound      = "order not found"
	msgStorageUnavailable = "storage unavailable"
)

// respondError maps domain errors to status codes. Signature failures share
// one body so callers cannot tell which check failed.
func respondError(c *gin.Context, err error, notFound string) {
	var upstream *domainErrors.UpstreamError
	switch {
	case errors.As(err, &upstream):
		if upstream.Unreachable() {
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: msgProcessorDown})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgProcessorError, Details: upstream.Body})
	case errors.Is(err, domainErrors.ErrMisconfigured):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msgMisconfigured})
	case errors.Is(err, signature.ErrMalformedHeader),
		errors.Is(err, signature.ErrSignatureMismatch),
		errors.Is(err, signature.ErrSignatureExpired):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidSignature})
	case errors.Is(err, domainErrors.ErrInvalidRequest), errors.Is(err, domainErrors.ErrInvalidEventMetadata):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		if notFound == "" {
			notFound = msgDefaultNotFound
		}
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: notFound})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msgInternal})
	}
}
