package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitebuilder/internal/auth"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfirmationRequired), errors.Is(err, service.ErrNoActiveProject):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotEditable),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrUnknownStyleKey),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, service.ErrNameRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLoginRejected):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
