package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sitebuilder/internal/auth"
	"sitebuilder/internal/domain"
)

// login forwards the credentials. Failures are reported to the client as
// well as logged by the auth client.
func (h *handlers) login(c *gin.Context) {
	var creds auth.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), creds)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, domain.ErrLoginRejected), errors.Is(err, auth.ErrMissingCredentials):
		h.fail(c, err)
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
