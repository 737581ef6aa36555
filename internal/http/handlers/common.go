package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
	"todoapi/internal/http/middleware"
	"todoapi/internal/http/respond"
)

// bindJSON ensures the body is present and parsable; failures are client
// input faults, never 500s.
func bindJSON[T any](c *gin.Context, em respond.Emitter, dst *T) bool {
	if c.Request.Body == nil {
		em.Error(c, domain.ValidationError{Msg: "request body is required"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		em.Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return false
	}
	return true
}

// pathID parses the :id segment. A non-numeric id is the cast-error case:
// 400 InvalidIdentifier, not a storage round-trip.
func pathID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.InvalidIDError{Value: raw, Err: err}
	}
	return id, nil
}

// principal returns the Principal the auth gate resolved for this request.
// Protected routes always have one; the error branch exists so a
// misregistered route fails closed instead of serving unscoped data.
func principal(c *gin.Context) (models.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return models.Principal{}, domain.CredentialError{Reason: domain.CredentialMissing}
	}
	return p, nil
}
