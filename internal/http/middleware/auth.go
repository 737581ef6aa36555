package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"todoapi/internal/auth"
	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
	"todoapi/internal/http/respond"
)

const principalKey = "principal"

// UserResolver is the single storage read the gate performs: map a verified
// token subject to a live user.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// RequireAuth is the request gate: extract the bearer token, verify it,
// resolve the subject, and attach a Principal to the context. Any failure
// aborts before the handler runs; a handler never sees a request without a
// freshly resolved Principal.
func RequireAuth(secret []byte, users UserResolver, em respond.Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			em.Error(c, domain.CredentialError{Reason: domain.CredentialMissing})
			return
		}

		claims, err := auth.Verify(token, secret)
		if err != nil {
			em.Error(c, err)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if domain.IsNotFound(err) {
				// Deleted after token issuance. 401, not 404: whether the
				// subject ever existed is not disclosed.
				err = domain.CredentialError{Reason: domain.PrincipalGone, Err: err}
			}
			em.Error(c, err)
			return
		}

		c.Set(principalKey, models.Principal{UserID: user.ID, Name: user.Name, Email: user.Email})
		c.Next()
	}
}

// CurrentPrincipal returns the Principal resolved for this request.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
