package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/apperrors"
)

// Context key for the authenticated identity
const ContextKeyIdentity = "auth_identity"

// Authenticator verifies an access token.
type Authenticator interface {
	Authenticate(token string) (*Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := a.Authenticate(BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     apperrors.Message(err),
				"timestamp": time.Now().UTC(),
			})
			return
		}
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// proceeds anonymously otherwise.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if identity, err := a.Authenticate(token); err == nil {
				c.Set(ContextKeyIdentity, identity)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the authenticated caller, if any.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(*Identity); ok {
			return identity, true
		}
	}
	return nil, false
}

// UserID returns the authenticated caller's id or "".
func UserID(c *gin.Context) string {
	if identity, ok := CurrentIdentity(c); ok {
		return identity.UserID
	}
	return ""
}
