// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shelfshare/booklend-backend/internal/i18n"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

// AuthRequired resolves the bearer token into an authenticated identity
// snapshot or rejects the request. Handlers downstream read the snapshot via
// identity.FromContext and never see an Unresolved state.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = "en"
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			identity.SetInContext(c, identity.Anonymous())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthRequired),
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			identity.SetInContext(c, identity.Anonymous())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthInvalidToken),
			})
			c.Abort()
			return
		}

		snapshot, ok := resolveToken(parts[1])
		if !ok {
			identity.SetInContext(c, identity.Anonymous())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthTokenExpired),
			})
			c.Abort()
			return
		}

		identity.SetInContext(c, snapshot)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid token is present and
// records an anonymous session otherwise; it never rejects.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			identity.SetInContext(c, identity.Anonymous())
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			identity.SetInContext(c, identity.Anonymous())
			c.Next()
			return
		}

		if snapshot, ok := resolveToken(parts[1]); ok {
			identity.SetInContext(c, snapshot)
		} else {
			identity.SetInContext(c, identity.Anonymous())
		}
		c.Next()
	}
}

func resolveToken(token string) (identity.Snapshot, bool) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return identity.Snapshot{}, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return identity.Snapshot{}, false
	}

	return identity.Authenticate(userID, claims.Username, claims.Email), true
}
