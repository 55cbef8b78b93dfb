package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"edpharma/models"
	"edpharma/services"
)

const principalKey = "principal"

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
// Websocket upgrades may pass it as ?token= since browsers cannot set headers there.
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if header == "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return header
}

func AuthMiddleware(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		principal, err := identity.Verify(c.Request.Context(), tokenString)
		if err != nil {
			var serr *services.StorageError
			if errors.As(err, &serr) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: admin only"})
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal AuthMiddleware stored on the request.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
