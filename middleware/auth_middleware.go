package middlewares

import (
	"context"
	"net/http"
	"strings"

	"marketplace-hub/models"
	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator resolves a bearer token to the calling account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Principal, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthMiddleware requires a valid bearer token and stores the principal on the context.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if services.KindOf(err) == services.KindInternal {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}

		c.Set(principalKey, p)
		c.Set("user_id", p.UserID.Hex())
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (services.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}

// RequireRoles lets the request through only for the listed roles. It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		if !allowed[p.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "User role " + string(p.Role) + " is not authorized to access this route",
			})
			return
		}
		c.Next()
	}
}
