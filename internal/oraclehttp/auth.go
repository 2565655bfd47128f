package oraclehttp

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// bearerClaims is the minimal claim set a predict token must carry —
// this server authenticates callers, not end users, so only the
// registered claims (expiry in particular) matter.
type bearerClaims struct {
	jwt.RegisteredClaims
}

// RequireBearerAuth returns middleware that rejects any request
// without a valid HS256 bearer token signed with secret, matching the
// teacher's own RequireAuth/SetContextFromToken pattern but scoped to
// a single shared service secret instead of a per-user session lookup.
func RequireBearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		parsed, err := jwt.ParseWithClaims(tokenString, &bearerClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
