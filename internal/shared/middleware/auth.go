package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/pkg/jwt"
	"bgpiesa-backend/pkg/logger"
)

const (
	// ContextKeySubject holds the token subject after AdminRequired
	ContextKeySubject = "subject"

	adminSubject = "admin"

	msgTokenRequired = "Необходим е администраторски токен."
	msgTokenInvalid  = "Невалиден или изтекъл токен."
)

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AdminRequired rejects requests without a valid admin bearer token
func AdminRequired(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Unauthorized(c, msgTokenRequired)
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil || claims.Subject != adminSubject {
			logger.Debug("admin token rejected", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Header("WWW-Authenticate", "Bearer")
			response.Unauthorized(c, msgTokenInvalid)
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}
