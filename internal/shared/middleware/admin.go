package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/pkg/cache"
	"bgpiesa-backend/pkg/logger"
)

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// CacheInvalidation flushes the public read cache after every successful
// admin mutation.
func CacheInvalidation(store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if isReadOnly(c.Request.Method) || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		if err := store.DeletePattern(c.Request.Context(), cache.CatalogPrefix+"*"); err != nil {
			logger.Warn("failed to flush catalog cache", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
		}
	}
}

// BodyLimit caps request bodies at maxBytes. Zero disables the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
