package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the client API key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth accepts requests whose X-API-Key header matches one of keys.
// With no keys configured every request is rejected as a server misconfiguration.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	accepted := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			accepted = append(accepted, []byte(k))
		}
	}
	if len(accepted) == 0 {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: no API keys set",
			})
		}
	}

	return func(c *gin.Context) {
		key := []byte(c.GetHeader(APIKeyHeader))
		ok := 0
		// Compare against every key so timing does not reveal which one matched
		for _, a := range accepted {
			ok |= subtle.ConstantTimeCompare(key, a)
		}
		if ok != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
