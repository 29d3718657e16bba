package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID on requests and responses.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware tags every request with an ID so board edits and generation
// runs can be traced across log lines. Caller-supplied IDs are kept.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request ID for the current request, or an empty string
// outside the middleware chain.
func Value(c *gin.Context) string {
	v, _ := c.Get(contextKey)
	id, _ := v.(string)
	return id
}
