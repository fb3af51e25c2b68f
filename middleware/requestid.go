package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware stamps every request with an X-Request-ID. A client-
// supplied ID is kept so the frontend can correlate its own traces; otherwise
// a fresh UUID is issued. The ID is echoed on the response and stored in the
// context under "requestId" for the access log.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("requestId", id)
		c.Next()
	}
}
