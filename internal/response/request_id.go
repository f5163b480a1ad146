package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLen caps client-supplied IDs so a hostile header cannot
// bloat every log line and response it gets echoed into.
const maxRequestIDLen = 64

// RequestIDMiddleware assigns every request an ID, honoring a reasonable
// client-supplied X-Request-ID and minting one otherwise. The ID is echoed
// back in the response header and into the envelope metadata.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// RequestID returns the request's ID, minting one if the middleware did
// not run (direct handler tests, for instance).
func RequestID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyRequestID)
	if id, ok := v.(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
