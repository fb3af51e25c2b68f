package middleware

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// accessLogEntry is one line of the JSON access log. Request bodies and auth
// headers are never logged.
type accessLogEntry struct {
	Timestamp string  `json:"ts"`
	Level     string  `json:"level"`
	Hostname  string  `json:"host"`
	RequestID string  `json:"requestId,omitempty"`
	ClientIP  string  `json:"ip"`
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Status    int     `json:"status"`
	LatencyMs float64 `json:"latencyMs"`
	UserAgent string  `json:"ua"`
	BodySize  int     `json:"size"`
	Error     string  `json:"error,omitempty"`
}

// LoggerMiddleware replaces gin's default access log with one JSON line per
// request, carrying the request ID stamped by RequestIDMiddleware.
func LoggerMiddleware() gin.HandlerFunc {
	hostname, _ := os.Hostname()
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		entry := accessLogEntry{
			Timestamp: param.TimeStamp.UTC().Format(time.RFC3339Nano),
			Level:     "info",
			Hostname:  hostname,
			ClientIP:  param.ClientIP,
			Method:    param.Method,
			Path:      param.Path,
			Status:    param.StatusCode,
			LatencyMs: float64(param.Latency) / float64(time.Millisecond),
			UserAgent: param.Request.UserAgent(),
			BodySize:  param.BodySize,
			Error:     param.ErrorMessage,
		}
		if keys := param.Keys; keys != nil {
			if id, ok := keys["requestId"].(string); ok {
				entry.RequestID = id
			}
		}
		b, _ := json.Marshal(entry)
		return string(b) + "\n"
	})
}
