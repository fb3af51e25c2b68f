package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/pkg/appenv"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Origin, Content-Type, Authorization"
)

// CORSMiddleware. Outside production any origin is accepted so the dashboard
// dev server can talk to a local API. In production the incoming Origin is
// reflected only when listed in ALLOWED_ORIGINS (comma separated);
// ALLOW_CREDENTIALS=true additionally sets the credentials header.
func CORSMiddleware() gin.HandlerFunc {
	isProd := appenv.IsProduction() || gin.Mode() == gin.ReleaseMode

	allowed := map[string]struct{}{}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin := strings.TrimSpace(o); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	withCredentials := strings.EqualFold(os.Getenv("ALLOW_CREDENTIALS"), "true")

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		if !isProd {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
		} else if origin := c.Request.Header.Get("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", corsMethods)
				c.Header("Access-Control-Allow-Headers", corsHeaders)
				if withCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
			}
		}

		// Preflight stops here. A disallowed origin gets a 204 with no CORS
		// headers and the browser blocks the real request.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
