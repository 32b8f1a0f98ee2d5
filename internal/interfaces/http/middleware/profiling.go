package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// probes and docs are not worth a label set of their own
var (
	profilingSkipSuffixes = []string{"/health", "/system/ping"}
	profilingSkipPrefixes = []string{"/swagger"}
)

func skipProfiling(route string) bool {
	if route == "" {
		return true
	}
	for _, suffix := range profilingSkipSuffixes {
		if strings.HasSuffix(route, suffix) {
			return true
		}
	}
	for _, prefix := range profilingSkipPrefixes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

// Profiling tags CPU samples taken while serving a request with its route,
// method and store. It runs after StoreContext.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipProfiling(route) {
			c.Next()
			return
		}

		storeID := ""
		if st := GetStore(c); st != nil {
			storeID = st.ID.String()
		}
		labels := telemetry.HTTPRequestLabels(route, c.Request.Method, storeID)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
