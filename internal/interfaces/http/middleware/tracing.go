package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// Tracing starts a server span per request. Span names use the route
// pattern, e.g. "GET /api/v1/catalog/products/:id".
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithSpanNameFormatter(func(c *gin.Context) string {
			route := c.FullPath()
			if route == "" {
				route = "unknown"
			}
			return c.Request.Method + " " + route
		}),
	)
}

// SpanAttributes tags the request span with the request, store and customer
// ids and marks 5xx responses as errors. It runs after StoreContext.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := c.GetString(RequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if st := GetStore(c); st != nil {
			span.SetAttributes(telemetry.AttrStoreID.String(st.ID.String()))
		}
		if claims := GetJWTClaims(c); claims != nil {
			span.SetAttributes(attribute.String("customer_id", claims.CustomerID))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
