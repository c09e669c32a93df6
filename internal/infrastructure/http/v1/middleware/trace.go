package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appctx "infinito/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	ctxRequestID = "request_id"
)

var tracer = otel.Tracer("infinito/http")

// Trace assigns request and trace ids (honouring incoming headers), echoes them
// back and wraps the request in a server span named after the route.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := appctx.Request{
			ID:       c.GetHeader(HeaderRequestID),
			TraceID:  c.GetHeader(HeaderTraceID),
			ClientIP: c.ClientIP(),
		}
		if req.ID == "" {
			req.ID = appctx.NewID()
		}
		if req.TraceID == "" {
			req.TraceID = req.ID
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("request.id", req.ID),
			))
		defer span.End()

		c.Request = c.Request.WithContext(appctx.WithRequest(ctx, req))
		c.Set(ctxRequestID, req.ID)
		c.Header(HeaderRequestID, req.ID)
		c.Header(HeaderTraceID, req.TraceID)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
