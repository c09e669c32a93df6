// Package context carries request metadata through the service layers.
package context

import (
	"context"

	"github.com/google/uuid"
)

// Request identifies one inbound API call.
type Request struct {
	ID       string
	TraceID  string
	ClientIP string
}

type requestKey struct{}

// WithRequest stores r in ctx.
func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the request stored in ctx.
func RequestFrom(ctx context.Context) (Request, bool) {
	r, ok := ctx.Value(requestKey{}).(Request)
	return r, ok
}

// RequestID returns the request id in ctx, or "" outside a request.
func RequestID(ctx context.Context) string {
	r, _ := RequestFrom(ctx)
	return r.ID
}

// NewID returns a fresh time-ordered id for requests and traces.
func NewID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}
