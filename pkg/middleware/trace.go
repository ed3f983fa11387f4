package middleware

import (
	"context"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/google/uuid"
)

// RequestIDHeader is the response header carrying the trace ID.
const RequestIDHeader = "X-Request-ID"

// traceIDKey is the key used to store the trace ID in the request context
type traceIDKey struct{}

// Trace creates a middleware that generates a unique trace ID for each request,
// adds it to the request context, and echoes it in the X-Request-ID response header.
// This allows for request tracing across logs.
func Trace() Middleware {
	return common.MiddlewareFunc(func(req *common.Request, next common.HandlerFunc) *common.Response {
		// Generate a unique trace ID
		traceID := uuid.New().String()

		// Add the trace ID to the request context
		ctx := context.WithValue(req.Context(), traceIDKey{}, traceID)

		resp := next(req.WithContext(ctx))
		if resp == nil {
			return nil
		}
		return resp.WithHeader(RequestIDHeader, traceID)
	})
}

// GetTraceID extracts the trace ID from the request context.
// Returns an empty string if no trace ID is found.
func GetTraceID(req *common.Request) string {
	return GetTraceIDFromContext(req.Context())
}

// GetTraceIDFromContext extracts the trace ID from a context.
// Returns an empty string if no trace ID is found.
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}
