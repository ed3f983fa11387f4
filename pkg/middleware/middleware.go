// Package middleware provides the request interceptors of the hxdemo pipeline.
package middleware

import (
	"context"
	"time"

	"github.com/Suhaibinator/hxdemo/pkg/common"
)

// Use the Middleware type from the common package
type Middleware = common.Middleware

// Timeout is a middleware that sets a deadline on the request context.
// Downstream links that have not started when the deadline passes are skipped
// by the chain boundary, which answers 408 Request Timeout.
func Timeout(timeout time.Duration) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, next common.HandlerFunc) *common.Response {
		if timeout <= 0 {
			return next(req)
		}

		// Create a context with a timeout
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		// Call the next handler with the timeout context
		return next(req.WithContext(ctx))
	})
}
