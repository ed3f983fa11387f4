// Package common provides common utilities and interfaces for the hxdemo pipeline.
package common

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// MiddlewareChain represents an ordered chain of middleware.
// The first middleware in the chain is the outermost one.
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return middlewares
}

// Append adds middleware to the end of the chain
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, 0, len(c)+len(middlewares))
	result = append(result, c...)
	return append(result, middlewares...)
}

// Prepend adds middleware to the beginning of the chain
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, len(middlewares)+len(c))
	copy(result, middlewares)
	copy(result[len(middlewares):], c)
	return result
}

// Then applies the middleware chain to a handler.
// Faults are converted to 500 responses but not logged; use ThenWithLogger
// to get diagnostics.
func (c MiddlewareChain) Then(h HandlerFunc) HandlerFunc {
	return c.ThenWithLogger(h, zap.NewNop())
}

// ThenWithLogger folds the chain around h once and returns the composed handler.
// Every link, including h itself, runs inside a boundary that turns a panic or
// a nil response into a 500 and skips the link when the request context is
// already done (499 when cancelled, 408 when its deadline passed).
func (c MiddlewareChain) ThenWithLogger(h HandlerFunc, logger *zap.Logger) HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	next := boundary(logger, h)
	for i := len(c) - 1; i >= 0; i-- {
		mw, inner := c[i], next
		next = boundary(logger, func(req *Request) *Response {
			return mw.Handle(req, inner)
		})
	}
	return next
}

// ContextDone is the response for a request whose context ended with err:
// 408 when its deadline passed, 499 otherwise.
func ContextDone(err error) *Response {
	if errors.Is(err, context.DeadlineExceeded) {
		return Text(http.StatusRequestTimeout, "Request Timeout")
	}
	return Status(StatusClientClosedRequest)
}

// boundary wraps one link of the chain.
func boundary(logger *zap.Logger, link HandlerFunc) HandlerFunc {
	return func(req *Request) (resp *Response) {
		if err := req.Context().Err(); err != nil {
			logger.Debug("Request cancelled",
				zap.Error(err),
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
			)
			return ContextDone(err)
		}

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", req.Method()),
					zap.String("path", req.Path()),
				)
				resp = InternalError()
			}
		}()

		resp = link(req)
		if resp == nil {
			logger.Error("Handler returned no response",
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
			)
			resp = InternalError()
		}
		return resp
	}
}
