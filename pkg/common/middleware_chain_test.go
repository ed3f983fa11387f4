package common

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingMiddleware appends its pre- and post-phase markers to order.
func recordingMiddleware(name string, order *[]string) Middleware {
	return MiddlewareFunc(func(req *Request, next HandlerFunc) *Response {
		*order = append(*order, name+"-before")
		resp := next(req)
		*order = append(*order, name+"-after")
		return resp
	})
}

func newTestRequest() *Request {
	return NewRequest(context.Background(), http.MethodGet, "/foo", nil, nil, nil)
}

func TestMiddlewareChainOrder(t *testing.T) {
	var order []string

	chain := NewMiddlewareChain(
		recordingMiddleware("middleware1", &order),
		recordingMiddleware("middleware2", &order),
	)

	handler := chain.Then(func(req *Request) *Response {
		order = append(order, "final-handler")
		return NewResponse([]byte("OK"))
	})

	resp := handler(newTestRequest())

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "OK", string(resp.Body))
	assert.Equal(t, []string{
		"middleware1-before",
		"middleware2-before",
		"final-handler",
		"middleware2-after",
		"middleware1-after",
	}, order)
}

// TestMiddlewareChainShortCircuit registers [A, B, C] where B refuses the request.
// C and the terminal handler must not run while A still sees both phases.
func TestMiddlewareChainShortCircuit(t *testing.T) {
	var order []string

	blocker := MiddlewareFunc(func(req *Request, next HandlerFunc) *Response {
		order = append(order, "B")
		return Text(http.StatusForbidden, "blocked")
	})

	chain := NewMiddlewareChain(
		recordingMiddleware("A", &order),
		blocker,
		recordingMiddleware("C", &order),
	)

	handler := chain.Then(func(req *Request) *Response {
		t.Error("terminal handler must not be called")
		return NewResponse(nil)
	})

	resp := handler(newTestRequest())

	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	assert.Equal(t, "blocked", string(resp.Body))
	assert.Equal(t, []string{"A-before", "B", "A-after"}, order)
}

func TestMiddlewareChainPrependAndAppend(t *testing.T) {
	var order []string

	chain := NewMiddlewareChain(recordingMiddleware("middle", &order))
	chain = chain.Append(recordingMiddleware("inner", &order))
	chain = chain.Prepend(recordingMiddleware("outer", &order))

	handler := chain.Then(func(req *Request) *Response {
		order = append(order, "final")
		return NewResponse(nil)
	})
	handler(newTestRequest())

	assert.Equal(t, []string{
		"outer-before", "middle-before", "inner-before",
		"final",
		"inner-after", "middle-after", "outer-after",
	}, order)
}

func TestMiddlewareChainAppendDoesNotAlias(t *testing.T) {
	var order []string

	base := make(MiddlewareChain, 0, 4)
	base = base.Append(recordingMiddleware("base", &order))

	left := base.Append(recordingMiddleware("left", &order))
	right := base.Append(recordingMiddleware("right", &order))

	left.Then(func(req *Request) *Response { return NewResponse(nil) })(newTestRequest())
	assert.Equal(t, []string{"base-before", "left-before", "left-after", "base-after"}, order)

	order = nil
	right.Then(func(req *Request) *Response { return NewResponse(nil) })(newTestRequest())
	assert.Equal(t, []string{"base-before", "right-before", "right-after", "base-after"}, order)
}

func TestEmptyMiddlewareChain(t *testing.T) {
	handler := NewMiddlewareChain().Then(func(req *Request) *Response {
		return NewResponse([]byte("OK"))
	})

	resp := handler(newTestRequest())
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "OK", string(resp.Body))
}

func TestMiddlewareChainRecoversPanicInHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	var order []string

	chain := NewMiddlewareChain(recordingMiddleware("timing", &order))
	handler := chain.ThenWithLogger(func(req *Request) *Response {
		panic("boom")
	}, zap.New(core))

	resp := handler(newTestRequest())

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.NotContains(t, string(resp.Body), "boom")
	assert.Equal(t, []string{"timing-before", "timing-after"}, order)

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/foo", fields["path"])
}

func TestMiddlewareChainRecoversPanicInMiddleware(t *testing.T) {
	var order []string

	faulty := MiddlewareFunc(func(req *Request, next HandlerFunc) *Response {
		panic("interceptor failure")
	})

	handler := NewMiddlewareChain(recordingMiddleware("outer", &order), faulty).
		Then(func(req *Request) *Response {
			t.Error("terminal handler must not be called")
			return NewResponse(nil)
		})

	resp := handler(newTestRequest())

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, []string{"outer-before", "outer-after"}, order)
}

func TestMiddlewareChainNilResponse(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	handler := NewMiddlewareChain().ThenWithLogger(func(req *Request) *Response {
		return nil
	}, zap.New(core))

	resp := handler(newTestRequest())

	require.NotNil(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, 1, logs.FilterMessage("Handler returned no response").Len())
}

func TestMiddlewareChainCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var order []string
	canceller := MiddlewareFunc(func(req *Request, next HandlerFunc) *Response {
		order = append(order, "cancel")
		cancel()
		return next(req)
	})

	handler := NewMiddlewareChain(
		recordingMiddleware("timing", &order),
		canceller,
		recordingMiddleware("downstream", &order),
	).Then(func(req *Request) *Response {
		t.Error("terminal handler must not be called")
		return NewResponse(nil)
	})

	req := NewRequest(ctx, http.MethodGet, "/foo", nil, nil, nil)
	resp := handler(req)

	assert.Equal(t, StatusClientClosedRequest, resp.StatusCode())
	assert.Equal(t, []string{"timing-before", "cancel", "timing-after"}, order)
}
