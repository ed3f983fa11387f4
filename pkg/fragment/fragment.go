// Package fragment renders a primary view together with out-of-band (OOB)
// fragments into one response body.
//
// A handler builds a Context for its view, lists any additional components
// the client should swap into other targets on the existing page (a navbar
// showing the new selection, for example), and calls Respond. The primary
// view comes first in the body, followed by each OOB fragment in the order
// given. Fragments are concatenated as is; each carries its own element id,
// so the client can locate it without any wrapping.
package fragment

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/a-h/templ"
)

// Context is the per-request input of a view. It is created for a single
// handler call and must not be retained after the response is built.
type Context[T any] struct {
	Request *common.Request
	Data    T
	OOB     []templ.Component
}

// NewContext creates a Context.
func NewContext[T any](req *common.Request, data T, oob ...templ.Component) Context[T] {
	return Context[T]{Request: req, Data: data, OOB: oob}
}

// View turns a Context into the component for the primary fragment.
type View[T any] func(c Context[T]) templ.Component

// Compose concatenates the primary fragment and the OOB fragments in order.
// Without OOB fragments, primary is returned as is.
func Compose(primary []byte, oob ...[]byte) []byte {
	if len(oob) == 0 {
		return primary
	}

	n := len(primary)
	for _, f := range oob {
		n += len(f)
	}

	body := make([]byte, 0, n)
	body = append(body, primary...)
	for _, f := range oob {
		body = append(body, f...)
	}
	return body
}

// Render renders the view and every OOB component with the request's
// context and composes the results.
func Render[T any](view View[T], c Context[T]) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("fragment: nil view")
	}

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}

	primary, err := renderComponent(ctx, view(c))
	if err != nil {
		return nil, fmt.Errorf("render primary fragment: %w", err)
	}
	if len(c.OOB) == 0 {
		return primary, nil
	}

	oob := make([][]byte, 0, len(c.OOB))
	for i, comp := range c.OOB {
		b, err := renderComponent(ctx, comp)
		if err != nil {
			return nil, fmt.Errorf("render oob fragment %d: %w", i, err)
		}
		oob = append(oob, b)
	}

	return Compose(primary, oob...), nil
}

// Respond renders the view into a 200 HTML response.
func Respond[T any](view View[T], c Context[T]) (*common.Response, error) {
	body, err := Render(view, c)
	if err != nil {
		return nil, err
	}
	return common.HTML(body), nil
}

func renderComponent(ctx context.Context, comp templ.Component) ([]byte, error) {
	if comp == nil {
		return nil, fmt.Errorf("nil component")
	}
	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
