// Package common provides shared types and utilities used across the hxdemo pipeline.
package common

import (
	"context"
	"io"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Header is a single request header. Requests keep headers as an ordered
// sequence so that repeated names survive and lookup order is stable.
type Header struct {
	Name  string
	Value string
}

// Request is the immutable request value that flows through the middleware chain.
// Route parameters are the only field populated after construction, and only
// through WithParams, which returns a copy.
type Request struct {
	ctx     context.Context
	method  string
	path    string
	headers []Header
	query   url.Values
	form    url.Values
	params  map[string]string
}

// NewRequest creates a Request from its parts. The slices and maps are copied,
// so later changes by the caller are not observed by the pipeline.
func NewRequest(ctx context.Context, method, path string, headers []Header, query, form url.Values) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	if path == "" {
		path = "/"
	}
	return &Request{
		ctx:     ctx,
		method:  strings.ToUpper(method),
		path:    path,
		headers: slices.Clone(headers),
		query:   cloneValues(query),
		form:    cloneValues(form),
	}
}

// FromHTTP converts an *http.Request into a Request.
// The form is parsed (for POST, PUT, PATCH and DELETE bodies as well as the query string),
// headers are copied in sorted name order, and the Host header that net/http moves
// into http.Request.Host is added back so interceptors can inspect it.
func FromHTTP(r *http.Request) (*Request, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	form := r.PostForm
	if r.Method == http.MethodDelete {
		var err error
		if form, err = deleteForm(r); err != nil {
			return nil, err
		}
	}

	names := slices.Sorted(maps.Keys(r.Header))
	headers := make([]Header, 0, len(r.Header)+1)
	if r.Host != "" {
		headers = append(headers, Header{Name: "Host", Value: r.Host})
	}
	for _, name := range names {
		for _, value := range r.Header[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}

	return &Request{
		ctx:     r.Context(),
		method:  r.Method,
		path:    r.URL.Path,
		headers: headers,
		query:   r.URL.Query(),
		form:    form,
	}, nil
}

// deleteForm reads a urlencoded DELETE body, which http.Request.ParseForm skips.
func deleteForm(r *http.Request) (url.Values, error) {
	form := url.Values{}
	if r.Body == nil {
		return form, nil
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/x-www-form-urlencoded" {
		return form, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return url.ParseQuery(string(b))
}

// Context returns the request context. It is cancelled when the client goes away.
func (r *Request) Context() context.Context {
	return r.ctx
}

// Method returns the upper-case HTTP method.
func (r *Request) Method() string {
	return r.method
}

// Path returns the URL path without the query string.
func (r *Request) Path() string {
	return r.path
}

// Headers returns a copy of the ordered header list.
func (r *Request) Headers() []Header {
	return slices.Clone(r.headers)
}

// Header returns the value of the first header whose name matches name,
// ignoring case.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Query returns the first value of the named query parameter.
func (r *Request) Query(name string) (string, bool) {
	return first(r.query, name)
}

// QueryValues returns every value of the named query parameter.
func (r *Request) QueryValues(name string) []string {
	return slices.Clone(r.query[name])
}

// Form returns the first value of the named form field.
func (r *Request) Form(name string) (string, bool) {
	return first(r.form, name)
}

// FormValues returns every value of the named form field.
// A nil result means the field was not submitted at all.
func (r *Request) FormValues(name string) []string {
	return slices.Clone(r.form[name])
}

// Param returns the named route parameter captured by the router.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.params[name]
	return v, ok
}

// Params returns a copy of all route parameters.
func (r *Request) Params() map[string]string {
	return maps.Clone(r.params)
}

// WithParams returns a copy of the request carrying the given route parameters.
func (r *Request) WithParams(params map[string]string) *Request {
	cp := *r
	cp.params = maps.Clone(params)
	return &cp
}

// WithContext returns a copy of the request using ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("nil context")
	}
	cp := *r
	cp.ctx = ctx
	return &cp
}

func first(values url.Values, name string) (string, bool) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return url.Values{}
	}
	cp := make(url.Values, len(v))
	for k, vs := range v {
		cp[k] = slices.Clone(vs)
	}
	return cp
}

// Response is the value returned up the chain. It is built once and not
// modified afterwards; WithHeader returns a copy.
type Response struct {
	Status int         // HTTP status code, 200 when zero
	Header http.Header // Extra response headers, may be nil
	Body   []byte      // Payload, possibly empty
}

// StatusClientClosedRequest is returned when the client cancelled the request
// before the pipeline finished.
const StatusClientClosedRequest = 499

// NewResponse creates a 200 response with the given body.
func NewResponse(body []byte) *Response {
	return &Response{Status: http.StatusOK, Body: body}
}

// HTML creates a 200 response with an HTML content type.
func HTML(body []byte) *Response {
	return &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:   body,
	}
}

// Status creates an empty response with the given status code.
func Status(code int) *Response {
	return &Response{Status: code}
}

// Text creates a plain text response.
func Text(code int, body string) *Response {
	return &Response{
		Status: code,
		Header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:   []byte(body),
	}
}

// Redirect creates a 302 Found response pointing at location.
func Redirect(location string) *Response {
	return &Response{
		Status: http.StatusFound,
		Header: http.Header{"Location": {location}},
	}
}

// InternalError creates the generic 500 response. It never carries fault detail.
func InternalError() *Response {
	return Text(http.StatusInternalServerError, "Internal Server Error")
}

// StatusCode returns the effective status code.
func (r *Response) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// WithHeader returns a copy of the response with the header set.
func (r *Response) WithHeader(key, value string) *Response {
	cp := *r
	cp.Header = r.Header.Clone()
	if cp.Header == nil {
		cp.Header = http.Header{}
	}
	cp.Header.Set(key, value)
	return &cp
}

// Write writes the response to an http.ResponseWriter.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.StatusCode())
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

// HandlerFunc turns a request into exactly one response.
type HandlerFunc func(req *Request) *Response

// Middleware intercepts a request on its way to the terminal handler.
// Handle either returns its own response (short-circuit) or calls next.
// Implementations must not keep next beyond the call.
type Middleware interface {
	Handle(req *Request, next HandlerFunc) *Response
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(req *Request, next HandlerFunc) *Response

// Handle calls f(req, next).
func (f MiddlewareFunc) Handle(req *Request, next HandlerFunc) *Response {
	return f(req, next)
}
