package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/Suhaibinator/hxdemo/pkg/middleware"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by Dispatch when no route matches the method and path.
	ErrNotFound = errors.New("route not found")

	// ErrDuplicateRoute is returned when a method and pattern shape is registered twice.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrAmbiguousRoute is returned when two patterns for the same method could
	// match the same concrete path.
	ErrAmbiguousRoute = errors.New("ambiguous route")

	// ErrRouteConflict is returned when the route tree rejects a pattern: two
	// captures with different names at the same position of patterns with the
	// same segment count.
	ErrRouteConflict = errors.New("conflicting route")

	// ErrRouterSealed is returned when a route is registered after the router
	// started serving requests.
	ErrRouterSealed = errors.New("router already serving")

	// ErrInvalidRoute is returned for a route without methods or handler.
	ErrInvalidRoute = errors.New("invalid route")
)

// Router dispatches requests to handlers by method and path and implements http.Handler.
// The global middleware chain is folded once in NewRouter around the router's own
// terminal handler.
type Router struct {
	config     RouterConfig
	trees      map[int]*httprouter.Router // keyed by segment count
	logger     *zap.Logger
	handler    common.HandlerFunc
	mu         sync.Mutex // guards routes and trees during registration
	routes     []*route
	sealed     atomic.Bool
	wg         sync.WaitGroup
	shutdown   bool
	shutdownMu sync.RWMutex
}

// route is a registered (method, pattern, handler) triple.
type route struct {
	method  string
	pattern Pattern
	handler common.HandlerFunc
}

// Match is the result of a successful Dispatch.
type Match struct {
	Method  string
	Pattern string
	Params  map[string]string
	Handler common.HandlerFunc
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(config RouterConfig) *Router {
	// Set up the logger
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		config: config,
		trees:  make(map[int]*httprouter.Router),
		logger: logger,
	}

	// Build the global chain once around the terminal handler
	r.handler = common.NewMiddlewareChain(config.Middlewares...).ThenWithLogger(r.Handle, logger)

	return r
}

// Register registers a handler for a method and pattern.
// Registration errors are configuration errors and should stop startup.
func (r *Router) Register(method, pattern string, handler common.HandlerFunc) error {
	return r.RegisterRoute(RouteConfig{
		Path:    pattern,
		Methods: []string{method},
		Handler: handler,
	})
}

// MustRegister is like Register but panics on error.
func (r *Router) MustRegister(method, pattern string, handler common.HandlerFunc) {
	if err := r.Register(method, pattern, handler); err != nil {
		panic(err)
	}
}

// RegisterRoute registers a route for each of its methods.
// The route's own middlewares are folded around its handler at this point.
func (r *Router) RegisterRoute(rc RouteConfig) error {
	return r.registerRoute(rc, nil)
}

// RegisterSubRouter registers all routes in a sub-router.
// It applies the sub-router's path prefix and middlewares to every route.
// A route with an empty Path is registered at the prefix itself.
func (r *Router) RegisterSubRouter(sr SubRouterConfig) error {
	for _, rc := range sr.Routes {
		rc.Path = sr.PathPrefix + rc.Path
		if err := r.registerRoute(rc, sr.Middlewares); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) registerRoute(rc RouteConfig, outer []common.Middleware) error {
	if r.sealed.Load() {
		return fmt.Errorf("%w: %s", ErrRouterSealed, rc.Path)
	}
	if rc.Handler == nil || len(rc.Methods) == 0 {
		return fmt.Errorf("%w %q: a handler and at least one method are required", ErrInvalidRoute, rc.Path)
	}

	pattern, err := ParsePattern(rc.Path)
	if err != nil {
		return err
	}

	// Fold sub-router and route middlewares once
	chain := common.NewMiddlewareChain(outer...).Append(rc.Middlewares...)
	handler := chain.ThenWithLogger(rc.Handler, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, method := range rc.Methods {
		rt := &route{
			method:  strings.ToUpper(method),
			pattern: pattern,
			handler: handler,
		}
		if err := r.checkConflicts(rt); err != nil {
			return err
		}
		if err := r.insert(rt); err != nil {
			return err
		}
		r.routes = append(r.routes, rt)
	}
	return nil
}

// checkConflicts rejects duplicates and ambiguous patterns for the same method.
func (r *Router) checkConflicts(rt *route) error {
	for _, existing := range r.routes {
		if existing.method != rt.method {
			continue
		}
		if existing.pattern.shape() == rt.pattern.shape() {
			return fmt.Errorf("%w: %s %s (already registered as %s)",
				ErrDuplicateRoute, rt.method, rt.pattern, existing.pattern)
		}
		if existing.pattern.overlaps(rt.pattern) {
			return fmt.Errorf("%w: %s %s overlaps %s",
				ErrAmbiguousRoute, rt.method, rt.pattern, existing.pattern)
		}
	}
	return nil
}

// insert adds the route to the tree for its segment count, converting
// httprouter panics into errors. Patterns of different lengths never share a
// tree, so a literal and a capture at one position only clash when the
// patterns are the same length.
func (r *Router) insert(rt *route) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrRouteConflict, rt.method, rt.pattern, rec)
		}
	}()

	n := len(rt.pattern.segments)
	tree, ok := r.trees[n]
	if !ok {
		tree = httprouter.New()
		r.trees[n] = tree
	}
	tree.Handle(rt.method, rt.pattern.treePath(), func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		if probe, ok := w.(*routeProbe); ok {
			probe.route = rt
		}
	})
	return nil
}

// routeProbe is passed to a looked-up tree handle to learn which route it belongs to.
// It is never used to write a response.
type routeProbe struct {
	route *route
}

func (p *routeProbe) Header() http.Header         { return http.Header{} }
func (p *routeProbe) Write(b []byte) (int, error) { return len(b), nil }
func (p *routeProbe) WriteHeader(int)             {}

// Dispatch finds the route for method and path and coerces its parameters.
// It returns ErrNotFound when nothing matches and a *ParamError when a
// captured segment has the wrong type. Dispatch has no side effects.
func (r *Router) Dispatch(method, path string) (Match, error) {
	tree, ok := r.trees[segmentCount(path)]
	if !ok {
		return Match{}, ErrNotFound
	}
	handle, ps, _ := tree.Lookup(strings.ToUpper(method), path)
	if handle == nil {
		return Match{}, ErrNotFound
	}

	var probe routeProbe
	handle(&probe, nil, ps)
	if probe.route == nil {
		return Match{}, ErrNotFound
	}

	params, err := probe.route.pattern.bind(ps.ByName)
	if errors.Is(err, errEmptyCapture) {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, err
	}

	return Match{
		Method:  probe.route.method,
		Pattern: probe.route.pattern.String(),
		Params:  params,
		Handler: probe.route.handler,
	}, nil
}

// Handle is the router's terminal handler: the innermost link of the global chain.
func (r *Router) Handle(req *common.Request) *common.Response {
	match, err := r.Dispatch(req.Method(), req.Path())
	if err == nil {
		return match.Handler(req.WithParams(match.Params))
	}

	var paramErr *ParamError
	if errors.As(err, &paramErr) {
		r.logger.Debug("Invalid route parameter",
			zap.Error(err),
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
		)
		return common.Text(http.StatusBadRequest, "Bad Request")
	}

	return common.Text(http.StatusNotFound, "Not Found")
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]RouteInfo, 0, len(r.routes))
	for _, rt := range r.routes {
		infos = append(infos, RouteInfo{Method: rt.method, Pattern: rt.pattern.String()})
	}
	return infos
}

// ServeHTTP implements the http.Handler interface.
// It converts the request, runs the middleware chain and router, and writes
// the single resulting response.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// No more registrations once traffic arrives
	r.sealed.Store(true)

	// First add to the wait group before checking shutdown status
	r.wg.Add(1)
	defer r.wg.Done()

	r.shutdownMu.RLock()
	isShutdown := r.shutdown
	r.shutdownMu.RUnlock()

	if isShutdown {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	// Apply body size limit
	if r.config.GlobalMaxBodySize > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.config.GlobalMaxBodySize)
	}

	creq, err := common.FromHTTP(req)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		r.logger.Warn("Failed to read request",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", status),
		)
		http.Error(w, http.StatusText(status), status)
		return
	}

	resp := r.handler(creq)
	if err := resp.Write(w); err != nil {
		r.logger.Debug("Failed to write response",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
	}
}

// Shutdown gracefully shuts down the router.
// It stops accepting new requests and waits for existing requests to complete.
// If the context is canceled before all requests complete, it returns the context's error.
func (r *Router) Shutdown(ctx context.Context) error {
	// Mark the router as shutting down
	r.shutdownMu.Lock()
	r.shutdown = true
	r.shutdownMu.Unlock()

	// Create a channel to signal when all requests are done
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	// Wait for all requests to finish or for the context to be canceled
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPError represents an HTTP error with a status code and message.
// When returned from an ErrorHandlerFunc, the status code and message are sent
// to the client as is.
type HTTPError struct {
	StatusCode int    // HTTP status code (e.g., 400, 404, 500)
	Message    string // Error message to be sent in the response body
}

// Error implements the error interface.
// It returns a string representation of the HTTP error in the format "status: message".
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the specified status code and message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrorHandlerFunc is a handler that reports failures as errors.
type ErrorHandlerFunc func(req *common.Request) (*common.Response, error)

// HandleErrors adapts an ErrorHandlerFunc to a common.HandlerFunc.
// An *HTTPError becomes a response with its status and message; client errors are
// logged at warn level. Any other error is logged at error level and becomes a
// generic 500.
func HandleErrors(logger *zap.Logger, h ErrorHandlerFunc) common.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(req *common.Request) *common.Response {
		resp, err := h(req)
		if err == nil {
			return resp
		}

		// Create log fields
		fields := []zap.Field{
			zap.Error(err),
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
		}

		// Add trace ID if present
		if traceID := middleware.GetTraceID(req); traceID != "" {
			fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode >= http.StatusInternalServerError {
				logger.Error("Handler error", fields...)
			} else {
				logger.Warn("Client error", fields...)
			}
			return common.Text(httpErr.StatusCode, httpErr.Message)
		}

		logger.Error("Handler error", fields...)
		return common.InternalError()
	}
}
