// Package app wires configuration, interceptors, routes and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Suhaibinator/hxdemo/internal/config"
	"github.com/Suhaibinator/hxdemo/internal/demo"
	"github.com/Suhaibinator/hxdemo/internal/views"
	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/Suhaibinator/hxdemo/pkg/metrics"
	"github.com/Suhaibinator/hxdemo/pkg/middleware"
	"github.com/Suhaibinator/hxdemo/pkg/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is a fully wired server.
type App struct {
	config   *config.Config
	logger   *zap.Logger
	router   *router.Router
	recorder *metrics.PrometheusRecorder
	handler  http.Handler
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	views demo.Views
	now   func() time.Time
}

// WithViews replaces the default templ views.
func WithViews(v demo.Views) Option {
	return func(o *appOptions) {
		o.views = v
	}
}

// WithClock replaces time.Now for the demo handlers.
func WithClock(now func() time.Time) Option {
	return func(o *appOptions) {
		o.now = now
	}
}

// New builds the interceptor chain, registers every route and assembles the
// HTTP handler. Registration errors are returned, never deferred to request time.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := appOptions{views: views.New(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{config: cfg, logger: logger}

	if cfg.EnableMetrics {
		rec, err := metrics.NewPrometheusRecorder(metrics.Config{
			Namespace:      "hxdemo",
			Subsystem:      "http",
			IncludeRuntime: true,
		})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.recorder = rec
	}

	a.router = router.NewRouter(router.RouterConfig{
		Logger:            logger,
		GlobalMaxBodySize: cfg.MaxBodySize,
		Middlewares:       a.middlewares(),
	})

	tasks := demo.NewTaskStore(cfg.DemoMaxItems, demo.DefaultTasks()...)
	chat := demo.NewChatStore(cfg.DemoMaxItems, demo.DefaultTranscript(o.now())...)
	handlers := demo.NewHandlers(o.views, tasks, chat,
		demo.WithLogger(logger.Named("demo")),
		demo.WithClock(o.now),
	)
	if err := handlers.Register(a.router); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	a.handler = a.mux()
	return a, nil
}

// middlewares returns the global interceptors, outermost first:
// Trace, Timing, Throttle, Timeout, Authorization, Origin.
// Trace, Throttle and Timeout are optional.
func (a *App) middlewares() []common.Middleware {
	var mws []common.Middleware

	if a.config.EnableTraceID {
		mws = append(mws, middleware.Trace())
	}

	var timingOpts []middleware.TimingOption
	if a.recorder != nil {
		timingOpts = append(timingOpts, middleware.WithRecorder(a.recorder))
	}
	mws = append(mws, middleware.NewTiming(a.logger.Named("timing"), timingOpts...))

	if a.config.RateLimit > 0 {
		mws = append(mws, middleware.NewThrottle(a.config.RateLimit, a.config.RateLimit))
	}
	if a.config.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(a.config.RequestTimeout))
	}

	gate := middleware.AllowAll()
	if len(a.config.AuthBearerTokens) > 0 {
		gate = middleware.NewBearerTokenGate(a.config.AuthBearerTokens...)
	}
	mws = append(mws,
		middleware.NewAuthorization(gate, a.logger.Named("auth")),
		middleware.NewOrigin(a.config.AllowedHosts, a.logger.Named("origin")),
	)

	return mws
}

func (a *App) mux() http.Handler {
	mux := http.NewServeMux()

	if dir := a.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
		} else {
			a.logger.Warn("Static directory not found, static files disabled", zap.String("dir", dir))
		}
	}

	if a.recorder != nil {
		mux.Handle("/metrics", a.recorder.Handler())
	}

	mux.Handle("/", a.router)
	return mux
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Routes lists the registered routes.
func (a *App) Routes() []router.RouteInfo {
	return a.router.Routes()
}

// Serve accepts connections on ln until ctx is cancelled, then drains the
// router and shuts the server down within the configured timeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(a.logger.Named("http")),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down", zap.Duration("timeout", a.config.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()

		routerErr := a.router.Shutdown(shutdownCtx)
		if routerErr != nil {
			a.logger.Warn("Router did not drain in time", zap.Error(routerErr))
		}
		return errors.Join(routerErr, srv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// ListenAndServe listens on the configured address and calls Serve.
func (a *App) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.config.Addr(), err)
	}
	return a.Serve(ctx, ln)
}
