package middleware

import (
	"net/http"
	"time"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"go.uber.org/zap"
)

// DurationRecorder receives one observation per request handled by Timing.
type DurationRecorder interface {
	ObserveRequest(method string, status int, duration time.Duration)
}

// Timing measures the wall-clock time of everything downstream of it.
// The record is emitted in a deferred call, so it is written even when a
// downstream link fails. Timing never alters the response.
type Timing struct {
	logger   *zap.Logger
	recorder DurationRecorder
	now      func() time.Time
}

// TimingOption configures Timing.
type TimingOption func(*Timing)

// WithRecorder sends every measurement to rec in addition to the log.
func WithRecorder(rec DurationRecorder) TimingOption {
	return func(t *Timing) {
		t.recorder = rec
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TimingOption {
	return func(t *Timing) {
		t.now = now
	}
}

// NewTiming creates the timing interceptor.
func NewTiming(logger *zap.Logger, opts ...TimingOption) *Timing {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Timing{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle implements common.Middleware.
func (t *Timing) Handle(req *common.Request, next common.HandlerFunc) (resp *common.Response) {
	start := t.now()

	defer func() {
		elapsed := t.now().Sub(start)

		status := http.StatusInternalServerError
		if resp != nil {
			status = resp.StatusCode()
		}

		fields := []zap.Field{
			zap.String("path", req.Path()),
			zap.Int64("duration_us", elapsed.Microseconds()),
		}
		if traceID := GetTraceID(req); traceID != "" {
			fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}
		t.logger.Info("Request", fields...)

		if t.recorder != nil {
			t.recorder.ObserveRequest(req.Method(), status, elapsed)
		}
	}()

	return next(req)
}
