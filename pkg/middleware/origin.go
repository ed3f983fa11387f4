package middleware

import (
	"net/http"
	"strings"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"go.uber.org/zap"
)

// Origin only lets through requests whose Host header is in an allow-set.
//
// The header name is matched case-insensitively; the value is compared exactly.
// A request without a (non-empty) Host header gets 400, one with an unknown
// host gets 403 and a warning naming the host.
type Origin struct {
	allowed map[string]struct{}
	logger  *zap.Logger
}

// NewOrigin creates the origin interceptor for the given hosts.
func NewOrigin(allowedHosts []string, logger *zap.Logger) *Origin {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		allowed[h] = struct{}{}
	}
	return &Origin{allowed: allowed, logger: logger}
}

// Handle implements common.Middleware.
func (o *Origin) Handle(req *common.Request, next common.HandlerFunc) *common.Response {
	var host string
	for _, h := range req.Headers() {
		if !strings.EqualFold(h.Name, "host") {
			continue
		}
		host = h.Value
		if _, ok := o.allowed[host]; ok {
			return next(req)
		}
	}

	if host == "" {
		return common.Status(http.StatusBadRequest)
	}

	fields := []zap.Field{
		zap.String("host", host),
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
	}
	if traceID := GetTraceID(req); traceID != "" {
		fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
	}
	o.logger.Warn("request from host blocked", fields...)

	return common.Status(http.StatusForbidden)
}
