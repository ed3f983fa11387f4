package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"go.uber.org/zap"
)

// ForbiddenBody is the fixed body sent when a Gate refuses a request.
const ForbiddenBody = "get outta here!"

// Gate decides whether a request may proceed.
// Different authorization mechanisms implement this interface to be used
// with the Authorization middleware.
type Gate interface {
	// Allow returns true if the request may continue down the chain.
	Allow(req *common.Request) bool
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(req *common.Request) bool

// Allow calls f(req).
func (f GateFunc) Allow(req *common.Request) bool {
	return f(req)
}

// AllowAll returns a Gate that lets every request through.
func AllowAll() Gate {
	return GateFunc(func(*common.Request) bool { return true })
}

// BasicAuthGate provides HTTP Basic Authentication.
// It validates username and password credentials against a predefined map.
type BasicAuthGate struct {
	Credentials map[string]string // username -> password
}

// Allow validates the Basic credentials in the Authorization header.
func (g *BasicAuthGate) Allow(req *common.Request) bool {
	header, ok := req.Header("Authorization")
	if !ok {
		return false
	}

	encoded, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	expectedPassword, exists := g.Credentials[username]
	if !exists {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(password), []byte(expectedPassword)) == 1
}

// BearerTokenGate provides Bearer Token Authentication.
// It can validate tokens against a predefined set or using a custom validator function.
type BearerTokenGate struct {
	ValidTokens map[string]bool         // token -> valid
	Validator   func(token string) bool // optional token validator
}

// NewBearerTokenGate creates a gate accepting exactly the given tokens.
func NewBearerTokenGate(tokens ...string) *BearerTokenGate {
	valid := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if t != "" {
			valid[t] = true
		}
	}
	return &BearerTokenGate{ValidTokens: valid}
}

// Allow checks the Bearer token in the Authorization header.
func (g *BearerTokenGate) Allow(req *common.Request) bool {
	header, ok := req.Header("Authorization")
	if !ok {
		return false
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return false
	}

	// If a validator is provided, use it
	if g.Validator != nil {
		return g.Validator(token)
	}

	return g.ValidTokens[token]
}

// APIKeyGate provides API Key Authentication.
// It can validate API keys provided in a header or query parameter.
type APIKeyGate struct {
	ValidKeys map[string]bool // key -> valid
	Header    string          // header name (e.g., "X-API-Key")
	Query     string          // query parameter name (e.g., "api_key")
}

// Allow checks the configured header first, then the query parameter.
func (g *APIKeyGate) Allow(req *common.Request) bool {
	if g.Header != "" {
		if key, ok := req.Header(g.Header); ok && key != "" && g.ValidKeys[key] {
			return true
		}
	}

	if g.Query != "" {
		if key, ok := req.Query(g.Query); ok && key != "" && g.ValidKeys[key] {
			return true
		}
	}

	return false
}

// Authorization evaluates a Gate. Allowed requests continue down the chain;
// refused ones get 403 with ForbiddenBody and never reach next.
type Authorization struct {
	gate   Gate
	logger *zap.Logger
}

// NewAuthorization creates the authorization interceptor. A nil gate allows everything.
func NewAuthorization(gate Gate, logger *zap.Logger) *Authorization {
	if gate == nil {
		gate = AllowAll()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorization{gate: gate, logger: logger}
}

// Handle implements common.Middleware.
func (a *Authorization) Handle(req *common.Request, next common.HandlerFunc) *common.Response {
	if a.gate.Allow(req) {
		return next(req)
	}

	fields := []zap.Field{
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
	}
	if traceID := GetTraceID(req); traceID != "" {
		fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
	}
	a.logger.Warn("Authorization failed", fields...)

	return common.Text(http.StatusForbidden, ForbiddenBody)
}
