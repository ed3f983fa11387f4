package middleware

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuthorizationAllows(t *testing.T) {
	auth := NewAuthorization(AllowAll(), nil)

	resp := auth.Handle(newRequest(), okHandler)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "OK", string(resp.Body))
}

func TestAuthorizationNilGateAllows(t *testing.T) {
	resp := NewAuthorization(nil, nil).Handle(newRequest(), okHandler)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestAuthorizationRefuses(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	deny := GateFunc(func(*common.Request) bool { return false })

	resp := NewAuthorization(deny, zap.New(core)).Handle(newRequest(), mustNotCall(t))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	assert.Equal(t, ForbiddenBody, string(resp.Body))
	assert.Equal(t, 1, logs.FilterMessage("Authorization failed").Len())
}

func TestBearerTokenGate(t *testing.T) {
	gate := NewBearerTokenGate("secret", "")

	tests := []struct {
		name    string
		headers []common.Header
		want    bool
	}{
		{"valid token", []common.Header{{Name: "Authorization", Value: "Bearer secret"}}, true},
		{"lower-case header name", []common.Header{{Name: "authorization", Value: "Bearer secret"}}, true},
		{"wrong token", []common.Header{{Name: "Authorization", Value: "Bearer nope"}}, false},
		{"empty token", []common.Header{{Name: "Authorization", Value: "Bearer "}}, false},
		{"wrong scheme", []common.Header{{Name: "Authorization", Value: "Basic secret"}}, false},
		{"missing header", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Allow(newRequest(tt.headers...)))
		})
	}
}

func TestBearerTokenGateValidator(t *testing.T) {
	gate := &BearerTokenGate{Validator: func(token string) bool { return len(token) == 4 }}

	assert.True(t, gate.Allow(newRequest(common.Header{Name: "Authorization", Value: "Bearer abcd"})))
	assert.False(t, gate.Allow(newRequest(common.Header{Name: "Authorization", Value: "Bearer abc"})))
}

func TestAPIKeyGate(t *testing.T) {
	gate := &APIKeyGate{
		ValidKeys: map[string]bool{"key-1": true},
		Header:    "X-API-Key",
		Query:     "api_key",
	}

	assert.True(t, gate.Allow(newRequest(common.Header{Name: "x-api-key", Value: "key-1"})))
	assert.False(t, gate.Allow(newRequest(common.Header{Name: "X-API-Key", Value: "key-2"})))

	withQuery := common.NewRequest(t.Context(), http.MethodGet, "/", nil, map[string][]string{"api_key": {"key-1"}}, nil)
	assert.True(t, gate.Allow(withQuery))
	assert.False(t, gate.Allow(newRequest()))
}

func TestBasicAuthGate(t *testing.T) {
	gate := &BasicAuthGate{Credentials: map[string]string{"admin": "pw"}}
	basic := func(userpass string) common.Header {
		return common.Header{Name: "Authorization", Value: "Basic " + base64.StdEncoding.EncodeToString([]byte(userpass))}
	}

	assert.True(t, gate.Allow(newRequest(basic("admin:pw"))))
	assert.False(t, gate.Allow(newRequest(basic("admin:wrong"))))
	assert.False(t, gate.Allow(newRequest(basic("nobody:pw"))))
	assert.False(t, gate.Allow(newRequest(basic("no-colon"))))
	assert.False(t, gate.Allow(newRequest(common.Header{Name: "Authorization", Value: "Basic !!!"})))
	assert.False(t, gate.Allow(newRequest()))
}
