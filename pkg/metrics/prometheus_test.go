package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	rec, err := NewPrometheusRecorder(Config{Namespace: "test"})
	require.NoError(t, err)

	rec.ObserveRequest(http.MethodGet, http.StatusOK, 150*time.Microsecond)
	rec.ObserveRequest(http.MethodGet, http.StatusOK, 3*time.Millisecond)
	rec.ObserveRequest(http.MethodPost, http.StatusForbidden, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("POST", "403")))

	// One histogram series per label pair
	assert.Equal(t, 2, testutil.CollectAndCount(rec.durations))
}

func TestHandlerExposesMetrics(t *testing.T) {
	rec, err := NewPrometheusRecorder(Config{Namespace: "test", Subsystem: "http"})
	require.NoError(t, err)

	rec.ObserveRequest(http.MethodPost, http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="POST",status="200"} 1`)
	assert.Contains(t, body, "test_http_request_duration_seconds_bucket")
}

func TestGatherExpected(t *testing.T) {
	rec, err := NewPrometheusRecorder(Config{Namespace: "test"})
	require.NoError(t, err)

	rec.ObserveRequest(http.MethodGet, http.StatusNotFound, time.Millisecond)

	expected := `
# HELP test_requests_total Total number of handled requests.
# TYPE test_requests_total counter
test_requests_total{method="GET",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "test_requests_total"))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, err := NewPrometheusRecorder(Config{Namespace: "test", IncludeRuntime: true})
	require.NoError(t, err)
	b, err := NewPrometheusRecorder(Config{Namespace: "test", IncludeRuntime: true})
	require.NoError(t, err)

	a.ObserveRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 0, testutil.CollectAndCount(b.requests))
}
