package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCapturesAndExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveCapture(CaptureOutcomeCaptured, 3, 10*time.Millisecond)
	m.ObserveCapture(CaptureOutcomeFailed, 0, 0)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/health", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `forum_captures_total{outcome="captured"} 1`)
	assert.Contains(t, body, `forum_captures_total{outcome="failed"} 1`)
	assert.Contains(t, body, "forum_captured_posts_count 1")
	assert.Contains(t, body, "cache_hit_ratio 0.5")
	assert.Contains(t, body, "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveCapture(CaptureOutcomeEmpty, 0, 0)
	m.ObserveDBQuery("q", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
