package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveRequest(http.MethodGet, "/api/tasks", http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/tasks", http.StatusOK, 5*time.Millisecond)
	m.TaskCreated()
	m.TaskTransitioned("complete")
	m.TaskTransitioned("complete")
	m.TaskTransitioned("incomplete")
	m.RateLimited("/api/auth/login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/tasks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("incomplete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("/api/auth/login")))

	count, err := testutil.GatherAndCount(registry, "taskapi_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.TaskCreated()
		m.TaskTransitioned("complete")
		m.RateLimited("/")
	})
}

func TestHandler(t *testing.T) {
	registry := NewRegistry()
	m := New(registry)
	m.TaskCreated()

	w := httptest.NewRecorder()
	Handler(registry).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "taskapi_tasks_created_total 1"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
