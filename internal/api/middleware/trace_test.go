package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	var seen string
	handler := TraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
	req.Header.Set(TraceHeader, "client-trace-1")
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "client-trace-1", seen)
	assert.Equal(t, "client-trace-1", rr.Header().Get(TraceHeader))
	logger.AssertLogContains(t, buf, `"trace_id":"client-trace-1"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rr.Header().Get(TraceHeader), 32)
}

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	seen []observation
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, observation{method, route, status})
}

func TestMetricsMiddleware(t *testing.T) {
	obs := &fakeObserver{}
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(obs))
	r.Get("/units/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/units/7", "/ok", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.seen, 3)
	assert.Equal(t, observation{"GET", "/units/{id}", http.StatusTeapot}, obs.seen[0])
	assert.Equal(t, observation{"GET", "/ok", http.StatusOK}, obs.seen[1])
	assert.Equal(t, http.StatusNotFound, obs.seen[2].status)
}
