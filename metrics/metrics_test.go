package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/blog/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/blog/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	// All three requests collapse onto the route pattern label.
	count := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/blog/{id}", "404"))
	assert.Equal(t, float64(3), count)
}

func TestDomainCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSignup()
	m.ObserveLogin()
	m.ObserveLogin()
	m.ObserveBlogMutation("create")
	m.ObserveBlogMutation("delete")
	m.ObserveBlogMutation("delete")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.signupsTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.loginsTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.blogMutationsTotal.WithLabelValues("delete")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveSignup()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "signups_total 1"))
}
