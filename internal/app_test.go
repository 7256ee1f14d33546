package internal

import (
	"cvewatch/internal/controllers"
	"cvewatch/internal/providers"
	"cvewatch/internal/structures"
	"cvewatch/internal/testutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHandler(metricsEnabled bool) http.Handler {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: metricsEnabled}}
	router := InitRoutes(newRouteTestController(), &testutil.MockLogger{})
	health := controllers.NewHealthController(&routeTestService{}, &routeTestRunner{})
	// the noop provider keeps repeated tests off the default registry
	metrics := providers.NewMetricsProvider(&structures.Config{})
	return NewHandler(health, conf, router, metrics)
}

func TestNewHandler_ServesHealthAndRoutes(t *testing.T) {
	h := newTestHandler(false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"no cycle has run yet"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewHandler_ExposesMetricsWhenEnabled(t *testing.T) {
	h := newTestHandler(true)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
