package server

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountRequestsPerRoute(t *testing.T) {
	s := newTestServer(t)

	get(t, s, "/api/total?start=2011-01-01&end=2011-01-07")
	get(t, s, "/api/total")
	get(t, s, "/api/views/pie")

	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("GET", "/api/total", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("GET", "/api/views/{view}", "404")))
}

func TestMetricsRecordsGauge(t *testing.T) {
	s := newTestServer(t)

	get(t, s, "/api/total?start=2011-01-01&end=2011-01-10")
	assert.Equal(t, 10.0, testutil.ToFloat64(s.metrics.recordsServed))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/bounds")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_http_requests_total")
	assert.Contains(t, rec.Body.String(), "dashboard_records_served")
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}
