package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brokerage/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(&config.Config{Metrics: &config.MetricsConfig{Namespace: "test"}})

	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordLogin(false)
	m.RecordRegistration()
	m.RecordRefresh(true)
	m.RecordTransition("RESERVADA")
	m.RecordTransition("RESERVADA")
	m.RecordPropertyCreated()

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultSuccess)), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultFailure)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RefreshTotal.WithLabelValues(ResultSuccess)), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.PropertyTransitionsTotal.WithLabelValues("RESERVADA")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.PropertiesCreatedTotal), 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLogin(true)
		m.RecordRegistration()
		m.RecordRefresh(false)
		m.RecordTransition("VENDIDA")
		m.RecordPropertyCreated()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(&config.Config{})
	m.RecordPropertyCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "brokerage_properties_created_total 1"))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := New(&config.Config{})
	b := New(&config.Config{})
	a.RecordRegistration()

	assert.InDelta(t, 0.0, testutil.ToFloat64(b.RegistrationsTotal), 0)
	assert.NotSame(t, a.Registry(), b.Registry())
}
