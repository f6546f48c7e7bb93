// Package metrics provides the Prometheus counters for auth and property flows.
package metrics

import (
	"net/http"

	"brokerage/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds every counter on its own registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal              *prometheus.CounterVec // by result
	RegistrationsTotal       prometheus.Counter
	RefreshTotal             *prometheus.CounterVec // by result
	PropertyTransitionsTotal *prometheus.CounterVec // by target state
	PropertiesCreatedTotal   prometheus.Counter
}

// New registers the counters under cfg.Metrics.Namespace, plus Go and process collectors.
func New(cfg *config.Config) *Metrics {
	namespace := "brokerage"
	if cfg.Metrics != nil && cfg.Metrics.Namespace != "" {
		namespace = cfg.Metrics.Namespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_registrations_total",
			Help:      "Users registered",
		}),
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_refresh_total",
			Help:      "Token refresh attempts by result",
		}, []string{"result"}),
		PropertyTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_transitions_total",
			Help:      "Property lifecycle transitions by target state",
		}, []string{"to"}),
		PropertiesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_created_total",
			Help:      "Properties captured",
		}),
	}
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}

	return ResultFailure
}

func (m *Metrics) RecordLogin(ok bool) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) RecordRegistration() {
	if m == nil {
		return
	}
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) RecordRefresh(ok bool) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(result(ok)).Inc()
}

// RecordTransition counts a lifecycle move; publishing is recorded as "PUBLICADA".
func (m *Metrics) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.PropertyTransitionsTotal.WithLabelValues(to).Inc()
}

func (m *Metrics) RecordPropertyCreated() {
	if m == nil {
		return
	}
	m.PropertiesCreatedTotal.Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
