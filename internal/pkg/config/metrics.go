package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records how a component's configuration loaded. Names are
// prefixed with the component, so worker gets:
//   - worker_config_load_timestamp
//   - worker_config_fallbacks_total{field}
//   - worker_config_fallback_active (1 while any field runs on its default)
//
// Metrics register with the default registry; build one per component.
type Metrics struct {
	LoadedAt  prometheus.Gauge
	Fallbacks *prometheus.CounterVec
	Active    prometheus.Gauge
}

// NewMetrics registers the configuration metrics of component.
func NewMetrics(component string) *Metrics {
	prefix := component + "_config_"
	return &Metrics{
		LoadedAt: promauto.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "load_timestamp",
			Help: "Unix time of the last " + component + " configuration load",
		}),
		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "fallbacks_total",
			Help: "Invalid " + component + " settings replaced by their default, by field",
		}, []string{"field"}),
		Active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "fallback_active",
			Help: "1 while any " + component + " setting runs on its default",
		}),
	}
}

// Fallback counts one invalid value of field replaced by its default.
func (m *Metrics) Fallback(field string) {
	m.Fallbacks.WithLabelValues(field).Inc()
}

// Loaded stamps the load time and publishes whether any fallback is active.
func (m *Metrics) Loaded(fallbackActive bool) {
	m.LoadedAt.SetToCurrentTime()
	if fallbackActive {
		m.Active.Set(1)
		return
	}
	m.Active.Set(0)
}
