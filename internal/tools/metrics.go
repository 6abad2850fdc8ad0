package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times tool invocations.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics registers the tool collectors against registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	invocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marina_tool_invocations_total",
		Help: "Tool invocations partitioned by tool name and outcome.",
	}, []string{"tool", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marina_tool_duration_seconds",
		Help:    "Duration in seconds of tool invocations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})
	registerer.MustRegister(invocations, duration)

	return &Metrics{invocations: invocations, duration: duration}
}

func (m *Metrics) observe(tool, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}
