package webserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are the Prometheus instruments of a rating session. They
// implement session.Observer.
type Collectors struct {
	recomputes prometheus.Counter
	duration   prometheus.Histogram
	version    prometheus.Gauge
	summaries  prometheus.Gauge
}

// NewCollectors registers the session collectors with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		recomputes: f.NewCounter(prometheus.CounterOpts{
			Name: "elex_recomputes_total",
			Help: "Number of published configuration recomputes.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "elex_recompute_duration_seconds",
			Help:    "Wall-clock duration of a recompute over all summaries.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		version: f.NewGauge(prometheus.GaugeOpts{
			Name: "elex_config_version",
			Help: "Version of the published rating configuration.",
		}),
		summaries: f.NewGauge(prometheus.GaugeOpts{
			Name: "elex_summaries",
			Help: "Number of rated summaries in the published snapshot.",
		}),
	}
}

// Recomputed records one published recompute.
func (c *Collectors) Recomputed(version uint64, summaries int, elapsed time.Duration) {
	c.recomputes.Inc()
	c.duration.Observe(elapsed.Seconds())
	c.version.Set(float64(version))
	c.summaries.Set(float64(summaries))
}
