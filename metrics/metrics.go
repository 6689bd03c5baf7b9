// Package metrics wires runtime.Metrics to prometheus/client_golang,
// the metrics library SPEC_FULL.md's Domain Stack names (Expansion
// item 6). The runtime core only ever holds the runtime.Metrics
// interface, so a caller that doesn't want a Prometheus registry
// wired in can skip importing this package entirely and fall back to
// the nil-safe default runtime.NewRuntime already installs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector implements runtime.Metrics against a set of Prometheus
// gauges/counters registered into reg.
type Collector struct {
	directiveExpansions prometheus.Counter
	frameSeconds        prometheus.Histogram
	elementCount        prometheus.Gauge
	componentCount      prometheus.Gauge
}

// New creates a Collector and registers its metrics into reg. Passing
// prometheus.NewRegistry() keeps it isolated from the global default
// registry, the way a library embedded in a larger app usually wants.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		directiveExpansions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kryon",
			Name:      "directive_expansions_total",
			Help:      "Number of @for/@if directive expansion passes run.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kryon",
			Name:      "frame_seconds",
			Help:      "Wall-clock duration of one Update+render frame.",
			Buckets:   prometheus.DefBuckets,
		}),
		elementCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kryon",
			Name:      "live_elements",
			Help:      "Number of elements currently registered in the runtime.",
		}),
		componentCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kryon",
			Name:      "live_component_instances",
			Help:      "Number of component instances currently allocated.",
		}),
	}
	reg.MustRegister(c.directiveExpansions, c.frameSeconds, c.elementCount, c.componentCount)
	return c
}

func (c *Collector) ObserveDirectiveExpansion() { c.directiveExpansions.Inc() }
func (c *Collector) ObserveFrame(seconds float64) { c.frameSeconds.Observe(seconds) }
func (c *Collector) SetElementCount(n int)        { c.elementCount.Set(float64(n)) }
func (c *Collector) SetComponentCount(n int)      { c.componentCount.Set(float64(n)) }
