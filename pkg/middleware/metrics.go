package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vtree-ui/vtree/pkg/scheduler"
	"github.com/vtree-ui/vtree/pkg/services"
	"github.com/vtree-ui/vtree/pkg/vtree"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "vtree",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors fed by the scheduler.
type metrics struct {
	ticksTotal          prometheus.Counter
	tickDuration        prometheus.Histogram
	nodeUpdatesTotal    prometheus.Counter
	updateDuration      prometheus.Histogram
	scheduledCallsTotal *prometheus.CounterVec
	updateFailuresTotal prometheus.Counter
}

// globalMetrics is the singleton observer for the default registerer.
// Created on first call to Prometheus() with no WithRegistry option.
var (
	globalMetrics     *metrics
	globalMetricsOnce sync.Once
)

// initMetrics registers the collectors with the configured registry.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ticks_total",
			Help:        "Total number of update ticks processed",
			ConstLabels: config.ConstLabels,
		}),

		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tick_duration_seconds",
			Help:        "Duration of one complete update tick in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodeUpdatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_updates_total",
			Help:        "Total number of virtual nodes rendered",
			ConstLabels: config.ConstLabels,
		}),

		updateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_update_duration_seconds",
			Help:        "Single node render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		scheduledCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduled_calls_total",
			Help:        "Total number of deferred calls executed, by phase",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		updateFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_failures_total",
			Help:        "Total number of panics recovered during ticks",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus returns a TickObserver recording scheduler metrics.
//
// Without WithRegistry the observer is a process-wide singleton bound to
// prometheus.DefaultRegisterer; repeated calls return the same collectors.
// With an explicit registry a fresh set of collectors is created, which
// panics (promauto) if the registry already holds them.
func Prometheus(opts ...MetricsOption) scheduler.TickObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Registry == prometheus.DefaultRegisterer {
		globalMetricsOnce.Do(func() {
			globalMetrics = initMetrics(config)
		})
		return &metricsObserver{m: globalMetrics}
	}

	return &metricsObserver{m: initMetrics(config)}
}

// metricsObserver feeds scheduler callbacks into the collectors.
type metricsObserver struct {
	m *metrics
}

// TickStarted implements scheduler.TickObserver.
func (o *metricsObserver) TickStarted(tick int64) {}

// NodeUpdated implements scheduler.TickObserver.
func (o *metricsObserver) NodeUpdated(vn *vtree.VN, elapsed time.Duration) {
	o.m.nodeUpdatesTotal.Inc()
	o.m.updateDuration.Observe(elapsed.Seconds())
}

// CallExecuted implements scheduler.TickObserver.
func (o *metricsObserver) CallExecuted(beforeUpdate bool) {
	phase := "after"
	if beforeUpdate {
		phase = "before"
	}
	o.m.scheduledCallsTotal.WithLabelValues(phase).Inc()
}

// UpdateFailed implements scheduler.TickObserver.
func (o *metricsObserver) UpdateFailed(vn *vtree.VN, recovered any) {
	o.m.updateFailuresTotal.Inc()
}

// TickCompleted implements scheduler.TickObserver.
func (o *metricsObserver) TickCompleted(tick int64, nodesUpdated int, elapsed time.Duration) {
	o.m.ticksTotal.Inc()
	o.m.tickDuration.Observe(elapsed.Seconds())
}

// RegisterServiceStats registers gauges over a service registry's
// occupancy: live entries and publisher/subscriber participations.
func RegisterServiceStats(reg *services.Registry, opts ...MetricsOption) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "service_entries",
		Help:        "Number of live service registry entries",
		ConstLabels: config.ConstLabels,
	}, func() float64 {
		return float64(reg.Stats().Entries)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "service_publishers",
		Help:        "Number of service publisher participations",
		ConstLabels: config.ConstLabels,
	}, func() float64 {
		return float64(reg.Stats().Publishers)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "service_subscribers",
		Help:        "Number of service subscriber participations",
		ConstLabels: config.ConstLabels,
	}, func() float64 {
		return float64(reg.Stats().Subscribers)
	})
}
