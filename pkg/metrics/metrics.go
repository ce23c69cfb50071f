// Package metrics exposes vbind's reactive and live-session activity as
// Prometheus metrics.
//
// A Collector implements reactive.Hooks, so it can be handed straight to an
// Observer (or to vbind.Options.Metrics):
//
//	c := metrics.New(metrics.WithNamespace("myapp"))
//	vm, err := vbind.New(vbind.Options{El: root, Data: data, Metrics: c})
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vbind/pkg/reactive"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for compile duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// defaultConfig returns the default metrics configuration.
func defaultConfig() Config {
	return Config{
		Namespace: "vbind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the vbind metrics.
type Collector struct {
	watchersTotal      prometheus.Counter
	dependenciesTotal  prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	cascadeRejections  prometheus.Counter
	compileDuration    *prometheus.HistogramVec
	activeSessions     prometheus.Gauge
	eventsTotal        *prometheus.CounterVec
}

var _ reactive.Hooks = (*Collector)(nil)

// New creates and registers a Collector.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		watchersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers_created_total",
			Help:        "Total number of watchers created by template bindings",
			ConstLabels: config.ConstLabels,
		}),

		dependenciesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dependency_registrations_total",
			Help:        "Total number of watcher registrations on observed properties",
			ConstLabels: config.ConstLabels,
		}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of property writes that notified their watchers",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		cascadeRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cascade_rejections_total",
			Help:        "Total number of writes rejected by the cascade depth limit",
			ConstLabels: config.ConstLabels,
		}),

		compileDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "compile_duration_seconds",
			Help:        "Template compilation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"status"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of live-session events by type and status",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),
	}
}

// WatcherCreated implements reactive.Hooks.
func (c *Collector) WatcherCreated(string, int) {
	c.watchersTotal.Inc()
}

// DependencyAdded implements reactive.Hooks.
func (c *Collector) DependencyAdded(string) {
	c.dependenciesTotal.Inc()
}

// Notified implements reactive.Hooks. Writes without subscribers are not
// counted.
func (c *Collector) Notified(_ string, subscribers int, err error) {
	if subscribers == 0 {
		return
	}
	c.notificationsTotal.WithLabelValues(status(err)).Inc()
}

// CascadeRejected implements reactive.Hooks.
func (c *Collector) CascadeRejected(string) {
	c.cascadeRejections.Inc()
}

// ObserveCompile records one template compilation.
func (c *Collector) ObserveCompile(d time.Duration, err error) {
	c.compileDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

// SessionOpened increments the live session gauge.
func (c *Collector) SessionOpened() {
	c.activeSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (c *Collector) SessionClosed() {
	c.activeSessions.Dec()
}

// EventHandled records one live-session event.
func (c *Collector) EventHandled(eventType string, err error) {
	c.eventsTotal.WithLabelValues(eventType, status(err)).Inc()
}

// status maps an error onto the status label.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, reactive.ErrCascadeLimit):
		return "cascade_limit"
	case errors.Is(err, reactive.ErrPathResolution):
		return "path_error"
	default:
		return "error"
	}
}
