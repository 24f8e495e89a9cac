// Package metrics provides Prometheus metrics for the upright posture
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	eventsStored   prometheus.Counter
	eventsRejected *prometheus.CounterVec
	postureAngle   prometheus.Histogram

	// Live feed metrics
	feedPublished          prometheus.Counter
	feedSubscribers        prometheus.Gauge
	feedSubscribersDropped prometheus.Counter

	// State metrics
	totalUsers    prometheus.Gauge
	totalSessions prometheus.Gauge
	totalEvents   prometheus.Gauge

	// Snapshot metrics
	snapshotWrites        prometheus.Counter
	snapshotWriteDuration prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "upright",
		subsystem:        "posture",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsStored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_stored_total",
		Help:      "Total number of posture events appended to the store",
	})

	m.eventsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_rejected_total",
			Help:      "Total number of rejected event submissions by reason",
		},
		[]string{"reason"},
	)

	m.postureAngle = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "spine_angle_degrees",
		Help:      "Distribution of computed spine angles in degrees",
		Buckets:   []float64{5, 10, 15, 20, 30, 45, 60, 90},
	})

	m.feedPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_published_total",
		Help:      "Total number of events published to the live feed",
	})

	m.feedSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_subscribers",
		Help:      "Current number of live feed subscribers",
	})

	m.feedSubscribersDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_subscribers_dropped_total",
		Help:      "Total number of subscribers dropped for not keeping up",
	})

	m.totalUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_total",
		Help:      "Total number of registered users",
	})

	m.totalSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_total",
		Help:      "Total number of tracking sessions",
	})

	m.totalEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Total number of stored posture events",
	})

	m.snapshotWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_writes_total",
		Help:      "Total number of snapshot writes to disk",
	})

	m.snapshotWriteDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_write_duration_milliseconds",
		Help:      "Snapshot write duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the gatherer backing the custom registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

// RecordEventStored counts one stored posture event.
func RecordEventStored() { globalManager.eventsStored.Inc() }

// RecordEventRejected counts one rejected submission by reason.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordSpineAngle observes a computed spine angle.
func RecordSpineAngle(degrees float64) { globalManager.postureAngle.Observe(degrees) }

// RecordFeedPublished counts one live feed publish.
func RecordFeedPublished() { globalManager.feedPublished.Inc() }

// RecordFeedSubscriberDropped counts one dropped subscriber.
func RecordFeedSubscriberDropped() { globalManager.feedSubscribersDropped.Inc() }

// UpdateFeedSubscribers sets the current subscriber count.
func UpdateFeedSubscribers(n int) { globalManager.feedSubscribers.Set(float64(n)) }

// UpdateTotalUsers sets the registered user count.
func UpdateTotalUsers(n int) { globalManager.totalUsers.Set(float64(n)) }

// UpdateTotalSessions sets the session count.
func UpdateTotalSessions(n int) { globalManager.totalSessions.Set(float64(n)) }

// UpdateTotalEvents sets the stored event count.
func UpdateTotalEvents(n int) { globalManager.totalEvents.Set(float64(n)) }

// RecordSnapshotWrite counts one snapshot write and its duration.
func RecordSnapshotWrite(durationMs float64) {
	globalManager.snapshotWrites.Inc()
	globalManager.snapshotWriteDuration.Observe(durationMs)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
