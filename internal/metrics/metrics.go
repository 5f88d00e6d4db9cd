package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "groomer"

var (
	once sync.Once

	// HTTP
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Workflow
	TransitionCounter     *prometheus.CounterVec
	RejectedCounter       *prometheus.CounterVec
	KennelOccupancyGauge  prometheus.Gauge
	PaymentsCounter       *prometheus.CounterVec
	OverdueGauge          *prometheus.GaugeVec
	AuditDroppedCounter   prometheus.Counter
	DBOperationHistogram  *prometheus.HistogramVec
	RealtimeEventsCounter *prometheus.CounterVec
)

// Init registers all collectors under namespace. Only the first call has an
// effect; collectors used before Init get DefaultNamespace.
func Init(namespace string) {
	once.Do(func() {
		if namespace == "" {
			namespace = DefaultNamespace
		}
		register(namespace)
	})
}

func ensure() {
	Init(DefaultNamespace)
}

func register(namespace string) {
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)

	TransitionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_transitions_total",
			Help:      "Appointment status transitions",
		},
		[]string{"operation", "from", "to"},
	)

	RejectedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_rejected_total",
			Help:      "Workflow operations rejected with a business error",
		},
		[]string{"operation", "code"},
	)

	KennelOccupancyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "kennels_occupied",
		Help:      "Kennels currently occupied across all salons",
	})

	PaymentsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded",
		},
		[]string{"method"},
	)

	OverdueGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "appointments_overdue",
			Help:      "Checked-in appointments past the overdue threshold",
		},
		[]string{"salon_id"},
	)

	AuditDroppedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Audit events dropped because the queue was full",
	})

	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RealtimeEventsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_changes_total",
			Help:      "Changes published on the realtime feed",
		},
		[]string{"table"},
	)
}

// Middleware tracks request count, latency and errors per route.
func Middleware() gin.HandlerFunc {
	ensure()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		APIRequestCounter.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
		}).Inc()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		RequestDurationHistogram.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": status,
		}).Observe(time.Since(start).Seconds())

		if c.Writer.Status() >= 400 {
			APIErrorCounter.With(prometheus.Labels{
				"method": c.Request.Method,
				"path":   path,
				"status": status,
			}).Inc()
		}
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// TrackDBOperation returns a function that observes the operation duration.
//
//	defer metrics.TrackDBOperation("check_in")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	ensure()
	return func(start time.Time) {
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

func RecordTransition(operation, from, to string) {
	ensure()
	TransitionCounter.With(prometheus.Labels{
		"operation": operation,
		"from":      from,
		"to":        to,
	}).Inc()
}

func RecordRejected(operation, code string) {
	ensure()
	RejectedCounter.With(prometheus.Labels{
		"operation": operation,
		"code":      code,
	}).Inc()
}

// SetKennelsOccupied seeds the occupancy gauge, from a count taken at startup.
func SetKennelsOccupied(n int64) {
	ensure()
	KennelOccupancyGauge.Set(float64(n))
}

func KennelOccupied(delta float64) {
	ensure()
	KennelOccupancyGauge.Add(delta)
}

func RecordPayment(method string) {
	ensure()
	PaymentsCounter.WithLabelValues(method).Inc()
}

func SetOverdue(salonID string, n int) {
	ensure()
	OverdueGauge.WithLabelValues(salonID).Set(float64(n))
}

func AuditDropped() {
	ensure()
	AuditDroppedCounter.Inc()
}

func RealtimePublished(table string) {
	ensure()
	RealtimeEventsCounter.WithLabelValues(table).Inc()
}
