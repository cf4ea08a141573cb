package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the tracker's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meal_tracker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	mealsLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "meals",
			Name:      "logged_total",
			Help:      "Meals logged, by person and roast tier.",
		},
		[]string{"person", "tier"},
	)

	commentsPosted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "meals",
			Name:      "comments_total",
			Help:      "Comments appended to meal entries.",
		},
	)

	rowCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "store",
			Name:      "row_cache_lookups_total",
			Help:      "Row snapshot cache lookups by result.",
		},
		[]string{"result"},
	)

	rowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "store",
			Name:      "rows_skipped_total",
			Help:      "Stored rows dropped because they could not be parsed.",
		},
		[]string{"backend"},
	)

	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meal_tracker",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Storage calls that failed, by operation.",
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		mealsLogged,
		commentsPosted,
		rowCache,
		rowsSkipped,
		storeErrors,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordMealLogged(person, tier string) {
	mealsLogged.WithLabelValues(person, tier).Inc()
}

func RecordComment() {
	commentsPosted.Inc()
}

func RecordRowCache(hit bool) {
	if hit {
		rowCache.WithLabelValues("hit").Inc()
		return
	}
	rowCache.WithLabelValues("miss").Inc()
}

func RecordRowsSkipped(backend string, n int) {
	if n <= 0 {
		return
	}
	rowsSkipped.WithLabelValues(backend).Add(float64(n))
}

func RecordStoreError(op string) {
	storeErrors.WithLabelValues(op).Inc()
}
