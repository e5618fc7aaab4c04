package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hr", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hr", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DBStatements = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hr", Name: "db_statements_total", Help: "SQL statements executed."},
		[]string{"table", "op", "status"}, // status: ok|error
	)
	DBLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hr", Name: "db_statement_duration_seconds",
			Help:    "SQL statement duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table", "op"},
	)
	IdentityMapEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "hr", Name: "identity_map_entries", Help: "Objects held in a session identity map."},
		[]string{"table"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hr", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hr", Name: "http_rate_limited_total", Help: "Requests rejected by the rate limiter."},
	)
)

// Serve exposes reg on METRICS_ADDR in the background. An empty address disables it.
func Serve(reg *prometheus.Registry) {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, DBStatements, DBLatency, IdentityMapEntries, CacheEvents, RateLimited)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveStatement(table, op string, err error, dur time.Duration) {
	DBStatements.WithLabelValues(table, op, LabelStatus(err)).Inc()
	DBLatency.WithLabelValues(table, op).Observe(dur.Seconds())
}

func ObserveIdentityMap(table string, n int) {
	IdentityMapEntries.WithLabelValues(table).Set(float64(n))
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRateLimited() { RateLimited.Inc() }

func LabelStatus(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
