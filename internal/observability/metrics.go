package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	externalCalls   *prometheus.CounterVec
	externalLatency *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec

	ingestions        *prometheus.CounterVec
	ingestedQuestions prometheus.Counter
	ratingSubmissions *prometheus.CounterVec
	questionCache     *prometheus.CounterVec

	dbConns *prometheus.GaugeVec
	redisUp prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil before Init.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// New builds an isolated set of collectors. Tests use it directly.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		externalCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Calls to the classifier, generator, calendar and identity services.",
		}, []string{"service", "status"}),
		externalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "external_call_duration_seconds",
			Help:    "Latency of external service calls.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"service"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "0=closed, 1=open, 2=half-open.",
		}, []string{"name"}),
		ingestions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Ingestion calls by outcome.",
		}, []string{"outcome"}),
		ingestedQuestions: f.NewCounter(prometheus.CounterOpts{
			Name: "ingestion_questions_inserted_total",
			Help: "Rating questions inserted by committed ingestions.",
		}),
		ratingSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_submissions_total",
			Help: "Rating submissions by result.",
		}, []string{"result"}),
		questionCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "question_cache_requests_total",
			Help: "Generated question cache lookups.",
		}, []string{"result"}),
		dbConns: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database pool connections by state.",
		}, []string{"state"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "redis_up",
			Help: "1 when the last Redis ping succeeded.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveExternalCall records one call. status is "ok", "error", "degraded" or "rejected".
func (m *Metrics) ObserveExternalCall(service, status string, dur time.Duration) {
	if m == nil {
		return
	}
	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}
	m.externalCalls.WithLabelValues(service, status).Inc()
	if dur > 0 {
		m.externalLatency.WithLabelValues(service).Observe(dur.Seconds())
	}
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) IncIngestion(outcome string, questions int64) {
	if m == nil {
		return
	}
	m.ingestions.WithLabelValues(outcome).Inc()
	if questions > 0 {
		m.ingestedQuestions.Add(float64(questions))
	}
}

func (m *Metrics) IncRatingSubmission(result string) {
	if m == nil {
		return
	}
	m.ratingSubmissions.WithLabelValues(result).Inc()
}

func (m *Metrics) IncQuestionCache(result string) {
	if m == nil {
		return
	}
	m.questionCache.WithLabelValues(result).Inc()
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db handle unavailable", "error", err)
		}
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				m.dbConns.WithLabelValues("open").Set(float64(stats.OpenConnections))
				m.dbConns.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbConns.WithLabelValues("idle").Set(float64(stats.Idle))
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
