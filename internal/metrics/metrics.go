// Package metrics регистрирует метрики Prometheus сервиса
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests считает запросы по маршруту и статусу
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "updrill_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration — время обработки запросов
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "updrill_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AttemptsSubmitted считает сохраненные попытки
	AttemptsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "updrill_attempts_submitted_total",
			Help: "Total number of persisted attempts",
		},
	)

	// AttemptScores — распределение оценок
	AttemptScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "updrill_attempt_score",
			Help:    "Distribution of attempt scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// DrillCacheLookups считает обращения к кешу списка дриллов
	DrillCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "updrill_drill_cache_lookups_total",
			Help: "Drill listing cache lookups by result",
		},
		[]string{"result"},
	)

	// RateLimited считает отклоненные по лимиту запросы
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "updrill_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// Результаты обращения к кешу
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)
