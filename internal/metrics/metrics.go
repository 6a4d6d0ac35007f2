package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpenMeteoCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fourteeners_openmeteo_api_calls_total",
			Help: "Total Open-Meteo forecast API calls",
		},
		[]string{"status"},
	)

	OpenMeteoLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fourteeners_openmeteo_api_latency_seconds",
			Help:    "Open-Meteo API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	OpenMeteoRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fourteeners_openmeteo_api_retries_total",
			Help: "Open-Meteo requests retried after a transient failure",
		},
	)

	PeaksRefreshed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fourteeners_peaks_refreshed_total",
			Help: "Peak weather refreshes by result",
		},
		[]string{"result"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fourteeners_refresh_duration_seconds",
			Help:    "Time to refresh every peak in the catalog",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
		},
	)

	HikingAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fourteeners_hiking_assessments_total",
			Help: "Hiking-condition assessments produced, by category",
		},
		[]string{"category"},
	)

	BestDayCategory = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fourteeners_best_day_peaks",
			Help: "Peaks whose best hiking day falls in each category",
		},
		[]string{"category"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fourteeners_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fourteeners_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ImageGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fourteeners_image_generations_total",
			Help: "Banner image generation attempts",
		},
		[]string{"status"},
	)
)
