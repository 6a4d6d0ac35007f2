package api

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/imagegen"
	"github.com/lox/fourteeners/internal/ingest"
	"github.com/lox/fourteeners/internal/metrics"
	"github.com/lox/fourteeners/internal/models"
	"github.com/lox/fourteeners/internal/store"
)

// Refresher fetches a single peak on demand.
type Refresher interface {
	RefreshPeak(ctx context.Context, peak catalog.Peak) models.MountainWeather
	LastRefresh() ingest.RefreshSummary
}

// BannerSource supplies artwork for a condition category.
type BannerSource interface {
	Banner(ctx context.Context, c forecast.Category) ([]byte, error)
}

const (
	cardCacheTTL    = 5 * time.Minute
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 64 << 10
)

type Server struct {
	store     *store.Store
	peaks     []catalog.Peak
	rules     forecast.Rules
	addr      string
	refresher Refresher
	banners   BannerSource
	cards     *imagegen.Cache[string]
	tmpl      *template.Template
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

func WithRefresher(r Refresher) Option {
	return func(s *Server) { s.refresher = r }
}

func WithBanners(b BannerSource) Option {
	return func(s *Server) { s.banners = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func NewServer(st *store.Store, peaks []catalog.Peak, rules forecast.Rules, opts ...Option) *Server {
	s := &Server{
		store:  st,
		peaks:  peaks,
		rules:  rules,
		addr:   ":8080",
		cards:  imagegen.NewCache[string](cardCacheTTL),
		tmpl:   newTemplates(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /banner/{category}", s.handleBanner)
	mux.HandleFunc("GET /api/mountains", s.handleAPIMountains)
	mux.HandleFunc("GET /api/weather", s.handleAPIWeatherList)
	mux.HandleFunc("GET /api/weather/{name}", s.handleAPIWeather)
	mux.HandleFunc("GET /api/weather/{name}/raw", s.handleAPIRawPayload)
	mux.HandleFunc("GET /api/weather/{name}/card.png", s.handleCard)
	mux.HandleFunc("POST /api/score", s.handleAPIScore)
	mux.HandleFunc("POST /api/best-day", s.handleAPIBestDay)
	return s.withRequestID(s.withMetrics(mux))
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", "addr", s.addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// findPeak looks a name up in the served catalog, case-insensitively.
func (s *Server) findPeak(name string) (catalog.Peak, bool) {
	for _, p := range s.peaks {
		if equalFoldTrim(p.Name, name) {
			return p, true
		}
	}
	return catalog.Peak{}, false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withMetrics records request counts and latency by matched route pattern.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		if rec.status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "route", route, "status", rec.status, "request_id", w.Header().Get(requestIDHeader))
		}
	})
}

const requestIDHeader = "X-Request-ID"

// withRequestID echoes a caller-supplied request ID or assigns a new one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
