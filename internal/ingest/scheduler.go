package ingest

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/metrics"
	"github.com/lox/fourteeners/internal/models"
	"github.com/lox/fourteeners/internal/store"
)

// Fetcher retrieves a forecast for a coordinate.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*OpenMeteoResponse, []byte, *FetchResult, error)
}

// BannerWarmer pre-renders artwork for the condition categories in play.
type BannerWarmer interface {
	Warm(ctx context.Context, categories []forecast.Category)
}

const (
	DefaultInterval    = 30 * time.Minute
	DefaultStagger     = 200 * time.Millisecond
	DefaultConcurrency = 4
	rawPayloadsPerPeak = 3
	ingestRunRetention = 24 * time.Hour
)

type Scheduler struct {
	store       *store.Store
	client      Fetcher
	peaks       []catalog.Peak
	rules       forecast.Rules
	interval    time.Duration
	stagger     time.Duration
	concurrency int
	banners     BannerWarmer
	logger      *slog.Logger
	now         func() time.Time

	refreshMu   sync.Mutex // serialises refresh cycles
	mu          sync.Mutex
	lastRefresh RefreshSummary
}

type SchedulerOption func(*Scheduler)

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStagger delays the start of the i-th peak fetch by i*d.
func WithStagger(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.stagger = d }
}

func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithBannerWarmer(b BannerWarmer) SchedulerOption {
	return func(s *Scheduler) { s.banners = b }
}

func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(st *store.Store, client Fetcher, peaks []catalog.Peak, rules forecast.Rules, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:       st,
		client:      client,
		peaks:       peaks,
		rules:       rules,
		interval:    DefaultInterval,
		stagger:     DefaultStagger,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ingest.scheduler")
	return s
}

// RefreshSummary reports the outcome of one pass over the catalog.
type RefreshSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Succeeded int
	Failed    int
}

// LastRefresh returns the summary of the most recent completed cycle.
func (s *Scheduler) LastRefresh() RefreshSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

func (s *Scheduler) Run(ctx context.Context) {
	s.RefreshAll(ctx)

	refreshTicker := time.NewTicker(s.interval)
	pruneTicker := time.NewTicker(1 * time.Hour)
	defer refreshTicker.Stop()
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down")
			return
		case <-refreshTicker.C:
			s.RefreshAll(ctx)
		case <-pruneTicker.C:
			s.prune()
		}
	}
}

// RefreshAll fetches every peak, staggering request starts, and stores the
// results. Failed peaks are stored as placeholders.
func (s *Scheduler) RefreshAll(ctx context.Context) RefreshSummary {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	s.logger.Info("refreshing peaks", "count", len(s.peaks))

	results := make([]models.MountainWeather, len(s.peaks))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, peak := range s.peaks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if delay := time.Duration(i) * s.stagger; delay > 0 {
				t := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					t.Stop()
					results[i] = Placeholder(peak, s.now())
					return
				case <-t.C:
				}
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Placeholder(peak, s.now())
				return
			}
			defer func() { <-sem }()
			results[i] = s.RefreshPeak(ctx, peak)
		}()
	}
	wg.Wait()

	summary := RefreshSummary{StartedAt: start, Total: len(results)}
	var categories []forecast.Category
	seen := make(map[forecast.Category]bool)
	for _, mw := range results {
		if mw.Failed() {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if mw.Current != nil && !seen[mw.Current.Condition] {
			seen[mw.Current.Condition] = true
			categories = append(categories, mw.Current.Condition)
		}
	}
	summary.Duration = s.now().Sub(start)
	metrics.RefreshDuration.Observe(summary.Duration.Seconds())
	s.updateCategoryGauge()

	s.logger.Info("refresh complete", "succeeded", summary.Succeeded, "failed", summary.Failed, "duration", summary.Duration)
	s.mu.Lock()
	s.lastRefresh = summary
	s.mu.Unlock()

	if s.banners != nil && len(categories) > 0 && ctx.Err() == nil {
		s.banners.Warm(ctx, categories)
	}
	return summary
}

// RefreshPeak fetches, scores and stores one peak, recording an ingest run.
func (s *Scheduler) RefreshPeak(ctx context.Context, peak catalog.Peak) models.MountainWeather {
	name := peak.Name
	run, err := s.store.StartIngestRun(Source, EndpointForecast, &name)
	if err != nil {
		s.logger.Error("start ingest run", "peak", name, "error", err)
	}

	resp, rawBody, fetchResult, err := s.client.Fetch(ctx, peak.Lat, peak.Lon)
	fetchedAt := s.now().UTC()

	var mw models.MountainWeather
	var flags []string
	if err != nil {
		s.logger.Warn("fetch failed", "peak", name, "error", err)
		mw = Placeholder(peak, fetchedAt)
		metrics.PeaksRefreshed.WithLabelValues("error").Inc()
	} else {
		conv := BuildWeather(peak, resp, s.rules, fetchedAt)
		mw = conv.Weather
		flags = conv.QualityFlags
		if len(flags) > 0 {
			s.logger.Warn("forecast quality flags", "peak", name, "flags", flags)
		}
		if f, ok := mw.Forecast.(models.SevenDayForecast); ok {
			for _, d := range f.Days {
				metrics.HikingAssessments.WithLabelValues(string(d.Hiking.Category)).Inc()
			}
		}
		metrics.PeaksRefreshed.WithLabelValues("ok").Inc()
	}

	if run != nil {
		run.Success = err == nil
		if fetchResult != nil {
			run.HTTPStatus = sql.NullInt64{Int64: int64(fetchResult.HTTPStatus), Valid: fetchResult.HTTPStatus > 0}
			run.ResponseSizeBytes = sql.NullInt64{Int64: int64(fetchResult.ResponseSize), Valid: fetchResult.ResponseSize > 0}
			run.RecordsParsed = sql.NullInt64{Int64: int64(fetchResult.RecordCount), Valid: true}
			run.Attempts = sql.NullInt64{Int64: int64(fetchResult.Attempts), Valid: fetchResult.Attempts > 0}
		}
		if err != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		} else if len(flags) > 0 {
			run.ErrorMessage = sql.NullString{String: joinFlags(flags), Valid: true}
		}

		if len(rawBody) > 0 {
			if _, err := s.store.StoreRawPayload(&run.ID, Source, name, rawBody); err != nil {
				s.logger.Error("store raw payload", "peak", name, "error", err)
			}
		}
		if err := s.store.CompleteIngestRun(run); err != nil {
			s.logger.Error("complete ingest run", "peak", name, "error", err)
		}
	}

	if err := s.store.SaveWeather(mw); err != nil {
		s.logger.Error("save weather", "peak", name, "error", err)
	}
	return mw
}

func (s *Scheduler) updateCategoryGauge() {
	counts, err := s.store.CategoryCounts()
	if err != nil {
		s.logger.Error("category counts", "error", err)
		return
	}
	for _, c := range forecast.Suitabilities {
		metrics.BestDayCategory.WithLabelValues(string(c)).Set(float64(counts[string(c)]))
	}
}

func (s *Scheduler) prune() {
	if n, err := s.store.PruneRawPayloads(rawPayloadsPerPeak); err != nil {
		s.logger.Error("prune raw payloads", "error", err)
	} else if n > 0 {
		s.logger.Debug("pruned raw payloads", "count", n)
	}
	if n, err := s.store.PruneIngestRuns(s.now().Add(-ingestRunRetention)); err != nil {
		s.logger.Error("prune ingest runs", "error", err)
	} else if n > 0 {
		s.logger.Debug("pruned ingest runs", "count", n)
	}
}
