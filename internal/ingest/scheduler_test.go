package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/models"
	"github.com/lox/fourteeners/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []float64
	fail  map[float64]bool
	days  int
}

func (f *fakeFetcher) Fetch(ctx context.Context, lat, lon float64) (*OpenMeteoResponse, []byte, *FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, lat)
	f.mu.Unlock()

	if f.fail[lat] {
		return nil, nil, &FetchResult{HTTPStatus: 503, Attempts: 3}, errors.New("fetch forecast: status 503")
	}
	resp := fixture(f.days)
	raw, _ := json.Marshal(resp)
	return &resp, raw, &FetchResult{HTTPStatus: 200, ResponseSize: len(raw), RecordCount: f.days, Attempts: 1}, nil
}

type fakeWarmer struct {
	mu         sync.Mutex
	categories []forecast.Category
}

func (w *fakeWarmer) Warm(ctx context.Context, categories []forecast.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.categories = append(w.categories, categories...)
}

func newTestStore(t *testing.T, peaks []catalog.Peak) *store.Store {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db, discardLogger())
	require.NoError(t, st.Migrate())
	require.NoError(t, st.SeedPeaks(peaks))
	return st
}

var schedulerPeaks = []catalog.Peak{
	{Name: "Mount Elbert", Elevation: 14440, Lat: 39.1178, Lon: -106.4453},
	{Name: "Pikes Peak", Elevation: 14115, Lat: 38.8405, Lon: -105.0442},
	{Name: "Longs Peak", Elevation: 14259, Lat: 40.2549, Lon: -105.6151},
}

func TestRefreshAll(t *testing.T) {
	st := newTestStore(t, schedulerPeaks)
	fetcher := &fakeFetcher{days: 7, fail: map[float64]bool{40.2549: true}}
	warmer := &fakeWarmer{}

	s := NewScheduler(st, fetcher, schedulerPeaks, forecast.DefaultRules(),
		WithStagger(time.Millisecond),
		WithConcurrency(2),
		WithBannerWarmer(warmer),
		WithSchedulerLogger(discardLogger()),
	)

	summary := s.RefreshAll(context.Background())
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, summary, s.LastRefresh())
	require.Len(t, fetcher.calls, 3)

	elbert, err := st.GetWeather("Mount Elbert")
	require.NoError(t, err)
	require.False(t, elbert.Failed())
	require.NotNil(t, elbert.Current)
	week, ok := elbert.Forecast.(models.SevenDayForecast)
	require.True(t, ok, "want seven-day forecast, got %T", elbert.Forecast)
	require.Len(t, week.Days, 7)
	require.NotZero(t, week.BestDay.DayIndex)

	longs, err := st.GetWeather("Longs Peak")
	require.NoError(t, err)
	require.True(t, longs.Failed())
	require.Equal(t, models.Unavailable, longs.Error)
	require.Equal(t, 14259, longs.Elevation)

	errs, err := st.GetRecentIngestErrors(10)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	require.Equal(t, "Longs Peak", errs[0].PeakName.String)
	require.EqualValues(t, 3, errs[0].Attempts.Int64)

	health, err := st.GetIngestHealth(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, health, 1)
	require.Equal(t, 3, health[0].TotalRuns)
	require.Equal(t, 2, health[0].SuccessRuns)

	raw, _, err := st.LatestRawPayload("Pikes Peak")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	require.Equal(t, []forecast.Category{forecast.CategoryClear}, warmer.categories)
}

func TestRefreshAllLegacyWindow(t *testing.T) {
	st := newTestStore(t, schedulerPeaks[:1])
	s := NewScheduler(st, &fakeFetcher{days: 3}, schedulerPeaks[:1], forecast.DefaultRules(),
		WithStagger(0),
		WithSchedulerLogger(discardLogger()),
	)

	s.RefreshAll(context.Background())

	mw, err := st.GetWeather("Mount Elbert")
	require.NoError(t, err)
	legacy, ok := mw.Forecast.(models.LegacyForecast)
	require.True(t, ok, "want legacy forecast, got %T", mw.Forecast)
	require.NotNil(t, legacy.DayAfter)
	_, scored := mw.BestScore()
	require.False(t, scored)
}

func TestRefreshPeakStoresSnapshot(t *testing.T) {
	st := newTestStore(t, schedulerPeaks)
	s := NewScheduler(st, &fakeFetcher{days: 7}, schedulerPeaks, forecast.DefaultRules(),
		WithSchedulerLogger(discardLogger()),
	)

	_, err := st.GetWeather("Pikes Peak")
	require.ErrorIs(t, err, store.ErrNotFound)

	mw := s.RefreshPeak(context.Background(), schedulerPeaks[1])
	require.False(t, mw.Failed())

	saved, err := st.GetWeather("Pikes Peak")
	require.NoError(t, err)
	require.Equal(t, mw.Mountain, saved.Mountain)

	listed, err := st.ListWeather(store.WeatherQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Pikes Peak", listed[0].Mountain)

	raw, _, err := st.LatestRawPayload("Pikes Peak")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	health, err := st.GetIngestHealth(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, health, 1)
	require.Equal(t, 1, health[0].SuccessRuns)
}

func TestRefreshAllCancelled(t *testing.T) {
	st := newTestStore(t, schedulerPeaks)
	fetcher := &fakeFetcher{days: 7}
	s := NewScheduler(st, fetcher, schedulerPeaks, forecast.DefaultRules(),
		WithStagger(time.Hour),
		WithConcurrency(1),
		WithSchedulerLogger(discardLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan RefreshSummary)
	go func() { done <- s.RefreshAll(ctx) }()

	// The first peak starts immediately; the rest wait out their stagger.
	require.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return len(fetcher.calls) == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case summary := <-done:
		require.Equal(t, 1, summary.Succeeded)
		require.Equal(t, 2, summary.Failed)
	case <-time.After(2 * time.Second):
		t.Fatal("RefreshAll did not return after cancel")
	}
}
