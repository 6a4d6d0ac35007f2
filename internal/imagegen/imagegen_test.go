package imagegen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lox/fourteeners/internal/forecast"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []forecast.Category
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, c forecast.Category) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + c.Slug()), nil
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Hour)
	c.now = func() time.Time { return now }

	if _, ok := c.GetAny(); ok {
		t.Fatal("empty cache returned an image")
	}

	c.Set("a", []byte("A"))
	now = now.Add(30 * time.Minute)
	c.Set("b", []byte("B"))

	if got, ok := c.Get("a"); !ok || string(got) != "A" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}

	now = now.Add(45 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) should be stale after 75m")
	}
	if got := c.List(); len(got) != 1 || got[0] != "b" {
		t.Errorf("List() = %v, want [b]", got)
	}
	if got, ok := c.GetAny(); !ok || string(got) != "A" {
		t.Errorf("GetAny() = %q, %v, want stale A", got, ok)
	}
}

func TestBannersGenerateOnMiss(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewBanners(gen, time.Hour, discardLogger())

	data, err := b.Banner(context.Background(), forecast.CategorySnow)
	if err != nil || string(data) != "png:snow" {
		t.Fatalf("Banner() = %q, %v", data, err)
	}
	if _, err := b.Banner(context.Background(), forecast.CategorySnow); err != nil {
		t.Fatal(err)
	}
	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times, want 1", len(gen.calls))
	}
}

func TestBannersFallback(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewBanners(gen, time.Hour, discardLogger())
	b.Warm(context.Background(), []forecast.Category{forecast.CategoryClear})

	gen.err = errors.New("quota exceeded")
	data, err := b.Banner(context.Background(), forecast.CategoryFog)
	if err != nil || string(data) != "png:clear" {
		t.Errorf("Banner() = %q, %v, want cached clear banner", data, err)
	}

	empty := NewBanners(nil, time.Hour, discardLogger())
	if _, err := empty.Banner(context.Background(), forecast.CategoryFog); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Banner() without generator = %v, want ErrUnavailable", err)
	}
}

func TestBannersWarmSkipsCached(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewBanners(gen, time.Hour, discardLogger())

	b.Warm(context.Background(), []forecast.Category{forecast.CategoryClear, forecast.CategoryRain})
	b.Warm(context.Background(), []forecast.Category{forecast.CategoryRain, forecast.CategoryThunderstorm})

	// Rain outranks Clear, so it is generated first.
	want := []forecast.Category{forecast.CategoryRain, forecast.CategoryClear, forecast.CategoryThunderstorm}
	if len(gen.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", gen.calls, want)
	}
	for i := range want {
		if gen.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, gen.calls[i], want[i])
		}
	}
	got := b.Cached()
	if len(got) != 3 {
		t.Fatalf("Cached() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cached()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBannersWarmOrdersBySeverity(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewBanners(gen, time.Hour, discardLogger())

	in := []forecast.Category{forecast.CategoryClear, forecast.CategoryFog, forecast.CategoryThunderstorm, forecast.CategorySnow}
	b.Warm(context.Background(), in)

	want := []forecast.Category{forecast.CategoryThunderstorm, forecast.CategorySnow, forecast.CategoryFog, forecast.CategoryClear}
	for i := range want {
		if gen.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, gen.calls[i], want[i])
		}
	}
	if in[0] != forecast.CategoryClear {
		t.Error("Warm() reordered the caller's slice")
	}
}

func TestBannerPrompt(t *testing.T) {
	for _, c := range forecast.Categories {
		p := BannerPrompt(c)
		if !strings.Contains(p, "fourteener") || !strings.Contains(p, "Weather conditions:") {
			t.Errorf("BannerPrompt(%s) = %q", c, p)
		}
	}
	if BannerPrompt("hail") != BannerPrompt(forecast.CategoryUnknown) {
		t.Error("unknown category should use the fallback prompt")
	}
}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{90, 140, 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderCard(t *testing.T) {
	temp := 41
	data := CardData{
		Mountain:    "Longs Peak",
		Elevation:   14259,
		Temperature: &temp,
		Condition:   "Mainly clear",
		Category:    forecast.CategoryClear,
		HasScore:    true,
		Score:       85,
		Rating:      forecast.SuitabilityExcellent,
		BestDay:     "Thursday",
	}

	tests := []struct {
		name       string
		background []byte
	}{
		{name: "fallback gradient", background: nil},
		{name: "banner background", background: solidPNG(t, 300, 200)},
		{name: "undecodable background", background: []byte("not an image")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderCard(tt.background, data)
			if err != nil {
				t.Fatal(err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != CardWidth || cfg.Height != CardHeight {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, CardWidth, CardHeight)
			}
		})
	}

	if _, err := RenderCard(nil, CardData{Mountain: "Pikes Peak", Elevation: 14115}); err != nil {
		t.Errorf("RenderCard() without score = %v", err)
	}
}
