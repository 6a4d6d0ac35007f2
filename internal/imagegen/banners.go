package imagegen

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lox/fourteeners/internal/forecast"
)

// ErrUnavailable is returned when no banner is cached and none can be generated.
var ErrUnavailable = errors.New("banner unavailable")

// ImageGenerator renders a banner for a condition category.
type ImageGenerator interface {
	Generate(ctx context.Context, c forecast.Category) ([]byte, error)
}

const generateTimeout = 2 * time.Minute

// Banners serves condition artwork from a cache, generating missing
// categories one at a time.
type Banners struct {
	gen    ImageGenerator
	cache  *Cache[forecast.Category]
	genMu  sync.Mutex
	logger *slog.Logger
}

// NewBanners returns a banner service. gen may be nil, in which case only
// cached artwork is served.
func NewBanners(gen ImageGenerator, ttl time.Duration, logger *slog.Logger) *Banners {
	if logger == nil {
		logger = slog.Default()
	}
	return &Banners{
		gen:    gen,
		cache:  NewCache[forecast.Category](ttl),
		logger: logger.With("component", "imagegen.banners"),
	}
}

// Cached returns the categories with fresh artwork.
func (b *Banners) Cached() []forecast.Category {
	return b.cache.List()
}

// Banner returns artwork for c. A cache miss generates synchronously when a
// generator is configured, otherwise any cached banner is served.
func (b *Banners) Banner(ctx context.Context, c forecast.Category) ([]byte, error) {
	if data, ok := b.cache.Get(c); ok {
		return data, nil
	}
	if b.gen == nil {
		if data, ok := b.cache.GetAny(); ok {
			return data, nil
		}
		return nil, ErrUnavailable
	}

	data, err := b.generate(ctx, c)
	if err != nil {
		b.logger.Warn("banner generation failed", "category", c, "error", err)
		if data, ok := b.cache.GetAny(); ok {
			return data, nil
		}
		return nil, ErrUnavailable
	}
	return data, nil
}

// Warm generates artwork for any of the categories not already cached, most
// hazardous first.
func (b *Banners) Warm(ctx context.Context, categories []forecast.Category) {
	if b.gen == nil {
		return
	}
	ordered := slices.Clone(categories)
	slices.SortStableFunc(ordered, func(x, y forecast.Category) int {
		return y.Severity() - x.Severity()
	})
	for _, c := range ordered {
		if ctx.Err() != nil {
			return
		}
		if _, ok := b.cache.Get(c); ok {
			continue
		}
		if _, err := b.generate(ctx, c); err != nil {
			b.logger.Warn("banner warm failed", "category", c, "error", err)
		}
	}
}

func (b *Banners) generate(ctx context.Context, c forecast.Category) ([]byte, error) {
	b.genMu.Lock()
	defer b.genMu.Unlock()

	// Another caller may have filled the cache while we waited.
	if data, ok := b.cache.Get(c); ok {
		return data, nil
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	data, err := b.gen.Generate(ctx, c)
	if err != nil {
		return nil, err
	}
	b.cache.Set(c, data)
	return data, nil
}
