// Package config loads service settings and scoring rules.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/ingest"
)

// EnvPrefix scopes the environment variables read by Load. A double
// underscore separates nesting levels, so HIKE_RULES__WIND__CALM_MAX sets
// rules.wind.calm_max.
const EnvPrefix = "HIKE_"

type Config struct {
	Addr      string `koanf:"addr"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	RefreshInterval time.Duration `koanf:"refresh_interval"`
	Stagger         time.Duration `koanf:"stagger"`
	Concurrency     int           `koanf:"concurrency"`

	OpenMeteo OpenMeteoConfig `koanf:"open_meteo"`
	Banners   BannerConfig    `koanf:"banners"`
	Rules     forecast.Rules  `koanf:"rules"`
}

type OpenMeteoConfig struct {
	BaseURL      string `koanf:"base_url"`
	Timezone     string `koanf:"timezone"`
	ForecastDays int    `koanf:"forecast_days"`
}

// BannerConfig controls generated condition artwork. Generation also needs
// an OpenAI API key.
type BannerConfig struct {
	Enabled  bool          `koanf:"enabled"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
		RefreshInterval: ingest.DefaultInterval,
		Stagger:         ingest.DefaultStagger,
		Concurrency:     ingest.DefaultConcurrency,
		OpenMeteo: OpenMeteoConfig{
			BaseURL:      ingest.DefaultBaseURL,
			Timezone:     ingest.DefaultTimezone,
			ForecastDays: ingest.DefaultForecastDays,
		},
		Banners: BannerConfig{
			Enabled:  true,
			CacheTTL: 6 * time.Hour,
		},
		Rules: forecast.DefaultRules(),
	}
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Load layers defaults, the optional YAML file at path and HIKE_*
// environment variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh_interval must be positive"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if d := c.OpenMeteo.ForecastDays; d < ingest.MinDailyEntries || d > 16 {
		errs = append(errs, fmt.Errorf("open_meteo.forecast_days must be %d-16, got %d", ingest.MinDailyEntries, d))
	}
	if err := c.Rules.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
