package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/lox/fourteeners/internal/api"
	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/config"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/imagegen"
	"github.com/lox/fourteeners/internal/ingest"
	"github.com/lox/fourteeners/internal/logging"
	"github.com/lox/fourteeners/internal/store"
)

type CLI struct {
	Config       string `help:"Path to a YAML config file." type:"path" placeholder:"FILE"`
	OpenAIAPIKey string `name:"openai-api-key" help:"OpenAI API key for banner artwork." env:"OPENAI_API_KEY"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the web server and background refresh (default)."`
	Refresh RefreshCmd `cmd:"" help:"Fetch every peak once and print a summary."`
	Score   ScoreCmd   `cmd:"" help:"Score a single day's forecast."`
	Peaks   PeaksCmd   `cmd:"" help:"List the peak catalog."`
}

// app is the state shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	apiKey string
}

func newApp(cli *CLI) (*app, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger, apiKey: cli.OpenAIAPIKey}, nil
}

func (a *app) openStore() (*store.Store, func(), error) {
	db, err := store.OpenMemory()
	if err != nil {
		return nil, nil, err
	}
	st := store.New(db, a.logger)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	if err := st.SeedPeaks(catalog.All()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seed peaks: %w", err)
	}
	a.logger.Debug("database ready", "peaks", catalog.Len())
	return st, func() { db.Close() }, nil
}

func (a *app) newScheduler(st *store.Store, opts ...ingest.SchedulerOption) *ingest.Scheduler {
	client := ingest.NewOpenMeteoClient(
		ingest.WithBaseURL(a.cfg.OpenMeteo.BaseURL),
		ingest.WithTimezone(a.cfg.OpenMeteo.Timezone),
		ingest.WithForecastDays(a.cfg.OpenMeteo.ForecastDays),
		ingest.WithLogger(a.logger),
	)
	opts = append([]ingest.SchedulerOption{
		ingest.WithInterval(a.cfg.RefreshInterval),
		ingest.WithStagger(a.cfg.Stagger),
		ingest.WithConcurrency(a.cfg.Concurrency),
		ingest.WithSchedulerLogger(a.logger),
	}, opts...)
	return ingest.NewScheduler(st, client, catalog.All(), a.cfg.Rules, opts...)
}

// newBanners returns nil when artwork is disabled or no key is configured.
func (a *app) newBanners() *imagegen.Banners {
	if !a.cfg.Banners.Enabled {
		return nil
	}
	gen, err := imagegen.NewGenerator(a.apiKey, a.logger)
	if err != nil {
		a.logger.Info("banner artwork disabled", "reason", err)
		return nil
	}
	return imagegen.NewBanners(gen, a.cfg.Banners.CacheTTL, a.logger)
}

type ServeCmd struct {
	NoRefresh bool   `help:"Serve without polling Open-Meteo (local development)."`
	Addr      string `help:"Listen address, overriding the config file."`
}

func (c *ServeCmd) Run(a *app) error {
	st, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := a.cfg.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	serverOpts := []api.Option{api.WithAddr(addr), api.WithLogger(a.logger)}

	var schedOpts []ingest.SchedulerOption
	if banners := a.newBanners(); banners != nil {
		serverOpts = append(serverOpts, api.WithBanners(banners))
		schedOpts = append(schedOpts, ingest.WithBannerWarmer(banners))
	}

	if c.NoRefresh {
		a.logger.Info("polling disabled (--no-refresh)")
	} else {
		scheduler := a.newScheduler(st, schedOpts...)
		serverOpts = append(serverOpts, api.WithRefresher(scheduler))
		go scheduler.Run(ctx)
	}

	return api.NewServer(st, catalog.All(), a.cfg.Rules, serverOpts...).Run(ctx)
}

type RefreshCmd struct {
	JSON bool `help:"Print every snapshot as JSON instead of a summary."`
}

func (c *RefreshCmd) Run(a *app) error {
	st, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary := a.newScheduler(st).RefreshAll(ctx)

	if c.JSON {
		weather, err := st.ListWeather(store.WeatherQuery{Sort: store.SortHikingScore})
		if err != nil {
			return err
		}
		return printJSON(weather)
	}

	fmt.Printf("refreshed %d peaks in %s: %d ok, %d failed\n",
		summary.Total, summary.Duration.Round(time.Millisecond), summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d peaks failed to refresh", summary.Failed)
	}
	return nil
}

type ScoreCmd struct {
	High          float64  `required:"" help:"Forecast high (°F)."`
	Low           float64  `required:"" help:"Forecast low (°F)."`
	Precipitation float64  `help:"Precipitation total (inches)."`
	Wind          float64  `help:"Maximum wind speed (mph)."`
	Code          int      `help:"WMO weather code."`
	Cloud         *float64 `help:"Mean cloud cover (percent)."`
	Elevation     int      `help:"Summit elevation (feet)." default:"14000"`
	Peak          string   `help:"Take the elevation from a catalog peak."`
}

func (c *ScoreCmd) Run(a *app) error {
	in := forecast.DayInput{
		HighTempF:           c.High,
		LowTempF:            c.Low,
		PrecipitationInches: c.Precipitation,
		MaxWindSpeedMph:     c.Wind,
		WeatherCode:         c.Code,
		CloudCoverPercent:   c.Cloud,
		ElevationFeet:       c.Elevation,
	}
	if c.Peak != "" {
		p, ok := catalog.Find(c.Peak)
		if !ok {
			return fmt.Errorf("unknown peak %q", c.Peak)
		}
		in.ElevationFeet = p.Elevation
	}
	return printJSON(a.cfg.Rules.Score(in))
}

type PeaksCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (c *PeaksCmd) Run(a *app) error {
	if c.JSON {
		return printJSON(catalog.All())
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tELEVATION\tLAT\tLON")
	for _, p := range catalog.All() {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\n", p.Name, p.Elevation, p.Lat, p.Lon)
	}
	return tw.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("fourteeners"),
		kong.Description("Hiking conditions for the Colorado 14ers."),
		kong.UsageOnError(),
	)

	a, err := newApp(&cli)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run(a))
}
