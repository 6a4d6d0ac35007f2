package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lox/fourteeners/internal/httputil"
	"github.com/lox/fourteeners/internal/metrics"
)

const (
	Source              = "open-meteo"
	EndpointForecast    = "forecast"
	DefaultBaseURL      = "https://api.open-meteo.com/v1/forecast"
	DefaultTimezone     = "America/Denver"
	DefaultForecastDays = 7
)

var (
	currentFields = []string{
		"temperature_2m", "relative_humidity_2m", "apparent_temperature", "precipitation",
		"weather_code", "cloud_cover", "wind_speed_10m", "wind_direction_10m",
		"wind_gusts_10m", "visibility",
	}
	dailyFields = []string{
		"temperature_2m_max", "temperature_2m_min", "weather_code", "precipitation_sum",
		"wind_speed_10m_max", "wind_direction_10m_dominant", "cloud_cover_mean",
	}
)

// FetchResult describes the outcome of one provider call for auditing.
type FetchResult struct {
	HTTPStatus   int
	ResponseSize int
	RecordCount  int
	Attempts     int
	ParseErrors  int
	ParseError   string
	Error        error
}

type OpenMeteoResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Elevation float64       `json:"elevation"`
	Timezone  string        `json:"timezone"`
	Current   *CurrentBlock `json:"current"`
	Daily     *DailyBlock   `json:"daily"`
}

type CurrentBlock struct {
	Time                string   `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	RelativeHumidity    *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	Precipitation       *float64 `json:"precipitation"`
	WeatherCode         *int     `json:"weather_code"`
	CloudCover          *float64 `json:"cloud_cover"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	WindDirection       *float64 `json:"wind_direction_10m"`
	WindGusts           *float64 `json:"wind_gusts_10m"`
	Visibility          *float64 `json:"visibility"` // metres
}

// DailyBlock holds parallel arrays indexed by day. Null entries decode as nil.
type DailyBlock struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	WeatherCode      []*int     `json:"weather_code"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
	WindDirection    []*float64 `json:"wind_direction_10m_dominant"`
	CloudCoverMean   []*float64 `json:"cloud_cover_mean"`
}

// Len returns the number of forecast days.
func (d *DailyBlock) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Time)
}

// OpenMeteoClient fetches current conditions and a daily forecast for a point.
type OpenMeteoClient struct {
	client          *http.Client
	baseURL         string
	timezone        string
	forecastDays    int
	initialInterval time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

type Option func(*OpenMeteoClient)

func WithBaseURL(u string) Option {
	return func(c *OpenMeteoClient) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenMeteoClient) { c.client = hc }
}

func WithTimezone(tz string) Option {
	return func(c *OpenMeteoClient) { c.timezone = tz }
}

// WithForecastDays sets how many daily entries to request (1-16).
func WithForecastDays(n int) Option {
	return func(c *OpenMeteoClient) {
		if n >= 1 && n <= 16 {
			c.forecastDays = n
		}
	}
}

// WithRetry tunes the exponential backoff used for transient failures.
func WithRetry(initial, maxElapsed time.Duration) Option {
	return func(c *OpenMeteoClient) {
		c.initialInterval = initial
		c.maxElapsedTime = maxElapsed
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *OpenMeteoClient) { c.logger = l }
}

func NewOpenMeteoClient(opts ...Option) *OpenMeteoClient {
	c := &OpenMeteoClient{
		client:          httputil.NewClient(),
		baseURL:         DefaultBaseURL,
		timezone:        DefaultTimezone,
		forecastDays:    DefaultForecastDays,
		initialInterval: backoff.DefaultInitialInterval,
		maxElapsedTime:  2 * time.Minute,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "ingest.openmeteo")
	return c
}

// ForecastDays reports the configured forecast window length.
func (c *OpenMeteoClient) ForecastDays() int {
	return c.forecastDays
}

func (c *OpenMeteoClient) requestURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", strings.Join(currentFields, ","))
	q.Set("daily", strings.Join(dailyFields, ","))
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")
	q.Set("precipitation_unit", "inch")
	q.Set("timezone", c.timezone)
	q.Set("forecast_days", strconv.Itoa(c.forecastDays))
	return c.baseURL + "?" + q.Encode()
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

// Fetch retrieves the forecast for a coordinate. Rate limiting, server errors
// and transport failures are retried with exponential backoff; other client
// errors fail immediately. The raw body is returned alongside the decoded
// response whenever one was read.
func (c *OpenMeteoClient) Fetch(ctx context.Context, lat, lon float64) (*OpenMeteoResponse, []byte, *FetchResult, error) {
	reqURL := c.requestURL(lat, lon)
	result := &FetchResult{}

	var body []byte
	operation := func() error {
		result.Attempts++
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := c.client.Do(req)
		metrics.OpenMeteoLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OpenMeteoCallsTotal.WithLabelValues("error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch forecast: %w", err)
		}
		defer resp.Body.Close()

		result.HTTPStatus = resp.StatusCode
		metrics.OpenMeteoCallsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		result.ResponseSize = len(b)

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &statusError{status: resp.StatusCode, body: truncate(string(b), 200)}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&statusError{status: resp.StatusCode, body: truncate(string(b), 200)})
		}

		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxElapsedTime = c.maxElapsedTime
	notify := func(err error, wait time.Duration) {
		metrics.OpenMeteoRetries.Inc()
		c.logger.Warn("retrying forecast fetch", "lat", lat, "lon", lon, "attempt", result.Attempts, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		result.Error = fmt.Errorf("fetch forecast: %w", err)
		return nil, body, result, result.Error
	}

	var data OpenMeteoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		result.Error = fmt.Errorf("unmarshal: %w", err)
		return nil, body, result, result.Error
	}

	if err := ValidateResponse(&data); err != nil {
		result.Error = err
		return nil, body, result, err
	}
	result.RecordCount = data.Daily.Len()

	return &data, body, result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
