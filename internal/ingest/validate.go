package ingest

import (
	"errors"
	"fmt"

	"github.com/lox/fourteeners/internal/forecast"
)

// ErrInvalidResponse is returned when a provider payload lacks the shape the
// scorer needs.
var ErrInvalidResponse = errors.New("invalid forecast response")

const (
	FlagTempOutOfRange    = "temp_out_of_range"
	FlagHighBelowLow      = "high_below_low"
	FlagWindSpeedUnlikely = "wind_speed_unlikely"
	FlagCloudCoverInvalid = "cloud_cover_invalid"
	FlagPrecipNegative    = "precip_negative"
	FlagUnknownCode       = "unknown_weather_code"
)

// MinDailyEntries is the shortest daily window that can be shown.
const MinDailyEntries = 2

// ValidateResponse checks that a decoded payload has a current block and
// complete, equal-length daily arrays.
func ValidateResponse(r *OpenMeteoResponse) error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidResponse}, args...)...))
	}

	if r.Current == nil {
		fail("missing current block")
	} else {
		if r.Current.Temperature == nil {
			fail("current.temperature_2m is null")
		}
		if r.Current.WeatherCode == nil {
			fail("current.weather_code is null")
		}
	}

	d := r.Daily
	if d == nil {
		fail("missing daily block")
		return errors.Join(errs...)
	}

	n := len(d.Time)
	if n < MinDailyEntries {
		fail("daily has %d entries, need at least %d", n, MinDailyEntries)
	}
	for name, l := range map[string]int{
		"temperature_2m_max":          len(d.TemperatureMax),
		"temperature_2m_min":          len(d.TemperatureMin),
		"weather_code":                len(d.WeatherCode),
		"precipitation_sum":           len(d.PrecipitationSum),
		"wind_speed_10m_max":          len(d.WindSpeedMax),
		"wind_direction_10m_dominant": len(d.WindDirection),
	} {
		if l != n {
			fail("daily.%s has %d entries, want %d", name, l, n)
		}
	}
	// Mean cloud cover is optional but must line up when present.
	if len(d.CloudCoverMean) != 0 && len(d.CloudCoverMean) != n {
		fail("daily.cloud_cover_mean has %d entries, want %d", len(d.CloudCoverMean), n)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i := 0; i < n; i++ {
		if d.TemperatureMax[i] == nil || d.TemperatureMin[i] == nil {
			fail("daily temperature missing for %s", d.Time[i])
		}
		if d.WeatherCode[i] == nil {
			fail("daily weather_code missing for %s", d.Time[i])
		}
	}

	return errors.Join(errs...)
}

// QualityFlags returns plausibility flags for one forecast day. Flagged days
// are still scored; the flags are recorded against the ingest run.
func QualityFlags(day forecast.DayInput) []string {
	var flags []string

	if day.HighTempF < -60 || day.HighTempF > 110 || day.LowTempF < -60 || day.LowTempF > 110 {
		flags = append(flags, FlagTempOutOfRange)
	}
	if day.LowTempF > day.HighTempF {
		flags = append(flags, FlagHighBelowLow)
	}
	if day.MaxWindSpeedMph < 0 || day.MaxWindSpeedMph > 200 {
		flags = append(flags, FlagWindSpeedUnlikely)
	}
	if day.CloudCoverPercent != nil && (*day.CloudCoverPercent < 0 || *day.CloudCoverPercent > 100) {
		flags = append(flags, FlagCloudCoverInvalid)
	}
	if day.PrecipitationInches < 0 {
		flags = append(flags, FlagPrecipNegative)
	}
	if forecast.Classify(day.WeatherCode).Category == forecast.CategoryUnknown {
		flags = append(flags, FlagUnknownCode)
	}

	return flags
}
