package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/fourteeners/internal/forecast"
)

// Unavailable is the error text shown for a peak whose fetch failed.
const Unavailable = "Weather data unavailable"

type CurrentConditions struct {
	Temperature   int               `json:"temperature"`
	FeelsLike     int               `json:"feelsLike"`
	Condition     forecast.Category `json:"condition"`
	Description   string            `json:"description"`
	Humidity      int               `json:"humidity"`
	WindSpeed     int               `json:"windSpeed"`
	WindDirection *float64          `json:"windDirection"`
	WindGusts     *int              `json:"windGusts"`
	Visibility    int               `json:"visibility"` // miles
	CloudCover    int               `json:"cloudCover"`
	Precipitation float64           `json:"precipitation"`
	Icon          string            `json:"icon"`
}

// DayRange is a high/low pair in °F.
type DayRange struct {
	High int `json:"high"`
	Low  int `json:"low"`
}

type ForecastDay struct {
	Date          string                    `json:"date"` // YYYY-MM-DD, provider timezone
	DayName       string                    `json:"dayName"`
	High          int                       `json:"high"`
	Low           int                       `json:"low"`
	Precipitation float64                   `json:"precipitation"` // inches
	WindSpeed     int                       `json:"windSpeed"`
	WindDirection *float64                  `json:"windDirection"`
	Condition     forecast.Category         `json:"condition"`
	Description   string                    `json:"description"`
	Icon          string                    `json:"icon"`
	CloudCover    *float64                  `json:"cloudCover,omitempty"`
	Hiking        forecast.HikingAssessment `json:"hiking"`
}

// ForecastWindow is the forecast attached to a peak. It is either a
// LegacyForecast or a SevenDayForecast.
type ForecastWindow interface {
	forecastWindow()
}

// LegacyForecast is the short window used when fewer than seven days are available.
type LegacyForecast struct {
	Today    DayRange  `json:"today"`
	Tomorrow DayRange  `json:"tomorrow"`
	DayAfter *DayRange `json:"dayAfter,omitempty"`
}

// SevenDayForecast carries scored days and the best day to hike, which
// excludes today.
type SevenDayForecast struct {
	Days    []ForecastDay    `json:"sevenDayForecast"`
	BestDay forecast.BestDay `json:"bestHikingDay"`
}

func (LegacyForecast) forecastWindow()   {}
func (SevenDayForecast) forecastWindow() {}

// BestAssessment returns the assessment of the best hiking day.
func (f SevenDayForecast) BestAssessment() (ForecastDay, bool) {
	if f.BestDay.DayIndex < 0 || f.BestDay.DayIndex >= len(f.Days) {
		return ForecastDay{}, false
	}
	return f.Days[f.BestDay.DayIndex], true
}

// MountainWeather is the per-peak payload served by the API. Exactly one of
// Current/Forecast or Error is populated.
type MountainWeather struct {
	Mountain  string             `json:"mountain"`
	Elevation int                `json:"elevation"`
	FetchedAt time.Time          `json:"fetchedAt,omitzero"`
	Current   *CurrentConditions `json:"current,omitempty"`
	Forecast  ForecastWindow     `json:"-"`
	Error     string             `json:"error,omitempty"`
}

// Failed reports whether this is an error placeholder.
func (m MountainWeather) Failed() bool {
	return m.Error != ""
}

// BestScore returns the best hiking score, if a seven-day forecast is attached.
func (m MountainWeather) BestScore() (int, bool) {
	if f, ok := m.Forecast.(SevenDayForecast); ok && len(f.Days) > 1 {
		return f.BestDay.Score, true
	}
	return 0, false
}

type mountainWeatherJSON struct {
	Mountain      string             `json:"mountain"`
	Elevation     int                `json:"elevation"`
	FetchedAt     time.Time          `json:"fetchedAt,omitzero"`
	Current       *CurrentConditions `json:"current,omitempty"`
	Today         *DayRange          `json:"today,omitempty"`
	Tomorrow      *DayRange          `json:"tomorrow,omitempty"`
	DayAfter      *DayRange          `json:"dayAfter,omitempty"`
	SevenDay      []ForecastDay      `json:"sevenDayForecast,omitempty"`
	BestHikingDay *forecast.BestDay  `json:"bestHikingDay,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// MarshalJSON flattens the forecast window into the top-level object.
func (m MountainWeather) MarshalJSON() ([]byte, error) {
	out := mountainWeatherJSON{
		Mountain:  m.Mountain,
		Elevation: m.Elevation,
		FetchedAt: m.FetchedAt,
		Current:   m.Current,
		Error:     m.Error,
	}
	switch f := m.Forecast.(type) {
	case LegacyForecast:
		out.Today = &f.Today
		out.Tomorrow = &f.Tomorrow
		out.DayAfter = f.DayAfter
	case SevenDayForecast:
		out.SevenDay = f.Days
		best := f.BestDay
		out.BestHikingDay = &best
		if len(f.Days) > 0 {
			out.Today = &DayRange{High: f.Days[0].High, Low: f.Days[0].Low}
		}
		if len(f.Days) > 1 {
			out.Tomorrow = &DayRange{High: f.Days[1].High, Low: f.Days[1].Low}
		}
		if len(f.Days) > 2 {
			out.DayAfter = &DayRange{High: f.Days[2].High, Low: f.Days[2].Low}
		}
	case nil:
	default:
		return nil, fmt.Errorf("unknown forecast window %T", f)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the forecast window from a flattened payload.
func (m *MountainWeather) UnmarshalJSON(data []byte) error {
	var in mountainWeatherJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = MountainWeather{
		Mountain:  in.Mountain,
		Elevation: in.Elevation,
		FetchedAt: in.FetchedAt,
		Current:   in.Current,
		Error:     in.Error,
	}
	switch {
	case in.SevenDay != nil:
		f := SevenDayForecast{Days: in.SevenDay}
		if in.BestHikingDay != nil {
			f.BestDay = *in.BestHikingDay
		}
		m.Forecast = f
	case in.Today != nil:
		f := LegacyForecast{Today: *in.Today, DayAfter: in.DayAfter}
		if in.Tomorrow != nil {
			f.Tomorrow = *in.Tomorrow
		}
		m.Forecast = f
	}
	return nil
}
