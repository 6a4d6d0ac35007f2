package ingest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/models"
)

const (
	metresToMiles           = 0.000621371
	defaultVisibilityMetres = 10000
	// SevenDayThreshold is the number of daily entries that switches a peak
	// from the short legacy window to the scored seven-day window.
	SevenDayThreshold = 7
)

func round(v float64) int {
	return int(math.Round(v))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ConvertCurrent maps the provider's current block onto display conditions.
func ConvertCurrent(c *CurrentBlock) *models.CurrentConditions {
	if c == nil {
		return nil
	}
	info := forecast.Classify(deref(c.WeatherCode))

	visibility := deref(c.Visibility)
	if visibility == 0 {
		visibility = defaultVisibilityMetres
	}

	cur := &models.CurrentConditions{
		Temperature:   round(deref(c.Temperature)),
		FeelsLike:     round(deref(c.ApparentTemperature)),
		Condition:     info.Category,
		Description:   info.Description,
		Humidity:      round(deref(c.RelativeHumidity)),
		WindSpeed:     round(deref(c.WindSpeed)),
		WindDirection: c.WindDirection,
		Visibility:    round(visibility * metresToMiles),
		CloudCover:    round(deref(c.CloudCover)),
		Precipitation: deref(c.Precipitation),
		Icon:          info.Icon,
	}
	if g := deref(c.WindGusts); g != 0 {
		gusts := round(g)
		cur.WindGusts = &gusts
	}
	return cur
}

// DayInputs extracts scorer inputs for every daily entry. The response must
// have passed ValidateResponse.
func DayInputs(d *DailyBlock, elevationFeet int) []forecast.DayInput {
	days := make([]forecast.DayInput, d.Len())
	for i := range days {
		days[i] = forecast.DayInput{
			HighTempF:           deref(d.TemperatureMax[i]),
			LowTempF:            deref(d.TemperatureMin[i]),
			PrecipitationInches: deref(d.PrecipitationSum[i]),
			MaxWindSpeedMph:     deref(d.WindSpeedMax[i]),
			WeatherCode:         deref(d.WeatherCode[i]),
			ElevationFeet:       elevationFeet,
		}
		if i < len(d.CloudCoverMean) {
			days[i].CloudCoverPercent = d.CloudCoverMean[i]
		}
	}
	return days
}

func dayName(i int, date string) string {
	switch i {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Weekday().String()
}

// BuildWindow turns the daily block into a forecast window. Seven or more
// entries yield a scored SevenDayForecast whose best day excludes today;
// shorter windows fall back to the LegacyForecast high/low summary.
func BuildWindow(d *DailyBlock, elevationFeet int, rules forecast.Rules) models.ForecastWindow {
	inputs := DayInputs(d, elevationFeet)

	if len(inputs) < SevenDayThreshold {
		lf := models.LegacyForecast{
			Today:    models.DayRange{High: round(inputs[0].HighTempF), Low: round(inputs[0].LowTempF)},
			Tomorrow: models.DayRange{High: round(inputs[1].HighTempF), Low: round(inputs[1].LowTempF)},
		}
		if len(inputs) > 2 {
			lf.DayAfter = &models.DayRange{High: round(inputs[2].HighTempF), Low: round(inputs[2].LowTempF)}
		}
		return lf
	}

	days := make([]models.ForecastDay, len(inputs))
	assessments := make([]forecast.HikingAssessment, len(inputs))
	for i, in := range inputs {
		info := forecast.Classify(in.WeatherCode)
		assessments[i] = rules.Score(in)
		days[i] = models.ForecastDay{
			Date:          d.Time[i],
			DayName:       dayName(i, d.Time[i]),
			High:          round(in.HighTempF),
			Low:           round(in.LowTempF),
			Precipitation: math.Round(in.PrecipitationInches*100) / 100,
			WindSpeed:     round(in.MaxWindSpeedMph),
			WindDirection: d.WindDirection[i],
			Condition:     info.Category,
			Description:   info.Description,
			Icon:          info.Icon,
			CloudCover:    in.CloudCoverPercent,
			Hiking:        assessments[i],
		}
	}

	// At least seven entries, so a candidate always exists.
	best, _ := forecast.PickBestDay(assessments, true)
	return models.SevenDayForecast{Days: days, BestDay: best}
}

// Conversion is the outcome of turning a provider response into a snapshot.
type Conversion struct {
	Weather      models.MountainWeather
	QualityFlags []string
}

// BuildWeather assembles the per-peak payload from a validated response.
func BuildWeather(peak catalog.Peak, resp *OpenMeteoResponse, rules forecast.Rules, fetchedAt time.Time) Conversion {
	var flags []string
	for i, in := range DayInputs(resp.Daily, peak.Elevation) {
		for _, f := range QualityFlags(in) {
			flags = append(flags, fmt.Sprintf("%s[%d]", f, i))
		}
	}

	return Conversion{
		Weather: models.MountainWeather{
			Mountain:  peak.Name,
			Elevation: peak.Elevation,
			FetchedAt: fetchedAt,
			Current:   ConvertCurrent(resp.Current),
			Forecast:  BuildWindow(resp.Daily, peak.Elevation, rules),
		},
		QualityFlags: flags,
	}
}

// Placeholder is the payload recorded for a peak whose fetch failed.
func Placeholder(peak catalog.Peak, fetchedAt time.Time) models.MountainWeather {
	return models.MountainWeather{
		Mountain:  peak.Name,
		Elevation: peak.Elevation,
		FetchedAt: fetchedAt,
		Error:     models.Unavailable,
	}
}

func joinFlags(flags []string) string {
	return strings.Join(flags, ", ")
}
