package forecast

import (
	"fmt"
	"math"
)

// DayInput is one forecast day at a given peak.
type DayInput struct {
	HighTempF           float64  `json:"high"`
	LowTempF            float64  `json:"low"`
	PrecipitationInches float64  `json:"precipitation"`
	MaxWindSpeedMph     float64  `json:"windSpeed"`
	WeatherCode         int      `json:"weatherCode"`
	CloudCoverPercent   *float64 `json:"cloudCover,omitempty"`
	ElevationFeet       int      `json:"elevation"`
}

// Suitability is the hiking band a score falls into.
type Suitability string

const (
	SuitabilityExcellent Suitability = "excellent"
	SuitabilityGood      Suitability = "good"
	SuitabilityFair      Suitability = "fair"
	SuitabilityPoor      Suitability = "poor"
	SuitabilityDangerous Suitability = "dangerous"
)

// Suitabilities lists every band from best to worst.
var Suitabilities = []Suitability{
	SuitabilityExcellent,
	SuitabilityGood,
	SuitabilityFair,
	SuitabilityPoor,
	SuitabilityDangerous,
}

// Label returns the display rating, e.g. "Excellent".
func (s Suitability) Label() string {
	switch s {
	case SuitabilityExcellent:
		return "Excellent"
	case SuitabilityGood:
		return "Good"
	case SuitabilityFair:
		return "Fair"
	case SuitabilityPoor:
		return "Poor"
	default:
		return "Dangerous"
	}
}

// Summary returns the one-line advice shown alongside the rating.
func (s Suitability) Summary() string {
	switch s {
	case SuitabilityExcellent:
		return "Excellent conditions for hiking. Get out there!"
	case SuitabilityGood:
		return "Good hiking conditions with minor concerns."
	case SuitabilityFair:
		return "Fair conditions. Be prepared and check the forecast before heading out."
	case SuitabilityPoor:
		return "Poor conditions. Consider postponing your hike."
	default:
		return "Dangerous conditions. Hiking is not recommended."
	}
}

// CSSClass returns the CSS class for styling
func (s Suitability) CSSClass() string {
	return "hike-" + string(s)
}

// HikingAssessment is the scored verdict for one day.
type HikingAssessment struct {
	Score     int         `json:"score"`
	Category  Suitability `json:"category"`
	Rating    string      `json:"rating"`
	Positives []string    `json:"positives"`
	Warnings  []string    `json:"warnings"`
	Summary   string      `json:"summary"`
}

// Band maps a clamped score onto a suitability band.
func (r Rules) Band(score int) Suitability {
	switch {
	case score >= r.Bands.Excellent:
		return SuitabilityExcellent
	case score >= r.Bands.Good:
		return SuitabilityGood
	case score >= r.Bands.Fair:
		return SuitabilityFair
	case score >= r.Bands.Poor:
		return SuitabilityPoor
	default:
		return SuitabilityDangerous
	}
}

// Score rates a day with the default rules.
func Score(day DayInput) HikingAssessment {
	return DefaultRules().Score(day)
}

// Score rates a day for hiking. Each rule family is applied independently to
// a baseline, then the total is clamped to 0-100.
func (r Rules) Score(day DayInput) HikingAssessment {
	high := clampInput(day.HighTempF, -tempLimitF, tempLimitF)
	low := clampInput(day.LowTempF, -tempLimitF, tempLimitF)
	precip := clampInput(day.PrecipitationInches, 0, maxPrecipInches)
	wind := clampInput(day.MaxWindSpeedMph, 0, maxWindMph)
	cloud := 0.0
	if day.CloudCoverPercent != nil {
		cloud = clampInput(*day.CloudCoverPercent, 0, 100)
	}

	s := &tally{score: r.Baseline, positives: []string{}, warnings: []string{}}

	// Temperature
	t := r.Temperature
	avg := (high + low) / 2
	switch {
	case high < t.FreezingBelow:
		s.penalize(t.FreezingPenalty, fmt.Sprintf("Freezing temperatures (high %.0f°F): ice and frostbite risk", high))
	case high < t.ColdBelow:
		s.penalize(t.ColdPenalty, fmt.Sprintf("Cold temperatures (high %.0f°F): bring insulating layers", high))
	case high > t.HotAbove:
		s.penalize(t.HotPenalty, fmt.Sprintf("Hot temperatures (high %.0f°F): carry extra water", high))
	case avg >= t.ComfortMin && avg <= t.ComfortMax:
		s.reward(t.ComfortBonus, fmt.Sprintf("Comfortable temperatures (%.0f-%.0f°F)", low, high))
	}

	// Precipitation
	p := r.Precipitation
	switch {
	case precip == 0:
		s.reward(p.DryBonus, "No precipitation expected")
	case precip < p.MinimalBelow:
		s.score -= p.MinimalPenalty
		s.positives = append(s.positives, fmt.Sprintf("Minimal precipitation (%.2f in)", precip))
	case precip < p.LightBelow:
		s.penalize(p.LightPenalty, fmt.Sprintf("Light precipitation expected (%.2f in)", precip))
	case precip < p.ModerateBelow:
		s.penalize(p.ModeratePenalty, fmt.Sprintf("Moderate precipitation expected (%.2f in)", precip))
	default:
		s.penalize(p.HeavyPenalty, fmt.Sprintf("Heavy precipitation expected (%.2f in)", precip))
	}

	// Wind
	w := r.Wind
	switch {
	case wind <= w.CalmMax:
		s.reward(w.CalmBonus, fmt.Sprintf("Light winds (%.0f mph)", wind))
	case wind <= w.ModerateMax:
		s.penalize(w.ModeratePenalty, fmt.Sprintf("Moderate winds (%.0f mph): gusty on exposed ridges", wind))
	case wind <= w.StrongMax:
		s.penalize(w.StrongPenalty, fmt.Sprintf("Strong winds (%.0f mph): difficult on exposed terrain", wind))
	default:
		s.penalize(w.DangerousPenalty, fmt.Sprintf("Dangerous winds (%.0f mph): avoid exposed ridges", wind))
	}

	// Cloud cover
	c := r.Cloud
	switch {
	case cloud <= c.ClearMax:
		s.reward(0, "Clear skies")
	case cloud <= c.PartlyMax:
		s.reward(0, "Partly cloudy skies")
	case cloud <= c.MostlyMax:
		s.penalize(c.MostlyPenalty, fmt.Sprintf("Mostly cloudy (%.0f%% cover)", cloud))
	default:
		s.penalize(c.OvercastPenalty, fmt.Sprintf("Overcast (%.0f%% cover)", cloud))
	}

	// Condition
	cr := r.Condition
	info := Classify(day.WeatherCode)
	switch info.Category {
	case CategoryThunderstorm:
		s.penalize(cr.ThunderstormPenalty, "Thunderstorms forecast: lightning danger above treeline")
	case CategorySnow:
		s.penalize(cr.SnowPenalty, "Snow forecast: trail may be icy or obscured")
	case CategoryRain:
		s.penalize(cr.RainPenalty, "Rain forecast: slippery rock and trail")
	case CategoryDrizzle:
		s.penalize(cr.DrizzlePenalty, "Drizzle forecast: wet trail surfaces")
	case CategoryFog:
		s.penalize(cr.FogPenalty, "Fog forecast: poor visibility for route finding")
	case CategoryClear:
		s.reward(cr.VisibilityBonus, "Good visibility")
	case CategoryClouds:
		if day.WeatherCode == PartlyCloudyCode {
			s.reward(cr.VisibilityBonus, "Good visibility")
		}
	}

	// Elevation
	e := r.Elevation
	if day.ElevationFeet > e.ExtremeAbove {
		s.penalize(e.ExtremePenalty, fmt.Sprintf("Extreme elevation (%d ft): watch for altitude sickness", day.ElevationFeet))
		if high < e.ExposureColdBelow || wind > e.ExposureWindAbove {
			s.penalize(e.ExposurePenalty, "Cold or wind exposure near the summit compounds risk")
		}
	}

	score := clampScore(s.score)
	band := r.Band(score)
	return HikingAssessment{
		Score:     score,
		Category:  band,
		Rating:    band.Label(),
		Positives: s.positives,
		Warnings:  s.warnings,
		Summary:   band.Summary(),
	}
}

type tally struct {
	score     int
	positives []string
	warnings  []string
}

func (t *tally) penalize(points int, warning string) {
	t.score -= points
	t.warnings = append(t.warnings, warning)
}

func (t *tally) reward(points int, positive string) {
	t.score += points
	t.positives = append(t.positives, positive)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Physical limits for scorer inputs. Values beyond them, including
// infinities, saturate so they land in the most severe band.
const (
	tempLimitF      = 200
	maxPrecipInches = 100
	maxWindMph      = 500
)

// clampInput maps NaN to 0 and limits v to [lo, hi].
func clampInput(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Max(lo, math.Min(v, hi))
}
