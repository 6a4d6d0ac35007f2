package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a caller supplies input the core cannot act on.
var ErrInvalidInput = errors.New("invalid input")

// Rules holds every threshold and weight the hiking scorer uses.
// Penalties are subtracted, bonuses added. Temperatures are °F, precipitation
// inches, wind mph, cloud cover percent and elevation feet.
type Rules struct {
	Baseline      int                `koanf:"baseline" json:"baseline"`
	Temperature   TemperatureRules   `koanf:"temperature" json:"temperature"`
	Precipitation PrecipitationRules `koanf:"precipitation" json:"precipitation"`
	Wind          WindRules          `koanf:"wind" json:"wind"`
	Cloud         CloudRules         `koanf:"cloud" json:"cloud"`
	Condition     ConditionRules     `koanf:"condition" json:"condition"`
	Elevation     ElevationRules     `koanf:"elevation" json:"elevation"`
	Bands         BandRules          `koanf:"bands" json:"bands"`
}

type TemperatureRules struct {
	FreezingBelow   float64 `koanf:"freezing_below" json:"freezingBelow"`
	FreezingPenalty int     `koanf:"freezing_penalty" json:"freezingPenalty"`
	ColdBelow       float64 `koanf:"cold_below" json:"coldBelow"`
	ColdPenalty     int     `koanf:"cold_penalty" json:"coldPenalty"`
	HotAbove        float64 `koanf:"hot_above" json:"hotAbove"`
	HotPenalty      int     `koanf:"hot_penalty" json:"hotPenalty"`
	ComfortMin      float64 `koanf:"comfort_min" json:"comfortMin"`
	ComfortMax      float64 `koanf:"comfort_max" json:"comfortMax"`
	ComfortBonus    int     `koanf:"comfort_bonus" json:"comfortBonus"`
}

type PrecipitationRules struct {
	DryBonus        int     `koanf:"dry_bonus" json:"dryBonus"`
	MinimalBelow    float64 `koanf:"minimal_below" json:"minimalBelow"`
	MinimalPenalty  int     `koanf:"minimal_penalty" json:"minimalPenalty"`
	LightBelow      float64 `koanf:"light_below" json:"lightBelow"`
	LightPenalty    int     `koanf:"light_penalty" json:"lightPenalty"`
	ModerateBelow   float64 `koanf:"moderate_below" json:"moderateBelow"`
	ModeratePenalty int     `koanf:"moderate_penalty" json:"moderatePenalty"`
	HeavyPenalty    int     `koanf:"heavy_penalty" json:"heavyPenalty"`
}

type WindRules struct {
	CalmMax          float64 `koanf:"calm_max" json:"calmMax"`
	CalmBonus        int     `koanf:"calm_bonus" json:"calmBonus"`
	ModerateMax      float64 `koanf:"moderate_max" json:"moderateMax"`
	ModeratePenalty  int     `koanf:"moderate_penalty" json:"moderatePenalty"`
	StrongMax        float64 `koanf:"strong_max" json:"strongMax"`
	StrongPenalty    int     `koanf:"strong_penalty" json:"strongPenalty"`
	DangerousPenalty int     `koanf:"dangerous_penalty" json:"dangerousPenalty"`
}

type CloudRules struct {
	ClearMax        float64 `koanf:"clear_max" json:"clearMax"`
	PartlyMax       float64 `koanf:"partly_max" json:"partlyMax"`
	MostlyMax       float64 `koanf:"mostly_max" json:"mostlyMax"`
	MostlyPenalty   int     `koanf:"mostly_penalty" json:"mostlyPenalty"`
	OvercastPenalty int     `koanf:"overcast_penalty" json:"overcastPenalty"`
}

type ConditionRules struct {
	ThunderstormPenalty int `koanf:"thunderstorm_penalty" json:"thunderstormPenalty"`
	SnowPenalty         int `koanf:"snow_penalty" json:"snowPenalty"`
	RainPenalty         int `koanf:"rain_penalty" json:"rainPenalty"`
	DrizzlePenalty      int `koanf:"drizzle_penalty" json:"drizzlePenalty"`
	FogPenalty          int `koanf:"fog_penalty" json:"fogPenalty"`
	VisibilityBonus     int `koanf:"visibility_bonus" json:"visibilityBonus"`
}

type ElevationRules struct {
	ExtremeAbove      int     `koanf:"extreme_above" json:"extremeAbove"`
	ExtremePenalty    int     `koanf:"extreme_penalty" json:"extremePenalty"`
	ExposureColdBelow float64 `koanf:"exposure_cold_below" json:"exposureColdBelow"`
	ExposureWindAbove float64 `koanf:"exposure_wind_above" json:"exposureWindAbove"`
	ExposurePenalty   int     `koanf:"exposure_penalty" json:"exposurePenalty"`
}

// BandRules are the inclusive lower bounds of each suitability band.
type BandRules struct {
	Excellent int `koanf:"excellent" json:"excellent"`
	Good      int `koanf:"good" json:"good"`
	Fair      int `koanf:"fair" json:"fair"`
	Poor      int `koanf:"poor" json:"poor"`
}

// DefaultRules returns the canonical scoring rules.
func DefaultRules() Rules {
	return Rules{
		Baseline: 100,
		Temperature: TemperatureRules{
			FreezingBelow:   32,
			FreezingPenalty: 30,
			ColdBelow:       40,
			ColdPenalty:     15,
			HotAbove:        80,
			HotPenalty:      15,
			ComfortMin:      45,
			ComfortMax:      75,
		},
		Precipitation: PrecipitationRules{
			MinimalBelow:    0.1,
			MinimalPenalty:  5,
			LightBelow:      0.25,
			LightPenalty:    15,
			ModerateBelow:   0.5,
			ModeratePenalty: 25,
			HeavyPenalty:    40,
		},
		Wind: WindRules{
			CalmMax:          15,
			ModerateMax:      25,
			ModeratePenalty:  15,
			StrongMax:        35,
			StrongPenalty:    25,
			DangerousPenalty: 50,
		},
		Cloud: CloudRules{
			ClearMax:        25,
			PartlyMax:       50,
			MostlyMax:       75,
			MostlyPenalty:   10,
			OvercastPenalty: 15,
		},
		Condition: ConditionRules{
			ThunderstormPenalty: 50,
			SnowPenalty:         30,
			RainPenalty:         20,
			DrizzlePenalty:      10,
			FogPenalty:          25,
			VisibilityBonus:     15,
		},
		Elevation: ElevationRules{
			ExtremeAbove:      14200,
			ExtremePenalty:    10,
			ExposureColdBelow: 40,
			ExposureWindAbove: 25,
			ExposurePenalty:   15,
		},
		Bands: BandRules{
			Excellent: 80,
			Good:      65,
			Fair:      45,
			Poor:      25,
		},
	}
}

// Validate checks that thresholds are ordered and weights are non-negative.
func (r Rules) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidInput, msg))
		}
	}

	t := r.Temperature
	check(t.FreezingBelow <= t.ColdBelow, "temperature.freezing_below must not exceed cold_below")
	check(t.ColdBelow < t.HotAbove, "temperature.cold_below must be below hot_above")
	check(t.ComfortMin <= t.ComfortMax, "temperature.comfort_min must not exceed comfort_max")

	p := r.Precipitation
	check(p.MinimalBelow <= p.LightBelow && p.LightBelow <= p.ModerateBelow,
		"precipitation thresholds must be ascending")

	w := r.Wind
	check(w.CalmMax <= w.ModerateMax && w.ModerateMax <= w.StrongMax, "wind thresholds must be ascending")

	c := r.Cloud
	check(c.ClearMax <= c.PartlyMax && c.PartlyMax <= c.MostlyMax, "cloud thresholds must be ascending")

	b := r.Bands
	check(b.Excellent >= b.Good && b.Good >= b.Fair && b.Fair >= b.Poor, "bands must be descending")
	check(b.Excellent <= 100 && b.Poor >= 0, "bands must lie within 0-100")

	for name, v := range map[string]int{
		"temperature.freezing_penalty":   t.FreezingPenalty,
		"temperature.cold_penalty":       t.ColdPenalty,
		"temperature.hot_penalty":        t.HotPenalty,
		"precipitation.minimal_penalty":  p.MinimalPenalty,
		"precipitation.light_penalty":    p.LightPenalty,
		"precipitation.moderate_penalty": p.ModeratePenalty,
		"precipitation.heavy_penalty":    p.HeavyPenalty,
		"wind.moderate_penalty":          w.ModeratePenalty,
		"wind.strong_penalty":            w.StrongPenalty,
		"wind.dangerous_penalty":         w.DangerousPenalty,
		"cloud.mostly_penalty":           c.MostlyPenalty,
		"cloud.overcast_penalty":         c.OvercastPenalty,
		"condition.thunderstorm_penalty": r.Condition.ThunderstormPenalty,
		"condition.snow_penalty":         r.Condition.SnowPenalty,
		"condition.rain_penalty":         r.Condition.RainPenalty,
		"condition.drizzle_penalty":      r.Condition.DrizzlePenalty,
		"condition.fog_penalty":          r.Condition.FogPenalty,
		"elevation.extreme_penalty":      r.Elevation.ExtremePenalty,
		"elevation.exposure_penalty":     r.Elevation.ExposurePenalty,
	} {
		check(v >= 0, name+" must be non-negative")
	}

	return errors.Join(errs...)
}
