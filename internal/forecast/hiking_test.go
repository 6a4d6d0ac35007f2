package forecast_test

import (
	"math"
	"strings"
	"testing"

	"github.com/lox/fourteeners/internal/forecast"
	. "github.com/smartystreets/goconvey/convey"
)

func cloud(v float64) *float64 { return &v }

func containsText(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func TestScore(t *testing.T) {
	Convey("Given the default scoring rules", t, func() {
		rules := forecast.DefaultRules()

		Convey("When a clear but freezing day is forecast on a high peak", func() {
			got := rules.Score(forecast.DayInput{
				HighTempF:         20,
				LowTempF:          5,
				MaxWindSpeedMph:   5,
				WeatherCode:       1,
				CloudCoverPercent: cloud(10),
				ElevationFeet:     14433,
			})

			Convey("Then the freezing and exposure penalties make it fair", func() {
				So(got.Score, ShouldEqual, 60)
				So(got.Category, ShouldEqual, forecast.SuitabilityFair)
				So(got.Rating, ShouldEqual, "Fair")
				So(containsText(got.Warnings, "freezing"), ShouldBeTrue)
				So(containsText(got.Warnings, "elevation"), ShouldBeTrue)
				So(containsText(got.Positives, "visibility"), ShouldBeTrue)
				So(got.Summary, ShouldEqual, forecast.SuitabilityFair.Summary())
			})
		})

		Convey("When a mild clear day is forecast", func() {
			got := rules.Score(forecast.DayInput{
				HighTempF:         60,
				LowTempF:          40,
				MaxWindSpeedMph:   10,
				WeatherCode:       0,
				CloudCoverPercent: cloud(15),
				ElevationFeet:     14115,
			})

			Convey("Then it is excellent with no warnings", func() {
				So(got.Score, ShouldEqual, 100)
				So(got.Category, ShouldEqual, forecast.SuitabilityExcellent)
				So(got.Warnings, ShouldBeEmpty)
				So(containsText(got.Positives, "comfortable"), ShouldBeTrue)
				So(containsText(got.Positives, "no precipitation"), ShouldBeTrue)
				So(got.Summary, ShouldEqual, "Excellent conditions for hiking. Get out there!")
			})
		})

		Convey("When a thunderstorm with gale winds is forecast", func() {
			got := rules.Score(forecast.DayInput{
				HighTempF:           55,
				LowTempF:            38,
				PrecipitationInches: 0.3,
				MaxWindSpeedMph:     45,
				WeatherCode:         95,
				CloudCoverPercent:   cloud(90),
				ElevationFeet:       14000,
			})

			Convey("Then it is dangerous and warns about both hazards", func() {
				So(got.Category, ShouldEqual, forecast.SuitabilityDangerous)
				So(got.Score, ShouldBeLessThan, 25)
				So(containsText(got.Warnings, "thunderstorm"), ShouldBeTrue)
				So(containsText(got.Warnings, "dangerous winds"), ShouldBeTrue)
			})
		})

		Convey("When inputs are out of range", func() {
			got := rules.Score(forecast.DayInput{
				HighTempF:           60,
				LowTempF:            70,
				PrecipitationInches: -1,
				MaxWindSpeedMph:     math.NaN(),
				WeatherCode:         500,
				CloudCoverPercent:   cloud(250),
			})

			Convey("Then they are sanitized and the score stays in range", func() {
				So(got.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(containsText(got.Positives, "no precipitation"), ShouldBeTrue)
				So(containsText(got.Positives, "light winds"), ShouldBeTrue)
				So(containsText(got.Warnings, "overcast"), ShouldBeTrue)
			})
		})

		Convey("When inputs are infinite", func() {
			inf := math.Inf(1)
			cases := []struct {
				name    string
				day     forecast.DayInput
				warning string
			}{
				{"wind", forecast.DayInput{HighTempF: 60, LowTempF: 40, MaxWindSpeedMph: inf}, "dangerous winds (500 mph)"},
				{"precipitation", forecast.DayInput{HighTempF: 60, LowTempF: 40, PrecipitationInches: inf}, "heavy precipitation"},
				{"cloud cover", forecast.DayInput{HighTempF: 60, LowTempF: 40, CloudCoverPercent: cloud(inf)}, "overcast (100% cover)"},
				{"cold high", forecast.DayInput{HighTempF: math.Inf(-1), LowTempF: math.Inf(-1)}, "freezing temperatures"},
				{"hot high", forecast.DayInput{HighTempF: inf, LowTempF: 40}, "hot temperatures"},
			}

			Convey("Then each saturates into its most severe band", func() {
				for _, c := range cases {
					got := rules.Score(c.day)
					So(containsText(got.Warnings, c.warning), ShouldBeTrue)
					So(got.Score, ShouldBeBetweenOrEqual, 0, 100)
				}
			})

			Convey("Then an otherwise clear day is rated dangerous", func() {
				got := rules.Score(forecast.DayInput{
					HighTempF:           60,
					LowTempF:            40,
					PrecipitationInches: inf,
					MaxWindSpeedMph:     inf,
					CloudCoverPercent:   cloud(inf),
					WeatherCode:         0,
				})
				So(got.Category, ShouldEqual, forecast.SuitabilityDangerous)
				So(containsText(got.Positives, "no precipitation"), ShouldBeFalse)
				So(containsText(got.Positives, "light winds"), ShouldBeFalse)
				So(containsText(got.Positives, "clear skies"), ShouldBeFalse)
				So(containsText(got.Warnings, "dangerous winds"), ShouldBeTrue)
				So(containsText(got.Warnings, "heavy precipitation"), ShouldBeTrue)
			})
		})

		Convey("When cloud cover is absent", func() {
			got := rules.Score(forecast.DayInput{HighTempF: 60, LowTempF: 40, WeatherCode: 3})

			Convey("Then it is treated as clear skies", func() {
				So(containsText(got.Positives, "clear skies"), ShouldBeTrue)
				So(containsText(got.Positives, "visibility"), ShouldBeFalse)
			})
		})

		Convey("When precipitation is minimal", func() {
			dry := rules.Score(forecast.DayInput{HighTempF: 60, LowTempF: 40, WeatherCode: 3})
			damp := rules.Score(forecast.DayInput{HighTempF: 60, LowTempF: 40, WeatherCode: 3, PrecipitationInches: 0.05})

			Convey("Then it costs a little but is reported as a positive", func() {
				So(dry.Score-damp.Score, ShouldEqual, rules.Precipitation.MinimalPenalty)
				So(containsText(damp.Positives, "minimal precipitation"), ShouldBeTrue)
				So(damp.Warnings, ShouldBeEmpty)
			})
		})

		Convey("When partly cloudy weather code 2 is forecast", func() {
			got := rules.Score(forecast.DayInput{HighTempF: 60, LowTempF: 40, WeatherCode: 2})

			Convey("Then it still earns the visibility bonus", func() {
				So(containsText(got.Positives, "visibility"), ShouldBeTrue)
			})
		})

		Convey("When the rules are overridden", func() {
			custom := forecast.DefaultRules()
			custom.Condition.VisibilityBonus = 0
			custom.Baseline = 90

			got := custom.Score(forecast.DayInput{HighTempF: 60, LowTempF: 40, WeatherCode: 0})

			Convey("Then the custom weights apply", func() {
				So(got.Score, ShouldEqual, 90)
				So(got.Category, ShouldEqual, forecast.SuitabilityExcellent)
			})
		})
	})
}

func TestBand(t *testing.T) {
	rules := forecast.DefaultRules()
	tests := []struct {
		score int
		want  forecast.Suitability
	}{
		{100, forecast.SuitabilityExcellent},
		{80, forecast.SuitabilityExcellent},
		{79, forecast.SuitabilityGood},
		{65, forecast.SuitabilityGood},
		{64, forecast.SuitabilityFair},
		{45, forecast.SuitabilityFair},
		{44, forecast.SuitabilityPoor},
		{25, forecast.SuitabilityPoor},
		{24, forecast.SuitabilityDangerous},
		{0, forecast.SuitabilityDangerous},
	}
	for _, tt := range tests {
		if got := rules.Band(tt.score); got != tt.want {
			t.Errorf("Band(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRulesValidate(t *testing.T) {
	if err := forecast.DefaultRules().Validate(); err != nil {
		t.Fatalf("DefaultRules().Validate() = %v", err)
	}

	bad := forecast.DefaultRules()
	bad.Wind.ModerateMax = 50
	bad.Bands.Good = 90
	bad.Condition.FogPenalty = -5
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"wind thresholds", "bands must be descending", "condition.fog_penalty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err, want)
		}
	}
}
