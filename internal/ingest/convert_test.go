package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/models"
)

var pikes = catalog.Peak{Name: "Pikes Peak", Elevation: 14115, Lat: 38.8405, Lon: -105.0442}

func TestConvertCurrent(t *testing.T) {
	resp := fixture(7)
	cur := ConvertCurrent(resp.Current)

	if cur.Temperature != 42 || cur.FeelsLike != 35 {
		t.Errorf("temperature = %d/%d, want 42/35", cur.Temperature, cur.FeelsLike)
	}
	if cur.Condition != forecast.CategoryClear || cur.Description != "Mainly clear" || cur.Icon != "01d" {
		t.Errorf("condition = %+v", cur)
	}
	if cur.WindSpeed != 12 || cur.WindGusts == nil || *cur.WindGusts != 22 {
		t.Errorf("wind = %d gusts %v", cur.WindSpeed, cur.WindGusts)
	}
	if cur.Visibility != 15 {
		t.Errorf("Visibility = %d, want 15", cur.Visibility)
	}

	resp.Current.Visibility = nil
	resp.Current.WindGusts = f64(0)
	cur = ConvertCurrent(resp.Current)
	if cur.Visibility != 6 {
		t.Errorf("default Visibility = %d, want 6", cur.Visibility)
	}
	if cur.WindGusts != nil {
		t.Errorf("WindGusts = %v, want nil", *cur.WindGusts)
	}

	if ConvertCurrent(nil) != nil {
		t.Error("ConvertCurrent(nil) should be nil")
	}
}

func TestBuildWindow(t *testing.T) {
	tests := []struct {
		name         string
		days         int
		wantSevenDay bool
		wantDayAfter bool
	}{
		{name: "two days", days: 2},
		{name: "three days", days: 3, wantDayAfter: true},
		{name: "six days stays legacy", days: 6, wantDayAfter: true},
		{name: "seven days", days: 7, wantSevenDay: true},
		{name: "ten days", days: 10, wantSevenDay: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fixture(tt.days)
			w := BuildWindow(resp.Daily, pikes.Elevation, forecast.DefaultRules())

			switch got := w.(type) {
			case models.SevenDayForecast:
				if !tt.wantSevenDay {
					t.Fatalf("BuildWindow() = SevenDayForecast, want LegacyForecast")
				}
				if len(got.Days) != tt.days {
					t.Errorf("len(Days) = %d, want %d", len(got.Days), tt.days)
				}
				if got.Days[0].DayName != "Today" || got.Days[1].DayName != "Tomorrow" {
					t.Errorf("day names = %q, %q", got.Days[0].DayName, got.Days[1].DayName)
				}
				// 2026-07-03 is a Friday.
				if got.Days[2].DayName != "Friday" {
					t.Errorf("Days[2].DayName = %q, want Friday", got.Days[2].DayName)
				}
				if got.BestDay.DayIndex == 0 {
					t.Error("best day must exclude today")
				}
			case models.LegacyForecast:
				if tt.wantSevenDay {
					t.Fatalf("BuildWindow() = LegacyForecast, want SevenDayForecast")
				}
				if got.Today != (models.DayRange{High: 55, Low: 38}) {
					t.Errorf("Today = %+v", got.Today)
				}
				if (got.DayAfter != nil) != tt.wantDayAfter {
					t.Errorf("DayAfter = %v, want present=%v", got.DayAfter, tt.wantDayAfter)
				}
			default:
				t.Fatalf("BuildWindow() returned %T", w)
			}
		})
	}
}

func TestBuildWindowPicksBestDay(t *testing.T) {
	resp := fixture(7)
	// Make day 4 clear and calm, day 5 stormy.
	resp.Daily.WeatherCode[4] = intp(0)
	resp.Daily.CloudCoverMean[4] = f64(5)
	resp.Daily.WeatherCode[5] = intp(95)
	resp.Daily.WeatherCode[0] = intp(0)

	w := BuildWindow(resp.Daily, pikes.Elevation, forecast.DefaultRules()).(models.SevenDayForecast)
	if w.BestDay.DayIndex != 4 {
		t.Errorf("BestDay = %+v, want index 4", w.BestDay)
	}
	if w.Days[5].Hiking.Category != forecast.SuitabilityPoor && w.Days[5].Hiking.Category != forecast.SuitabilityFair {
		t.Errorf("stormy day category = %q", w.Days[5].Hiking.Category)
	}
	if w.BestDay.Score != w.Days[4].Hiking.Score {
		t.Errorf("BestDay.Score = %d, want %d", w.BestDay.Score, w.Days[4].Hiking.Score)
	}
}

func TestBuildWeather(t *testing.T) {
	resp := fixture(7)
	resp.Daily.TemperatureMin[2] = f64(70)
	fetchedAt := time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

	conv := BuildWeather(pikes, &resp, forecast.DefaultRules(), fetchedAt)
	if conv.Weather.Mountain != "Pikes Peak" || conv.Weather.Elevation != 14115 {
		t.Errorf("Weather = %+v", conv.Weather)
	}
	if !conv.Weather.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v", conv.Weather.FetchedAt)
	}
	if len(conv.QualityFlags) != 1 || conv.QualityFlags[0] != FlagHighBelowLow+"[2]" {
		t.Errorf("QualityFlags = %v", conv.QualityFlags)
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *OpenMeteoResponse)
		wantErr string
	}{
		{name: "valid", mutate: func(r *OpenMeteoResponse) {}},
		{name: "missing current", mutate: func(r *OpenMeteoResponse) { r.Current = nil }, wantErr: "missing current"},
		{name: "missing daily", mutate: func(r *OpenMeteoResponse) { r.Daily = nil }, wantErr: "missing daily"},
		{name: "too short", mutate: func(r *OpenMeteoResponse) {
			*r = fixture(1)
		}, wantErr: "need at least 2"},
		{name: "ragged arrays", mutate: func(r *OpenMeteoResponse) {
			r.Daily.WindSpeedMax = r.Daily.WindSpeedMax[:3]
		}, wantErr: "wind_speed_10m_max"},
		{name: "null temperature", mutate: func(r *OpenMeteoResponse) {
			r.Daily.TemperatureMax[1] = nil
		}, wantErr: "temperature missing"},
		{name: "null current code", mutate: func(r *OpenMeteoResponse) {
			r.Current.WeatherCode = nil
		}, wantErr: "weather_code is null"},
		{name: "cloud cover optional", mutate: func(r *OpenMeteoResponse) {
			r.Daily.CloudCoverMean = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixture(7)
			tt.mutate(&r)
			err := ValidateResponse(&r)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateResponse() = %v, want nil", err)
				}
				return
			}
			if err == nil || !errors.Is(err, ErrInvalidResponse) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateResponse() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestQualityFlags(t *testing.T) {
	tests := []struct {
		name string
		day  forecast.DayInput
		want []string
	}{
		{name: "clean", day: forecast.DayInput{HighTempF: 50, LowTempF: 30, WeatherCode: 0}},
		{name: "inverted", day: forecast.DayInput{HighTempF: 30, LowTempF: 50, WeatherCode: 0}, want: []string{FlagHighBelowLow}},
		{name: "unknown code and wild wind", day: forecast.DayInput{HighTempF: 50, MaxWindSpeedMph: 250, WeatherCode: 42},
			want: []string{FlagWindSpeedUnlikely, FlagUnknownCode}},
		{name: "bad cloud", day: forecast.DayInput{HighTempF: 50, CloudCoverPercent: f64(120), WeatherCode: 1}, want: []string{FlagCloudCoverInvalid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualityFlags(tt.day)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("QualityFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}
