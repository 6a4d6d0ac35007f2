package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/models"
	"github.com/lox/fourteeners/internal/store"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	themeCookie = "theme"
)

func parseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(s)) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return ThemeLight, false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ViewState is everything about the page that the visitor controls. It is
// derived from each request and handed to the template; nothing is kept
// between requests apart from the theme cookie.
type ViewState struct {
	Theme Theme
	Query string
	Sort  store.SortKey
}

// viewStateFromRequest reads ?theme=, ?q= and ?sort=. A valid ?theme= wins
// over the cookie and is reported so the caller can persist it.
func viewStateFromRequest(r *http.Request) (ViewState, bool) {
	q := r.URL.Query()
	v := ViewState{
		Theme: ThemeLight,
		Query: strings.TrimSpace(q.Get("q")),
	}
	v.Sort, _ = store.ParseSortKey(q.Get("sort"))

	if t, ok := parseTheme(q.Get("theme")); ok {
		v.Theme = t
		return v, true
	}
	if c, err := r.Cookie(themeCookie); err == nil {
		v.Theme, _ = parseTheme(c.Value)
	}
	return v, false
}

// URL builds a link to the index page preserving the state, with optional
// overrides applied.
func (v ViewState) URL(theme Theme) string {
	q := url.Values{}
	if v.Query != "" {
		q.Set("q", v.Query)
	}
	if v.Sort != store.SortCatalog {
		q.Set("sort", string(v.Sort))
	}
	if theme != v.Theme {
		q.Set("theme", string(theme))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

type SortOption struct {
	Key      store.SortKey
	Label    string
	Selected bool
}

var sortLabels = map[store.SortKey]string{
	store.SortCatalog:     "Catalog order",
	store.SortName:        "Name",
	store.SortElevation:   "Elevation",
	store.SortTemperature: "Temperature",
	store.SortWindSpeed:   "Wind speed",
	store.SortHikingScore: "Best hiking score",
}

func sortOptions(selected store.SortKey) []SortOption {
	keys := append([]store.SortKey{store.SortCatalog}, store.SortKeys...)
	opts := make([]SortOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, SortOption{Key: k, Label: sortLabels[k], Selected: k == selected})
	}
	return opts
}

// IndexData is the template payload for the main page.
type IndexData struct {
	View        ViewState
	SortOptions []SortOption
	Peaks       []PeakView
	Total       int
	LastUpdated time.Time
}

type CurrentView struct {
	Temperature int
	FeelsLike   int
	Description string
	Emoji       string
	Wind        string
	Humidity    int
	Visibility  int
	CloudCover  int
	Banner      string
}

type DayView struct {
	Name        string
	High        int
	Low         int
	Emoji       string
	Description string
	Wind        string
	Score       int
	Rating      string
	CSSClass    string
	IsBest      bool
}

type BestView struct {
	DayName   string
	Score     int
	Rating    string
	CSSClass  string
	Summary   string
	Positives []string
	Warnings  []string
}

type PeakView struct {
	Name      string
	Path      string // escaped for use in URLs
	Elevation int
	Error     string
	Current   *CurrentView
	Today     *models.DayRange
	Tomorrow  *models.DayRange
	DayAfter  *models.DayRange
	Days      []DayView
	Best      *BestView
}

func intPtrToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

// newPeakView links the current condition's banner artwork when withBanner is
// set.
func newPeakView(mw models.MountainWeather, withBanner bool) PeakView {
	pv := PeakView{
		Name:      mw.Mountain,
		Path:      url.PathEscape(mw.Mountain),
		Elevation: mw.Elevation,
		Error:     mw.Error,
	}
	if c := mw.Current; c != nil {
		pv.Current = &CurrentView{
			Temperature: c.Temperature,
			FeelsLike:   c.FeelsLike,
			Description: c.Description,
			Emoji:       forecast.IconEmoji(c.Icon),
			Wind:        forecast.WindDisplay(float64(c.WindSpeed), c.WindDirection, intPtrToFloat(c.WindGusts)),
			Humidity:    c.Humidity,
			Visibility:  c.Visibility,
			CloudCover:  c.CloudCover,
		}
		if withBanner {
			pv.Current.Banner = "/banner/" + c.Condition.Slug() + ".png"
		}
	}

	switch f := mw.Forecast.(type) {
	case models.LegacyForecast:
		pv.Today = &f.Today
		pv.Tomorrow = &f.Tomorrow
		pv.DayAfter = f.DayAfter
	case models.SevenDayForecast:
		pv.Days = make([]DayView, len(f.Days))
		for i, d := range f.Days {
			pv.Days[i] = DayView{
				Name:        d.DayName,
				High:        d.High,
				Low:         d.Low,
				Emoji:       forecast.IconEmoji(d.Icon),
				Description: d.Description,
				Wind:        forecast.WindDisplay(float64(d.WindSpeed), d.WindDirection, nil),
				Score:       d.Hiking.Score,
				Rating:      d.Hiking.Rating,
				CSSClass:    d.Hiking.Category.CSSClass(),
				IsBest:      i == f.BestDay.DayIndex,
			}
		}
		if best, ok := f.BestAssessment(); ok {
			pv.Best = &BestView{
				DayName:   best.DayName,
				Score:     best.Hiking.Score,
				Rating:    best.Hiking.Rating,
				CSSClass:  best.Hiking.Category.CSSClass(),
				Summary:   best.Hiking.Summary,
				Positives: best.Hiking.Positives,
				Warnings:  best.Hiking.Warnings,
			}
		}
	}
	return pv
}
