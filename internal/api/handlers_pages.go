package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/ingest"
	"github.com/lox/fourteeners/internal/store"
)

const themeCookieMaxAge = 365 * 24 * 60 * 60

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, persistTheme := viewStateFromRequest(r)

	weather, err := s.store.ListWeather(store.WeatherQuery{Search: view.Query, Sort: view.Sort})
	if err != nil {
		s.logger.Error("list weather", "error", err)
		http.Error(w, "Failed to fetch weather data", http.StatusInternalServerError)
		return
	}

	data := IndexData{
		View:        view,
		SortOptions: sortOptions(view.Sort),
		Peaks:       make([]PeakView, 0, len(weather)),
		Total:       len(s.peaks),
	}
	for _, mw := range weather {
		data.Peaks = append(data.Peaks, newPeakView(mw, s.banners != nil))
		if mw.FetchedAt.After(data.LastUpdated) {
			data.LastUpdated = mw.FetchedAt
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.Error("render index", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	if persistTheme {
		http.SetCookie(w, &http.Cookie{
			Name:     themeCookie,
			Value:    string(view.Theme),
			Path:     "/",
			MaxAge:   themeCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status      string                      `json:"status"`
	Peaks       int                         `json:"peaks"`
	LastRefresh *RefreshStatus              `json:"lastRefresh,omitempty"`
	Ingest      []store.IngestHealthSummary `json:"ingest"`
	RawPayloads *store.RawPayloadStats      `json:"rawPayloads,omitempty"`
	Banners     []forecast.Category         `json:"banners,omitempty"`
	Errors      []string                    `json:"errors,omitempty"`
}

type RefreshStatus struct {
	StartedAt  time.Time `json:"startedAt"`
	AgeMinutes int       `json:"ageMinutes"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

const (
	healthWindow     = time.Hour
	minSuccessRate   = 80.0
	recentErrorLimit = 5
)

// handleHealth reports ok, degraded (no recent fetches, or too many failing)
// or error (store unreadable).
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok", Peaks: len(s.peaks)}

	summaries, err := s.store.GetIngestHealth(s.now().Add(-healthWindow))
	if err != nil {
		health.Status = "error"
		health.Errors = append(health.Errors, "ingest health: "+err.Error())
	}
	health.Ingest = summaries
	if health.Ingest == nil {
		health.Ingest = []store.IngestHealthSummary{}
	}

	if stats, err := s.store.GetRawPayloadStats(); err == nil {
		health.RawPayloads = stats
	}

	if cached, ok := s.banners.(interface{ Cached() []forecast.Category }); ok {
		health.Banners = cached.Cached()
	}

	if s.refresher != nil {
		if last := s.refresher.LastRefresh(); !last.StartedAt.IsZero() {
			health.LastRefresh = refreshStatus(last, s.now())
		}
	}

	if health.Status == "ok" {
		var total, ok int
		for _, h := range summaries {
			total += h.TotalRuns
			ok += h.SuccessRuns
		}
		if total == 0 || float64(ok)/float64(total)*100 < minSuccessRate {
			health.Status = "degraded"
		}
		if recent, err := s.store.GetRecentIngestErrors(recentErrorLimit); err == nil {
			for _, run := range recent {
				if run.StartedAt.Before(s.now().Add(-healthWindow)) {
					continue
				}
				health.Errors = append(health.Errors, run.PeakName.String+": "+run.ErrorMessage.String)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn("health: write response", "error", err)
	}
}

func refreshStatus(last ingest.RefreshSummary, now time.Time) *RefreshStatus {
	return &RefreshStatus{
		StartedAt:  last.StartedAt,
		AgeMinutes: int(now.Sub(last.StartedAt).Minutes()),
		Succeeded:  last.Succeeded,
		Failed:     last.Failed,
	}
}
