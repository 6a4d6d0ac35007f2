package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/store"
)

const errMountainNotFound = "Mountain not found"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s *Server) handleAPIMountains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.peaks)
}

func (s *Server) handleAPIWeatherList(w http.ResponseWriter, r *http.Request) {
	sort, _ := store.ParseSortKey(r.URL.Query().Get("sort"))
	weather, err := s.store.ListWeather(store.WeatherQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   sort,
	})
	if err != nil {
		s.logger.Error("list weather", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

func wantsRefresh(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

// handleAPIWeather serves the latest snapshot for one peak. Peaks without a
// snapshot, or requests with ?refresh=1, are fetched live when a refresher
// is configured.
func (s *Server) handleAPIWeather(w http.ResponseWriter, r *http.Request) {
	peak, ok := s.findPeak(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, errMountainNotFound)
		return
	}

	if !wantsRefresh(r) {
		mw, err := s.store.GetWeather(peak.Name)
		if err == nil {
			writeJSON(w, http.StatusOK, mw)
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("get weather", "peak", peak.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
			return
		}
	}

	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "Weather data not yet available")
		return
	}
	writeJSON(w, http.StatusOK, s.refresher.RefreshPeak(r.Context(), peak))
}

func (s *Server) handleAPIRawPayload(w http.ResponseWriter, r *http.Request) {
	peak, ok := s.findPeak(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, errMountainNotFound)
		return
	}

	body, fetchedAt, err := s.store.LatestRawPayload(peak.Name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No provider payload recorded")
		return
	}
	if err != nil {
		s.logger.Error("latest raw payload", "peak", peak.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read provider payload")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Last-Modified", fetchedAt.UTC().Format(http.TimeFormat))
	w.Write(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleAPIScore(w http.ResponseWriter, r *http.Request) {
	var day forecast.DayInput
	if err := decodeBody(w, r, &day); err != nil {
		writeError(w, http.StatusBadRequest, "invalid day: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.rules.Score(day))
}

type bestDayRequest struct {
	Days      []forecast.DayInput `json:"days"`
	SkipFirst *bool               `json:"skipFirst"`
}

type bestDayResponse struct {
	BestDay     forecast.BestDay            `json:"bestHikingDay"`
	Assessments []forecast.HikingAssessment `json:"assessments"`
}

// handleAPIBestDay scores a window of days and picks the best one. Today is
// skipped unless skipFirst is explicitly false.
func (s *Server) handleAPIBestDay(w http.ResponseWriter, r *http.Request) {
	var req bestDayRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid window: "+err.Error())
		return
	}
	skipFirst := req.SkipFirst == nil || *req.SkipFirst

	assessments := make([]forecast.HikingAssessment, len(req.Days))
	for i, d := range req.Days {
		assessments[i] = s.rules.Score(d)
	}
	best, err := forecast.PickBestDay(assessments, skipFirst)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bestDayResponse{BestDay: best, Assessments: assessments})
}
