package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/imagegen"
	"github.com/lox/fourteeners/internal/models"
	"github.com/lox/fourteeners/internal/store"
)

func servePNG(w http.ResponseWriter, data []byte, maxAge int) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	w.Write(data)
}

// handleBanner serves generated artwork for a condition category.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	category, ok := forecast.ParseCategory(strings.TrimSuffix(r.PathValue("category"), ".png"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown condition category")
		return
	}
	if s.banners == nil {
		writeError(w, http.StatusServiceUnavailable, "Banner service unavailable")
		return
	}

	data, err := s.banners.Banner(r.Context(), category)
	if err != nil {
		if !errors.Is(err, imagegen.ErrUnavailable) {
			s.logger.Warn("banner", "category", category, "error", err)
		}
		writeError(w, http.StatusServiceUnavailable, "Banner service unavailable")
		return
	}
	servePNG(w, data, 3600)
}

// cardData projects a snapshot onto the fields drawn on its share card.
func cardData(mw *models.MountainWeather) imagegen.CardData {
	data := imagegen.CardData{
		Mountain:  mw.Mountain,
		Elevation: mw.Elevation,
	}
	if mw.Failed() {
		data.Condition = mw.Error
		return data
	}
	if mw.Current != nil {
		temp := mw.Current.Temperature
		data.Temperature = &temp
		data.Condition = mw.Current.Description
		data.Category = mw.Current.Condition
	}
	if f, ok := mw.Forecast.(models.SevenDayForecast); ok {
		if day, ok := f.BestAssessment(); ok {
			data.HasScore = true
			data.Score = day.Hiking.Score
			data.Rating = day.Hiking.Category
			data.BestDay = day.DayName
		}
	}
	return data
}

// handleCard renders a share card for a peak's latest snapshot. Cards are
// cached per snapshot.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	peak, ok := s.findPeak(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, errMountainNotFound)
		return
	}
	mw, err := s.store.GetWeather(peak.Name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Weather data not yet available")
		return
	}
	if err != nil {
		s.logger.Error("get weather", "peak", peak.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
		return
	}

	key := fmt.Sprintf("%s@%d", peak.Name, mw.FetchedAt.Unix())
	if data, ok := s.cards.Get(key); ok {
		servePNG(w, data, 300)
		return
	}

	var background []byte
	if s.banners != nil && mw.Current != nil {
		// Best effort; the card falls back to a plain background.
		background, _ = s.banners.Banner(r.Context(), mw.Current.Condition)
	}

	data, err := imagegen.RenderCard(background, cardData(mw))
	if err != nil {
		s.logger.Error("render card", "peak", peak.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render card")
		return
	}
	s.cards.Set(key, data)
	servePNG(w, data, 300)
}
