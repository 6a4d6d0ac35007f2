package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lox/fourteeners/internal/catalog"
	"github.com/lox/fourteeners/internal/models"
)

// ErrNotFound is returned when a peak has no stored row.
var ErrNotFound = errors.New("not found")

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "store")}
}

// OpenMemory opens a private in-memory SQLite database. Each connection to
// ":memory:" is a separate database, so the pool is pinned to one connection.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func (s *Store) UpsertPeak(position int, p catalog.Peak) error {
	_, err := s.db.Exec(`
		INSERT INTO peaks (name, position, elevation, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			position = excluded.position,
			elevation = excluded.elevation,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, p.Name, position, p.Elevation, p.Lat, p.Lon)
	return err
}

// SeedPeaks upserts every peak, keeping the given order.
func (s *Store) SeedPeaks(peaks []catalog.Peak) error {
	for i, p := range peaks {
		if err := s.UpsertPeak(i, p); err != nil {
			return fmt.Errorf("upsert peak %s: %w", p.Name, err)
		}
	}
	return nil
}

func (s *Store) ListPeaks() ([]catalog.Peak, error) {
	rows, err := s.db.Query(`SELECT name, elevation, latitude, longitude FROM peaks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peaks []catalog.Peak
	for rows.Next() {
		var p catalog.Peak
		if err := rows.Scan(&p.Name, &p.Elevation, &p.Lat, &p.Lon); err != nil {
			return nil, err
		}
		peaks = append(peaks, p)
	}
	return peaks, rows.Err()
}

// SaveWeather replaces the latest snapshot for a peak.
func (s *Store) SaveWeather(mw models.MountainWeather) error {
	payload, err := json.Marshal(mw)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var temp, wind sql.NullFloat64
	if mw.Current != nil {
		temp = sql.NullFloat64{Float64: float64(mw.Current.Temperature), Valid: true}
		wind = sql.NullFloat64{Float64: float64(mw.Current.WindSpeed), Valid: true}
	}
	var bestScore sql.NullInt64
	var bestCategory sql.NullString
	if score, ok := mw.BestScore(); ok {
		bestScore = sql.NullInt64{Int64: int64(score), Valid: true}
		if f, ok := mw.Forecast.(models.SevenDayForecast); ok {
			if day, ok := f.BestAssessment(); ok {
				bestCategory = sql.NullString{String: string(day.Hiking.Category), Valid: true}
			}
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO weather_snapshots (peak_name, fetched_at, failed, current_temp, current_wind, best_score, best_category, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peak_name) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			failed = excluded.failed,
			current_temp = excluded.current_temp,
			current_wind = excluded.current_wind,
			best_score = excluded.best_score,
			best_category = excluded.best_category,
			payload = excluded.payload
	`, mw.Mountain, mw.FetchedAt.UTC(), mw.Failed(), temp, wind, bestScore, bestCategory, string(payload))
	return err
}

// GetWeather returns the latest snapshot for a peak, matched case-insensitively.
func (s *Store) GetWeather(name string) (*models.MountainWeather, error) {
	var payload string
	err := s.db.QueryRow(`
		SELECT w.payload
		FROM weather_snapshots w
		JOIN peaks p ON p.name = w.peak_name
		WHERE lower(p.name) = lower(?)
	`, strings.TrimSpace(name)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var mw models.MountainWeather
	if err := json.Unmarshal([]byte(payload), &mw); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", name, err)
	}
	return &mw, nil
}

// SortKey selects the ordering of ListWeather.
type SortKey string

const (
	SortCatalog     SortKey = ""
	SortName        SortKey = "name"
	SortElevation   SortKey = "elevation"
	SortTemperature SortKey = "temperature"
	SortWindSpeed   SortKey = "windSpeed"
	SortHikingScore SortKey = "hikingScore"
)

// SortKeys lists the accepted sort keys in menu order.
var SortKeys = []SortKey{SortName, SortElevation, SortTemperature, SortWindSpeed, SortHikingScore}

var sortClauses = map[SortKey]string{
	SortCatalog:     "p.position",
	SortName:        "p.name COLLATE NOCASE, p.position",
	SortElevation:   "p.elevation DESC, p.position",
	SortTemperature: "COALESCE(w.current_temp, -999) DESC, p.position",
	SortWindSpeed:   "COALESCE(w.current_wind, -1) DESC, p.position",
	SortHikingScore: "COALESCE(w.best_score, -1) DESC, p.position",
}

// ParseSortKey validates a user-supplied sort key. Unknown keys fall back to
// catalog order.
func ParseSortKey(s string) (SortKey, bool) {
	k := SortKey(s)
	if _, ok := sortClauses[k]; ok {
		return k, true
	}
	for _, known := range SortKeys {
		if strings.EqualFold(string(known), s) {
			return known, true
		}
	}
	return SortCatalog, s == ""
}

// WeatherQuery filters and orders stored snapshots.
type WeatherQuery struct {
	Search string
	Sort   SortKey
}

// ListWeather returns stored snapshots whose peak name contains Search
// (case-insensitive), ordered by Sort.
func (s *Store) ListWeather(q WeatherQuery) ([]models.MountainWeather, error) {
	order, ok := sortClauses[q.Sort]
	if !ok {
		order = sortClauses[SortCatalog]
	}

	query := `
		SELECT w.payload
		FROM weather_snapshots w
		JOIN peaks p ON p.name = w.peak_name`
	var args []any
	if search := strings.TrimSpace(q.Search); search != "" {
		query += ` WHERE instr(lower(p.name), lower(?)) > 0`
		args = append(args, search)
	}
	query += ` ORDER BY ` + order

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.MountainWeather{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var mw models.MountainWeather
		if err := json.Unmarshal([]byte(payload), &mw); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		results = append(results, mw)
	}
	return results, rows.Err()
}

// CategoryCounts tallies the best-day category across all snapshots.
func (s *Store) CategoryCounts() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT best_category, COUNT(*)
		FROM weather_snapshots
		WHERE best_category IS NOT NULL
		GROUP BY best_category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}
