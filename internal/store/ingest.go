package store

import (
	"database/sql"
	"time"
)

// IngestRun represents a single provider fetch for auditing.
type IngestRun struct {
	ID                int64
	StartedAt         time.Time
	FinishedAt        sql.NullTime
	Source            string // "open-meteo"
	Endpoint          string // "forecast"
	PeakName          sql.NullString
	HTTPStatus        sql.NullInt64
	ResponseSizeBytes sql.NullInt64
	RecordsParsed     sql.NullInt64
	Attempts          sql.NullInt64
	Success           bool
	ErrorMessage      sql.NullString
}

// StartIngestRun creates a new ingest run record and returns it.
func (s *Store) StartIngestRun(source, endpoint string, peakName *string) (*IngestRun, error) {
	run := &IngestRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
		Endpoint:  endpoint,
	}
	if peakName != nil {
		run.PeakName = sql.NullString{String: *peakName, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO ingest_runs (started_at, source, endpoint, peak_name, success)
		VALUES (?, ?, ?, ?, FALSE)
	`, run.StartedAt, run.Source, run.Endpoint, run.PeakName)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return run, nil
}

// CompleteIngestRun updates the ingest run with results.
func (s *Store) CompleteIngestRun(run *IngestRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE ingest_runs SET
			finished_at = ?,
			http_status = ?,
			response_size_bytes = ?,
			records_parsed = ?,
			attempts = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.HTTPStatus, run.ResponseSizeBytes, run.RecordsParsed,
		run.Attempts, run.Success, run.ErrorMessage, run.ID)
	return err
}

// IngestHealthSummary aggregates runs for one source and endpoint.
type IngestHealthSummary struct {
	Source       string `json:"source"`
	Endpoint     string `json:"endpoint"`
	TotalRuns    int    `json:"totalRuns"`
	SuccessRuns  int    `json:"successRuns"`
	FailedRuns   int    `json:"failedRuns"`
	TotalRecords int64  `json:"totalRecords"`
}

// SuccessRate is the fraction of successful runs, 0 when there were none.
func (h IngestHealthSummary) SuccessRate() float64 {
	if h.TotalRuns == 0 {
		return 0
	}
	return float64(h.SuccessRuns) / float64(h.TotalRuns)
}

// GetIngestHealth summarises runs started after since.
func (s *Store) GetIngestHealth(since time.Time) ([]IngestHealthSummary, error) {
	rows, err := s.db.Query(`
		SELECT
			source,
			endpoint,
			COUNT(*) as total_runs,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) as success_runs,
			SUM(CASE WHEN NOT success THEN 1 ELSE 0 END) as failed_runs,
			COALESCE(SUM(records_parsed), 0) as total_records
		FROM ingest_runs
		WHERE SUBSTR(started_at, 1, 19) > ?
		GROUP BY source, endpoint
		ORDER BY source, endpoint
	`, since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IngestHealthSummary
	for rows.Next() {
		var h IngestHealthSummary
		if err := rows.Scan(&h.Source, &h.Endpoint, &h.TotalRuns,
			&h.SuccessRuns, &h.FailedRuns, &h.TotalRecords); err != nil {
			return nil, err
		}
		results = append(results, h)
	}
	return results, rows.Err()
}

// GetRecentIngestErrors returns recent failed ingest runs.
func (s *Store) GetRecentIngestErrors(limit int) ([]IngestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, endpoint, peak_name,
			   http_status, response_size_bytes, records_parsed, attempts,
			   success, error_message
		FROM ingest_runs
		WHERE success = FALSE AND finished_at IS NOT NULL
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IngestRun
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Endpoint,
			&r.PeakName, &r.HTTPStatus, &r.ResponseSizeBytes, &r.RecordsParsed,
			&r.Attempts, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneIngestRuns deletes runs started before cutoff and returns the count removed.
func (s *Store) PruneIngestRuns(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM ingest_runs
		WHERE SUBSTR(started_at, 1, 19) < ?
		AND id NOT IN (SELECT ingest_run_id FROM raw_payloads WHERE ingest_run_id IS NOT NULL)
	`, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
