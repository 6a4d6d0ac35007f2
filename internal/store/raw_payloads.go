package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// StoreRawPayload keeps a compressed copy of a provider response.
// Returns the payload ID, or 0 if the payload was a duplicate (same hash).
func (s *Store) StoreRawPayload(runID *int64, source, peakName string, payload []byte) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)

	var ingestRunID sql.NullInt64
	if runID != nil {
		ingestRunID = sql.NullInt64{Int64: *runID, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO raw_payloads (ingest_run_id, fetched_at, source, peak_name, payload_compressed, payload_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO NOTHING
	`, ingestRunID, time.Now().UTC(), source, peakName, buf.Bytes(), hex.EncodeToString(hash[:]))
	if err != nil {
		return 0, fmt.Errorf("insert raw payload: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil || n == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

// LatestRawPayload returns the newest decompressed payload for a peak.
func (s *Store) LatestRawPayload(peakName string) ([]byte, time.Time, error) {
	var compressed []byte
	var fetchedAt time.Time
	err := s.db.QueryRow(`
		SELECT payload_compressed, fetched_at
		FROM raw_payloads
		WHERE lower(peak_name) = lower(?)
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`, peakName).Scan(&compressed, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	body, err := io.ReadAll(gz)
	if err != nil {
		return nil, time.Time{}, err
	}
	return body, fetchedAt, nil
}

// RawPayloadStats contains storage statistics for raw payloads.
type RawPayloadStats struct {
	TotalCount     int            `json:"totalCount"`
	TotalSizeBytes int64          `json:"totalSizeBytes"`
	CountBySource  map[string]int `json:"countBySource"`
}

// GetRawPayloadStats returns storage statistics for raw payloads.
func (s *Store) GetRawPayloadStats() (*RawPayloadStats, error) {
	stats := &RawPayloadStats{CountBySource: make(map[string]int)}

	rows, err := s.db.Query(`
		SELECT source, COUNT(*), COALESCE(SUM(LENGTH(payload_compressed)), 0)
		FROM raw_payloads
		GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		var size int64
		if err := rows.Scan(&source, &count, &size); err != nil {
			return nil, err
		}
		stats.CountBySource[source] = count
		stats.TotalCount += count
		stats.TotalSizeBytes += size
	}

	return stats, rows.Err()
}

// PruneRawPayloads keeps only the newest keep payloads per peak and returns
// the number of deleted records.
func (s *Store) PruneRawPayloads(keep int) (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM raw_payloads
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY peak_name ORDER BY fetched_at DESC, id DESC) AS rn
				FROM raw_payloads
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
