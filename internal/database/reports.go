package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/privacypulse/internal/model"
)

// SaveScanReport stores report under its ID, replacing an earlier row with
// the same ID.
func (d *DB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO scan_reports
		(id, target, timestamp, score, classification, outcome, tracker_count, failed, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		report.ID,
		report.Target,
		formatTimestamp(report.StartedAt),
		report.Summary.Score,
		report.Summary.Classification,
		string(report.Outcome),
		len(report.Summary.Trackers),
		report.Failed,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}
	return nil
}

// ScanReportMetadata describes a stored report without loading it.
type ScanReportMetadata struct {
	ID             string
	Target         string
	Timestamp      time.Time
	Score          float64
	Classification string
	Outcome        model.Outcome
	TrackerCount   int
	Failed         bool
}

// ListScanReports returns stored reports newest first. An empty target
// lists every target; limit <= 0 means no limit.
func (d *DB) ListScanReports(ctx context.Context, target string, limit int) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, target, timestamp, score, classification, outcome, tracker_count, failed
	FROM scan_reports
	WHERE (? = '' OR target = ?)
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx, query, target, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan reports: %w", err)
	}
	defer rows.Close()

	results := []ScanReportMetadata{}
	for rows.Next() {
		var (
			meta           ScanReportMetadata
			timestamp      string
			classification sql.NullString
			outcome        sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.Target, &timestamp, &meta.Score,
			&classification, &outcome, &meta.TrackerCount, &meta.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Classification = classification.String
		meta.Outcome = model.Outcome(outcome.String)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetScanReportByID returns the report with id, or nil when there is none.
func (d *DB) GetScanReportByID(ctx context.Context, id string) (*model.ScanReport, error) {
	return d.queryReport(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id)
}

// GetLatestScanReport returns the newest report for target, or nil.
func (d *DB) GetLatestScanReport(ctx context.Context, target string) (*model.ScanReport, error) {
	return d.queryReport(ctx, `
	SELECT report_json FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC, rowid DESC
	LIMIT 1
	`, target)
}

func (d *DB) queryReport(ctx context.Context, query string, arg any) (*model.ScanReport, error) {
	var reportJSON string
	err := d.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
