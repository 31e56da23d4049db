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

// SummaryKey is the slot holding the most recent scan result.
const SummaryKey = "last_privacypulse_summary"

// Repository persists the most recent scan result.
type Repository interface {
	// Save replaces the stored result.
	Save(ctx context.Context, summary model.ScanSummary) error

	// Load returns the stored result, or nil when nothing was saved yet.
	Load(ctx context.Context) (*model.ScanSummary, error)
}

var _ Repository = (*DB)(nil)

// Save stores summary in the SummaryKey slot.
func (d *DB) Save(ctx context.Context, summary model.ScanSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := d.db.ExecContext(ctx, query, SummaryKey, string(data), formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// Load reads the SummaryKey slot.
func (d *DB) Load(ctx context.Context) (*model.ScanSummary, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, SummaryKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	var summary model.ScanSummary
	if err := json.Unmarshal([]byte(value), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse stored summary: %w", err)
	}
	return &summary, nil
}
