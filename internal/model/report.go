package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanMode selects how the backend scan is requested.
type ScanMode string

const (
	// ModeStream reads the backend response incrementally and publishes
	// partial summaries while it arrives.
	ModeStream ScanMode = "stream"

	// ModeOneShot decodes the backend response in one piece, the way the
	// browser content script does.
	ModeOneShot ScanMode = "oneshot"
)

// PageInfo is the part of a fetched page worth keeping in a report.
type PageInfo struct {
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
	Title       string `json:"title,omitempty"`
	Hash        string `json:"hash,omitempty"`
	Scripts     int    `json:"scripts"`
	Iframes     int    `json:"iframes"`
	Images      int    `json:"images"`

	// Cookies holds cookie names set by the page.
	Cookies []string `json:"cookies,omitempty"`
}

// NewPageInfo extracts report information from a page.
func NewPageInfo(p *Page) *PageInfo {
	return &PageInfo{
		URL:         p.URL,
		StatusCode:  p.StatusCode,
		ContentType: p.ContentType,
		Title:       p.Title,
		Hash:        p.Hash,
		Scripts:     len(p.Scripts),
		Iframes:     len(p.Iframes),
		Images:      len(p.Images),
		Cookies:     p.Cookies,
	}
}

// ScanReport records one scan attempt of one target.
//
// The pipeline fills it step by step. Summary is the value persisted as the
// last scan result; the other fields describe how it was obtained.
type ScanReport struct {
	// ID identifies the attempt in the scan history.
	ID string `json:"id"`

	// Target is the page URL that was scanned.
	Target string `json:"target"`

	// PolicyURL is the privacy policy URL sent to the backend.
	PolicyURL string `json:"policy_url,omitempty"`

	// Mode is the backend request mode.
	Mode ScanMode `json:"mode"`

	// Page describes the fetched page. Nil when the page was not fetched.
	Page *PageInfo `json:"page,omitempty"`

	// AddedTrackers lists local trackers the backend did not already report.
	AddedTrackers []TrackerRecord `json:"added_trackers"`

	// Summary is the merged result object.
	Summary ScanSummary `json:"summary"`

	// Outcome is how the backend response was interpreted.
	Outcome Outcome `json:"outcome,omitempty"`

	// Warnings are advisory messages for the user.
	Warnings []string `json:"warnings,omitempty"`

	// Errors are step failures that did not stop the scan.
	Errors []string `json:"errors,omitempty"`

	// Steps lists pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Failed is true when the backend request failed.
	Failed bool `json:"failed"`

	// Cancelled is true when the scan was interrupted.
	Cancelled bool `json:"cancelled"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Document is the fetched page, kept for steps that run after
	// fetching. It is not serialized.
	Document *Page `json:"-"`
}

// NewScanReport starts a report for target in the given mode.
func NewScanReport(target string, mode ScanMode) *ScanReport {
	return &ScanReport{
		ID:            uuid.NewString(),
		Target:        target,
		Mode:          mode,
		AddedTrackers: []TrackerRecord{},
		Summary:       NewScanSummary(),
		StartedAt:     time.Now().UTC(),
	}
}

// AddWarning appends a warning. Empty warnings are ignored.
func (r *ScanReport) AddWarning(msg string) {
	if msg == "" {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}

// AddError records a step failure.
func (r *ScanReport) AddError(step string, err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, step+": "+err.Error())
}

// Finish stamps the completion time.
func (r *ScanReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration returns the scan duration, or zero while unfinished.
func (r *ScanReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Band returns the display band of the summary score.
func (r *ScanReport) Band() ScoreBand {
	return BandForScore(r.Summary.Score)
}
