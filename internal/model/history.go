package model

import "math"

// ClassificationSafe is the backend classification of a site with no
// notable risks.
const ClassificationSafe = "Safe"

// HighRiskScore is the score above which a history entry counts as a
// high-risk site.
const HighRiskScore = 50

// History is the backend's scan history with its aggregate figures.
type History struct {
	Entries []ScanSummary `json:"entries"`
	Stats   HistoryStats  `json:"stats"`
}

// NewHistory pairs entries with their statistics. A nil entries slice
// becomes empty.
func NewHistory(entries []ScanSummary) *History {
	if entries == nil {
		entries = []ScanSummary{}
	}
	return &History{Entries: entries, Stats: NewHistoryStats(entries)}
}

// HistoryStats are the dashboard figures derived from a scan history.
type HistoryStats struct {
	// WebsitesAnalyzed is the number of entries.
	WebsitesAnalyzed int `json:"websites_analyzed"`

	// AverageScore is the mean score rounded half up, 0 for no entries.
	AverageScore float64 `json:"average_score"`

	// TotalCookies is the number of cookies across all entries.
	TotalCookies int `json:"total_cookies"`

	// SitesWithCookies counts entries that list at least one cookie.
	SitesWithCookies int `json:"sites_with_cookies"`

	// SitesWithTrackers counts entries that list at least one tracker.
	SitesWithTrackers int `json:"sites_with_trackers"`

	// HighRiskSites counts entries scoring above HighRiskScore.
	HighRiskSites int `json:"high_risk_sites"`

	// SafeSites counts entries classified ClassificationSafe.
	SafeSites int `json:"safe_sites"`

	// UnsafeSites counts every other entry, including unclassified ones.
	UnsafeSites int `json:"unsafe_sites"`
}

// NewHistoryStats computes the figures for entries.
func NewHistoryStats(entries []ScanSummary) HistoryStats {
	stats := HistoryStats{WebsitesAnalyzed: len(entries)}
	var total float64
	for _, e := range entries {
		total += e.Score
		stats.TotalCookies += len(e.Cookies)
		if len(e.Cookies) > 0 {
			stats.SitesWithCookies++
		}
		if len(e.Trackers) > 0 {
			stats.SitesWithTrackers++
		}
		if e.Score > HighRiskScore {
			stats.HighRiskSites++
		}
		if e.Classification == ClassificationSafe {
			stats.SafeSites++
		} else {
			stats.UnsafeSites++
		}
	}
	if len(entries) > 0 {
		stats.AverageScore = math.Floor(total/float64(len(entries)) + 0.5)
	}
	return stats
}

// DataShared is the complement of the average score, in percent.
func (s HistoryStats) DataShared() float64 {
	return 100 - s.AverageScore
}
