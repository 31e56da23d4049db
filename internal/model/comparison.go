package model

import (
	"math"
	"sort"
)

// Comparison places two scan reports side by side.
type Comparison struct {
	A *ScanReport `json:"a"`
	B *ScanReport `json:"b"`
}

// NewComparison pairs two reports.
func NewComparison(a, b *ScanReport) *Comparison {
	return &Comparison{A: a, B: b}
}

// ScoreDelta returns B's score minus A's score.
func (c *Comparison) ScoreDelta() float64 {
	return c.B.Summary.Score - c.A.Summary.Score
}

// TrackerDelta returns B's tracker count minus A's tracker count.
func (c *Comparison) TrackerDelta() int {
	return len(c.B.Summary.Trackers) - len(c.A.Summary.Trackers)
}

// SharedTrackers returns the names of trackers present in both reports,
// matched by Key and sorted.
func (c *Comparison) SharedTrackers() []string {
	inA := make(map[string]string, len(c.A.Summary.Trackers))
	for _, t := range c.A.Summary.Trackers {
		inA[t.Key()] = t.Name
	}
	seen := make(map[string]struct{})
	var shared []string
	for _, t := range c.B.Summary.Trackers {
		k := t.Key()
		name, ok := inA[k]
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		shared = append(shared, name)
	}
	sort.Strings(shared)
	return shared
}

// TransparencyDiff returns the absolute score difference.
func (c *Comparison) TransparencyDiff() float64 {
	return math.Abs(c.ScoreDelta())
}

// MoreTransparent returns the report with the higher transparency score,
// or nil on a tie.
func (c *Comparison) MoreTransparent() *ScanReport {
	switch {
	case c.A.Summary.Score > c.B.Summary.Score:
		return c.A
	case c.B.Summary.Score > c.A.Summary.Score:
		return c.B
	default:
		return nil
	}
}
