package model

// ScoreBand groups transparency scores for display.
type ScoreBand int

const (
	// BandLow covers scores up to 25.
	BandLow ScoreBand = iota
	// BandMedium covers scores above 25 up to 60.
	BandMedium
	// BandHigh covers scores above 60.
	BandHigh
)

// BandForScore returns the display band of a transparency score.
func BandForScore(score float64) ScoreBand {
	switch {
	case score <= 25:
		return BandLow
	case score <= 60:
		return BandMedium
	default:
		return BandHigh
	}
}

// String returns the band name.
func (b ScoreBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}
