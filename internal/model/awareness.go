package model

// Awareness is the privacy education content served by the backend: a
// daily tip, a short quiz and a leaderboard.
type Awareness struct {
	Tip         string             `json:"tip"`
	Quiz        []QuizQuestion     `json:"quiz"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// QuizQuestion is one yes/no quiz question with its answer.
type QuizQuestion struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// NewAwareness returns empty content with non-nil lists.
func NewAwareness() *Awareness {
	return &Awareness{
		Quiz:        []QuizQuestion{},
		Leaderboard: []LeaderboardEntry{},
	}
}
