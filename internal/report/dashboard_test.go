package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/privacypulse/internal/model"
)

func createTestHistory() *model.History {
	return model.NewHistory([]model.ScanSummary{
		{
			URL:            "https://shop.example.com",
			Score:          80,
			Classification: model.ClassificationSafe,
			Cookies:        []json.RawMessage{json.RawMessage(`"_ga"`)},
		},
		{
			URL:      "",
			Score:    31,
			Trackers: []model.TrackerRecord{{Name: "hotjar"}},
		},
	})
}

func createTestAwareness() *model.Awareness {
	a := model.NewAwareness()
	a.Tip = "Use <b>2FA</b> wherever possible."
	a.Quiz = []model.QuizQuestion{{Question: "Can VPNs help protect your browsing privacy?", Answer: "Yes"}}
	a.Leaderboard = []model.LeaderboardEntry{{Name: "Anon", Score: 92}, {Name: "User42", Score: 86}}
	return a
}

func TestHistoryWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		new  func(*bytes.Buffer) HistoryWriter
		want []string
	}{
		{
			name: "simple",
			new:  func(b *bytes.Buffer) HistoryWriter { return NewSimpleWriter(b) },
			want: []string{
				"PRIVACYPULSE DASHBOARD",
				"Websites analyzed:     2",
				"Average score:         56%",
				"High risk sites:       1",
				"Unsafe sites:          1",
				"SCANS (2)",
				"https://shop.example.com",
				unknownText,
			},
		},
		{
			name: "markdown",
			new:  func(b *bytes.Buffer) HistoryWriter { return NewMarkdownWriter(b) },
			want: []string{"# PrivacyPulse Dashboard", "## Overview", "Sites with trackers", "## Scans (2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := tt.new(&buf).WriteHistory(createTestHistory()); err != nil {
				t.Fatalf("WriteHistory failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestHistoryWriters_Empty(t *testing.T) {
	t.Parallel()

	for name, w := range map[string]func(*bytes.Buffer) HistoryWriter{
		"simple":   func(b *bytes.Buffer) HistoryWriter { return NewSimpleWriter(b) },
		"markdown": func(b *bytes.Buffer) HistoryWriter { return NewMarkdownWriter(b) },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := w(&buf).WriteHistory(model.NewHistory(nil)); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), emptyHistoryText) {
				t.Errorf("expected empty history text\n%s", buf.String())
			}
		})
	}
}

func TestJSONWriter_WriteHistory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).WriteHistory(createTestHistory()); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Entries []json.RawMessage  `json:"entries"`
		Stats   model.HistoryStats `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got.Entries) != 2 || got.Stats.AverageScore != 56 || got.Stats.TotalCookies != 1 {
		t.Errorf("history = %+v", got)
	}
}

func TestAwarenessWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		new     func(*bytes.Buffer) AwarenessWriter
		want    []string
		notWant string
	}{
		{
			name:    "simple",
			new:     func(b *bytes.Buffer) AwarenessWriter { return NewSimpleWriter(b) },
			want:    []string{"TIP OF THE DAY", "Use 2FA wherever possible.", "Answer: Yes", "1. Anon", "92"},
			notWant: "<b>",
		},
		{
			name:    "markdown",
			new:     func(b *bytes.Buffer) AwarenessWriter { return NewMarkdownWriter(b) },
			want:    []string{"# Privacy Awareness", "## Quiz", "## Leaderboard", "User42"},
			notWant: "<b>",
		},
		{
			name: "json",
			new:  func(b *bytes.Buffer) AwarenessWriter { return NewJSONWriter(b) },
			want: []string{`"tip":`, `"q":"Can VPNs help protect your browsing privacy?"`, `"leaderboard":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := tt.new(&buf).WriteAwareness(createTestAwareness()); err != nil {
				t.Fatalf("WriteAwareness failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q\n%s", want, buf.String())
				}
			}
			if tt.notWant != "" && strings.Contains(buf.String(), tt.notWant) {
				t.Errorf("expected output not to contain %q", tt.notWant)
			}
		})
	}
}
