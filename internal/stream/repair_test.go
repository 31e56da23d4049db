package stream

import (
	"encoding/json"
	"testing"
)

func TestRepair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		want        string
		wantChanged bool
		wantValid   bool
	}{
		{name: "missing brace", input: `{"score":82,"summary":"ok"`, want: `{"score":82,"summary":"ok"}`, wantChanged: true, wantValid: true},
		{name: "missing bracket and brace", input: `{"bullets":["a"`, want: `{"bullets":["a"]}`, wantChanged: true, wantValid: true},
		{name: "array closed, object open", input: `{"bullets":["a"]`, want: `{"bullets":["a"]}`, wantChanged: true, wantValid: true},
		{name: "object inside open array", input: `{"risks":[{"t":1}`, want: `{"risks":[{"t":1}]}`, wantChanged: true, wantValid: true},
		{name: "bracket inside string is ignored", input: `{"summary":"see [1"`, want: `{"summary":"see [1"}`, wantChanged: true, wantValid: true},
		{name: "escaped quote", input: `{"summary":"a \"[\" b"`, want: `{"summary":"a \"[\" b"}`, wantChanged: true, wantValid: true},
		{name: "trailing whitespace", input: "{\"a\":1\n", want: `{"a":1}`, wantChanged: true, wantValid: true},
		{name: "already closed", input: `{"a":1}`, want: `{"a":1}`, wantChanged: false, wantValid: true},
		{name: "plain text", input: "Privacy policy loading...", want: "Privacy policy loading...}", wantChanged: true, wantValid: false},
		{name: "cut inside string stays broken", input: `{"summary":"o`, want: `{"summary":"o}`, wantChanged: true, wantValid: false},
		{name: "two open objects stay broken", input: `{"a":{"b":1`, want: `{"a":{"b":1}`, wantChanged: true, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, changed := Repair(tt.input)
			if got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if json.Valid([]byte(got)) != tt.wantValid {
				t.Errorf("valid = %v, want %v", !tt.wantValid, tt.wantValid)
			}
		})
	}
}

func TestDecodeSummary(t *testing.T) {
	t.Parallel()

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		if _, ok := DecodeSummary([]byte(`{"a":`), "raw"); ok {
			t.Error("expected failure")
		}
	})

	t.Run("null", func(t *testing.T) {
		t.Parallel()
		if _, ok := DecodeSummary([]byte(` null `), "raw"); ok {
			t.Error("expected failure for null")
		}
	})

	t.Run("non-object uses defaults and raw text", func(t *testing.T) {
		t.Parallel()
		s, ok := DecodeSummary([]byte(`[1,2,3]`), " raw text ")
		if !ok {
			t.Fatal("expected success")
		}
		if s.Summary != "raw text" || s.Score != 0 || s.Tone != "unknown" || s.Bullets == nil {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("missing summary uses raw text", func(t *testing.T) {
		t.Parallel()
		s, ok := DecodeSummary([]byte(`{"score":3}`), `{"score":3}`)
		if !ok || s.Summary != `{"score":3}` || s.Score != 3 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("null summary uses raw text", func(t *testing.T) {
		t.Parallel()
		s, _ := DecodeSummary([]byte(`{"summary":null}`), "raw")
		if s.Summary != "raw" {
			t.Errorf("Summary = %q", s.Summary)
		}
	})

	t.Run("empty summary is kept", func(t *testing.T) {
		t.Parallel()
		s, _ := DecodeSummary([]byte(`{"summary":""}`), "raw")
		if s.Summary != "" {
			t.Errorf("Summary = %q", s.Summary)
		}
	})

	t.Run("nested summary object", func(t *testing.T) {
		t.Parallel()
		s, ok := DecodeSummary([]byte(`{"summary":{"summary":"Privacy & Terms Privacy & Terms inner"},"score":7}`), "raw")
		if !ok || s.Summary != "Privacy & Terms inner" || s.Score != 7 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		t.Parallel()
		s, ok := DecodeSummary([]byte(`{"summary":"x","features":{"a":1},"raw_policy_text":"..."}`), "raw")
		if !ok || s.Summary != "x" {
			t.Errorf("unexpected summary %+v", s)
		}
	})
}
