package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSecureHandler_MasksCredentialKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "authorization header", key: "authorization", value: "Bearer abc.def", wantMask: true},
		{name: "mixed case key", key: "X-Api-Key", value: "k-123", wantMask: true},
		{name: "backend token fragment", key: "backend_token", value: "t-123", wantMask: true},
		{name: "proxy password fragment", key: "proxy_password", value: "hunter2", wantMask: true},
		{name: "session id", key: "session_id", value: "s-42", wantMask: true},
		{name: "score is kept", key: "score", value: "42", wantMask: false},
		{name: "classification is kept", key: "classification", value: "Medium Risk", wantMask: false},
		{name: "cache key is kept", key: "cache_key", value: "last_privacypulse_summary", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewSecureLogger(&buf, true).Info("msg", tt.key, tt.value)
			out := buf.String()

			if tt.wantMask {
				if strings.Contains(out, tt.value) {
					t.Errorf("value %q leaked: %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("expected %q in output: %s", MaskValue, out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("value %q missing from output: %s", tt.value, out)
			}
		})
	}
}

func TestRedactCookies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "cookie header", input: "_ga=GA1.2.3; sid=xyz", want: "_ga=***; sid=***"},
		{name: "set-cookie drops attributes", input: "id=42; Path=/; HttpOnly; SameSite=Lax", want: "id=***"},
		{name: "name without value", input: "flag", want: "flag"},
		{name: "empty", input: "", want: ""},
		{name: "stray separators", input: " a=1;; b=2 ;", want: "a=***; b=***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RedactCookies(tt.input); got != tt.want {
				t.Errorf("RedactCookies(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	t.Run("masks identifying parameters", func(t *testing.T) {
		t.Parallel()
		got := RedactURL("https://px.example.com/t.gif?uid=12345&page=home")
		if strings.Contains(got, "12345") {
			t.Errorf("uid leaked: %s", got)
		}
		if !strings.Contains(got, "page=home") {
			t.Errorf("non-identifying parameter dropped: %s", got)
		}
		if !strings.HasPrefix(got, "https://px.example.com/t.gif?") {
			t.Errorf("scheme, host or path changed: %s", got)
		}
	})

	t.Run("leaves plain URLs untouched", func(t *testing.T) {
		t.Parallel()
		raw := "https://example.com/privacy?lang=en"
		if got := RedactURL(raw); got != raw {
			t.Errorf("RedactURL(%q) = %q", raw, got)
		}
	})

	t.Run("leaves unparsable input untouched", func(t *testing.T) {
		t.Parallel()
		raw := "http://[::1"
		if got := RedactURL(raw); got != raw {
			t.Errorf("RedactURL(%q) = %q", raw, got)
		}
	})
}

func TestSecureHandler_CookieAndURLAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Debug("page fetched",
		"set-cookie", "_fbp=fb.1.999; Path=/",
		"src", "https://tracker.example.net/p?cid=visitor8842",
	)
	out := buf.String()

	if strings.Contains(out, "fb.1.999") || strings.Contains(out, "visitor8842") {
		t.Errorf("identifiers leaked: %s", out)
	}
	if !strings.Contains(out, "_fbp=***") {
		t.Errorf("cookie name should be kept: %s", out)
	}
	if !strings.Contains(out, "tracker.example.net") {
		t.Errorf("tracker host should be kept: %s", out)
	}
}

func TestSecureHandler_SecretLookingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"
	logger.Info("header", "value", jwt)

	if strings.Contains(buf.String(), jwt) {
		t.Errorf("JWT leaked: %s", buf.String())
	}
}

func TestSecureHandler_GroupsAndWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true).With("api_key", "k-1")
	logger.Info("request", slog.Group("headers", slog.String("authorization", "Basic dXNlcjpwYXNz")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["api_key"] != MaskValue {
		t.Errorf("api_key = %v, want mask", entry["api_key"])
	}
	headers, ok := entry["headers"].(map[string]any)
	if !ok {
		t.Fatalf("headers group missing: %v", entry)
	}
	if headers["authorization"] != MaskValue {
		t.Errorf("authorization = %v, want mask", headers["authorization"])
	}
}

func TestNewSecureLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "verbose logs debug", verbose: true, wantDebug: true},
		{name: "quiet hides debug", verbose: false, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, tt.verbose)
			logger.Debug("debug line")
			logger.Warn("warn line")

			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Errorf("debug present = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(buf.String(), "warn line") {
				t.Errorf("warn line missing")
			}
		})
	}
}

func TestNewSecureHandler_NilFallsBackToDefault(t *testing.T) {
	t.Parallel()

	h := NewSecureHandler(nil)
	if h.handler == nil {
		t.Fatal("expected default handler")
	}
}
