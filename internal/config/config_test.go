package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q, want %q", cfg.APIBase, DefaultAPIBase)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.MaxBodySize != 5*1024*1024 {
		t.Errorf("MaxBodySize = %d, want 5MB", cfg.MaxBodySize)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.OneShot || cfg.UseTor || cfg.RespectRobots {
		t.Error("streaming, direct and robots-agnostic should be the defaults")
	}
	if cfg.DBDir != XDGDataDir() {
		t.Errorf("DBDir = %q, want %q", cfg.DBDir, XDGDataDir())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "relative api base", modify: func(c *Config) { c.APIBase = "/api" }, wantErr: ErrInvalidAPIBase},
		{name: "ftp api base", modify: func(c *Config) { c.APIBase = "ftp://example.com" }, wantErr: ErrInvalidAPIBase},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative batch size", modify: func(c *Config) { c.BatchSize = -1 }, wantErr: ErrInvalidBatchSize},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "valid proxy", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }},
		{name: "proxy without port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1" }, wantErr: ErrInvalidProxyAddress},
		{
			name:    "proxy and tor",
			modify:  func(c *Config) { c.ProxyAddress, c.UseTor = "127.0.0.1:9050", true },
			wantErr: ErrConflictingProxy,
		},
		{
			name:    "override with bad regexp",
			modify:  func(c *Config) { c.PolicyOverrides = []PolicyOverride{{Pattern: "(", URL: "https://x"}} },
			wantErr: ErrInvalidPolicyOverride,
		},
		{
			name:    "override without url",
			modify:  func(c *Config) { c.PolicyOverrides = []PolicyOverride{{Pattern: "example"}} },
			wantErr: ErrInvalidPolicyOverride,
		},
		{
			name: "site with relative policy url",
			modify: func(c *Config) {
				c.SiteConfigs = &File{Sites: map[string]SiteConfig{"example.com": {PolicyURL: "/privacy"}}}
			},
			wantErr: ErrInvalidPolicyOverride,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTargets(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("no targets: %v", err)
	}
	cfg.Targets = []string{"  "}
	if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("blank target: %v", err)
	}
	cfg.Targets = []string{"example.com"}
	if err := cfg.ValidateTargets(); err != nil {
		t.Errorf("valid target: %v", err)
	}
}

func TestConfigApplyEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "unset keeps default", env: map[string]string{}, want: DefaultAPIBase},
		{name: "blank keeps default", env: map[string]string{EnvAPIBase: "  "}, want: DefaultAPIBase},
		{name: "set overrides", env: map[string]string{EnvAPIBase: " http://localhost:8000 "}, want: "http://localhost:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.ApplyEnv(func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})
			if cfg.APIBase != tt.want {
				t.Errorf("APIBase = %q, want %q", cfg.APIBase, tt.want)
			}
		})
	}
}

func TestConfigAPIEndpoint(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.APIBase = "http://localhost:8000/"
	if got := cfg.APIEndpoint("/api/scan/"); got != "http://localhost:8000/api/scan/" {
		t.Errorf("APIEndpoint = %q", got)
	}
}

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	f := &File{
		Defaults: SiteConfig{
			Cookie:  "consent=yes",
			Headers: map[string]string{"Accept-Language": "en"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Cookie:    "session=abc",
				Headers:   map[string]string{"X-Audit": "1"},
				PolicyURL: "https://example.com/legal/privacy",
			},
		},
	}

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		got := f.GetSiteConfig("other.org")
		if got.Cookie != "consent=yes" || got.PolicyURL != "" {
			t.Errorf("got %+v", got)
		}
		if got.Headers["Accept-Language"] != "en" {
			t.Errorf("default header missing: %+v", got.Headers)
		}
	})

	t.Run("site entry overrides and merges", func(t *testing.T) {
		t.Parallel()

		got := f.GetSiteConfig("Example.COM")
		if got.Cookie != "session=abc" {
			t.Errorf("Cookie = %q", got.Cookie)
		}
		if got.PolicyURL != "https://example.com/legal/privacy" {
			t.Errorf("PolicyURL = %q", got.PolicyURL)
		}
		if got.Headers["Accept-Language"] != "en" || got.Headers["X-Audit"] != "1" {
			t.Errorf("Headers = %v", got.Headers)
		}
	})

	t.Run("www host falls back to bare entry", func(t *testing.T) {
		t.Parallel()

		if got := f.GetSiteConfig("www.example.com"); got.Cookie != "session=abc" {
			t.Errorf("Cookie = %q", got.Cookie)
		}
	})

	t.Run("defaults are not mutated", func(t *testing.T) {
		t.Parallel()

		_ = f.GetSiteConfig("example.com")
		if _, ok := f.Defaults.Headers["X-Audit"]; ok {
			t.Error("site header leaked into defaults")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `api: http://localhost:8000
timeout: 30s
respectRobots: true
analyticsKeywords:
  - hotjar
policyOverrides:
  - pattern: "app\\.example\\.com/session/"
    url: https://example.com/privacy
sites:
  Shop.Example.COM:
    cookie: "session=abc"
    headers:
      X-Audit: "1"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile: %v", err)
		}
		if f.API != "http://localhost:8000" || f.Timeout != 30*time.Second || !f.RespectRobots {
			t.Errorf("scalars = %+v", f)
		}
		if len(f.PolicyOverrides) != 1 || f.PolicyOverrides[0].URL != "https://example.com/privacy" {
			t.Errorf("PolicyOverrides = %+v", f.PolicyOverrides)
		}
		if _, ok := f.Sites["shop.example.com"]; !ok {
			t.Errorf("site keys should be lowercased: %v", f.Sites)
		}

		cfg := NewConfig()
		cfg.ApplyFile(f)
		if cfg.APIBase != "http://localhost:8000" || cfg.Timeout != 30*time.Second {
			t.Errorf("ApplyFile did not copy scalars: %+v", cfg)
		}
		if len(cfg.AnalyticsKeywords) != 1 || cfg.AnalyticsKeywords[0] != "hotjar" {
			t.Errorf("AnalyticsKeywords = %v", cfg.AnalyticsKeywords)
		}
		headers, cookie := cfg.HeadersFor("shop.example.com")
		if cookie != "session=abc" || headers["X-Audit"] != "1" {
			t.Errorf("HeadersFor = %v, %q", headers, cookie)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := LoadConfigFile(path)
		if err == nil || !strings.Contains(err.Error(), "failed to parse") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("empty file has a site map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile: %v", err)
		}
		if f.Sites == nil {
			t.Error("Sites should be non-nil")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("api: http://localhost\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{XDGDataDir(), XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%q should end in %q", dir, AppName)
		}
	}
}
