package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is used for XDG directory paths.
	AppName = "privacypulse"

	// DefaultAPIBase is the hosted PrivacyPulse scan backend.
	DefaultAPIBase = "https://privacypulse-backend.onrender.com"

	// EnvAPIBase overrides the backend address when set.
	EnvAPIBase = "PRIVACYPULSE_API"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 90 * time.Second

	// DefaultBatchSize is the number of pipelines run at once.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies PrivacyPulse in HTTP requests.
	DefaultUserAgent = "PrivacyPulse/1.0 (+https://github.com/nao1215/privacypulse)"

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultTorStartupTimeout bounds embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultHistoryLimit is the number of history rows listed by default.
	DefaultHistoryLimit = 20
)

// Config holds all options for one PrivacyPulse invocation. It is built once
// by the CLI and passed down explicitly.
type Config struct {
	// APIBase is the scan backend base URL, without a trailing slash.
	APIBase string

	// Timeout is the per-request HTTP timeout. The parser itself has no
	// deadline.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps how many bytes of a page are read. Zero means the
	// default.
	MaxBodySize int64

	// ProxyAddress routes traffic through a SOCKS5 proxy when set.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes traffic through it.
	UseTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// RespectRobots makes the fetcher consult robots.txt before fetching.
	RespectRobots bool

	// OneShot decodes the backend response in one piece instead of
	// streaming partial summaries.
	OneShot bool

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of pipelines run concurrently.
	BatchSize int

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report there instead of stdout.
	ReportFile string

	// DBDir holds the SQLite database. Empty disables persistence.
	DBDir string

	// AnalyticsKeywords extends the built-in analytics domain keywords.
	AnalyticsKeywords []string

	// PolicyOverrides replace discovered policy links for matching pages.
	PolicyOverrides []PolicyOverride

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// SiteConfigs holds per-site settings from the configuration file.
	SiteConfigs *File

	// Targets are the site URLs to audit.
	Targets []string
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		APIBase:           DefaultAPIBase,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
		SiteConfigs:       &File{Sites: map[string]SiteConfig{}},
	}
}

// XDGDataDir returns the PrivacyPulse data directory, where the database
// lives.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the PrivacyPulse config directory, searched last for
// the configuration file.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies the values set in f over c. Sites and defaults replace
// c.SiteConfigs; overrides and keywords are appended.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.API != "" {
		c.APIBase = f.API
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize > 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.Tor {
		c.UseTor = true
	}
	if f.RespectRobots {
		c.RespectRobots = true
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	c.AnalyticsKeywords = append(c.AnalyticsKeywords, f.AnalyticsKeywords...)
	c.PolicyOverrides = append(c.PolicyOverrides, f.PolicyOverrides...)
	if f.Sites == nil {
		f.Sites = map[string]SiteConfig{}
	}
	c.SiteConfigs = f
}

// ApplyEnv applies environment overrides read through lookup, which has the
// signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIBase); ok && strings.TrimSpace(v) != "" {
		c.APIBase = strings.TrimSpace(v)
	}
}

// APIEndpoint joins path onto the backend base URL.
func (c *Config) APIEndpoint(path string) string {
	return strings.TrimRight(c.APIBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// Site returns the merged settings for host.
func (c *Config) Site(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}

// HeadersFor returns the configured headers and cookie for host.
func (c *Config) HeadersFor(host string) (map[string]string, string) {
	site := c.Site(host)
	return site.Headers, site.Cookie
}

// PolicyURLFor returns the configured policy URL for host, or "".
func (c *Config) PolicyURLFor(host string) string {
	return c.Site(host).PolicyURL
}

// Validate reports the first invalid setting. Targets are checked
// separately by ValidateTargets.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.APIBase); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIBase, c.APIBase)
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ProxyAddress != "" {
		if c.UseTor {
			return ErrConflictingProxy
		}
		if host, port, err := net.SplitHostPort(c.ProxyAddress); err != nil || host == "" || port == "" {
			return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.ProxyAddress)
		}
	}
	for _, o := range c.PolicyOverrides {
		if err := o.validate(); err != nil {
			return err
		}
	}
	if c.SiteConfigs != nil {
		for host, site := range c.SiteConfigs.Sites {
			if site.PolicyURL == "" {
				continue
			}
			if u, err := url.Parse(site.PolicyURL); err != nil || u.Host == "" {
				return fmt.Errorf("%w: site %q has policy URL %q", ErrInvalidPolicyOverride, host, site.PolicyURL)
			}
		}
	}
	return nil
}

// ValidateTargets returns ErrNoTarget when no target is set.
func (c *Config) ValidateTargets() error {
	for _, t := range c.Targets {
		if strings.TrimSpace(t) != "" {
			return nil
		}
	}
	return ErrNoTarget
}

// PolicyOverride replaces the discovered policy link of any page whose URL
// matches Pattern (a regular expression) with URL.
type PolicyOverride struct {
	Pattern string `yaml:"pattern"`
	URL     string `yaml:"url"`
}

func (o PolicyOverride) validate() error {
	if o.Pattern == "" || o.URL == "" {
		return fmt.Errorf("%w: pattern and url are required", ErrInvalidPolicyOverride)
	}
	if _, err := regexp.Compile(o.Pattern); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicyOverride, err)
	}
	return nil
}
