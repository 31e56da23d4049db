package config

import (
	"strings"
	"time"
)

// SiteConfig holds settings for one audited host.
type SiteConfig struct {
	// Cookie is sent with every request to the host, in "a=1; b=2" form.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers for the host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// PolicyURL replaces whatever policy link is found on the host's pages.
	PolicyURL string `yaml:"policyURL,omitempty"`
}

// File is the layout of the .privacypulse configuration file.
type File struct {
	API               string           `yaml:"api,omitempty"`
	Timeout           time.Duration    `yaml:"timeout,omitempty"`
	UserAgent         string           `yaml:"userAgent,omitempty"`
	MaxBodySize       int64            `yaml:"maxBodySize,omitempty"`
	Proxy             string           `yaml:"proxy,omitempty"`
	Tor               bool             `yaml:"tor,omitempty"`
	RespectRobots     bool             `yaml:"respectRobots,omitempty"`
	DBDir             string           `yaml:"dbDir,omitempty"`
	AnalyticsKeywords []string         `yaml:"analyticsKeywords,omitempty"`
	PolicyOverrides   []PolicyOverride `yaml:"policyOverrides,omitempty"`

	// Defaults apply to every host unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps lowercase host names to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the defaults merged with the entry for host. A host
// without an entry of its own falls back to the entry for its "www."-less
// form.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{
		Cookie:    cf.Defaults.Cookie,
		PolicyURL: cf.Defaults.PolicyURL,
	}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	host = strings.ToLower(host)
	site, ok := cf.Sites[host]
	if !ok {
		site, ok = cf.Sites[strings.TrimPrefix(host, "www.")]
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.PolicyURL != "" {
		result.PolicyURL = site.PolicyURL
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
