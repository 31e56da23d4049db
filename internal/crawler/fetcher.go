package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/privacypulse/internal/model"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// Fetcher downloads single pages.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	maxBodySize   int64
	respectRobots bool
	robots        *robotsCache
	logger        *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how much of a page body is read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithRespectRobots makes Fetch consult robots.txt first.
func WithRespectRobots(respect bool) FetcherOption {
	return func(f *Fetcher) {
		f.respectRobots = respect
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher returns a Fetcher that sends requests with client. The
// client carries the transport (direct, SOCKS5 or Tor) and the timeout.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: model.MaxPageSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.robots = newRobotsCache(client, f.userAgent)
	return f
}

// NormalizeURL validates a scan target. A missing scheme becomes https.
func NormalizeURL(target string) (*url.URL, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	u.Fragment = ""
	return u, nil
}

// Fetch downloads target and returns its snapshot. Non-2xx responses are
// returned as pages too; the caller decides what a status means.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*model.Page, error) {
	u, err := NormalizeURL(target)
	if err != nil {
		return nil, err
	}

	if f.respectRobots {
		allowed, err := f.robots.allowed(ctx, u)
		if err != nil {
			f.logger.Debug("robots.txt unavailable, continuing", "url", u.String(), "error", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, u.String())
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u.String(), err)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}

	page := &model.Page{
		URL:         u.String(),
		FinalURL:    final.String(),
		Host:        strings.ToLower(final.Hostname()),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
		Cookies:     cookieNames(resp),
	}
	page.Truncate()
	page.ComputeHash()

	if page.IsHTML() || page.ContentType == "" {
		result, err := NewParser(final).Parse(bytes.NewReader(body))
		if err != nil {
			f.logger.Debug("html parse failed", "url", page.FinalURL, "error", err)
		} else {
			result.apply(page)
		}
	}

	f.logger.Debug("page fetched",
		"url", page.FinalURL,
		"status", page.StatusCode,
		"scripts", len(page.Scripts),
		"iframes", len(page.Iframes),
		"images", len(page.Images),
		"set-cookie", strings.Join(resp.Header.Values("Set-Cookie"), "; "),
	)
	return page, nil
}

// cookieNames returns the distinct names of cookies set by resp.
func cookieNames(resp *http.Response) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range resp.Cookies() {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	return names
}
