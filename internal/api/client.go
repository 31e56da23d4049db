package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/stream"
)

// Backend routes.
const (
	ScanPath      = "/api/scan/"
	HistoryPath   = "/api/dashboard/history"
	AwarenessPath = "/awareness/"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "PrivacyPulse/1.0"

// maxResponseSize caps one-shot and history bodies.
const maxResponseSize = 10 * 1024 * 1024

// Client talks to one scan backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	parser    *stream.Parser
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithParser sets the parser used by StreamScan.
func WithParser(p *stream.Parser) Option {
	return func(c *Client) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client for the backend at baseURL. A nil httpClient means
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		base:      u,
		http:      httpClient,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.parser == nil {
		c.parser = stream.New(stream.WithLogger(c.logger))
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// StreamScan submits policyURL and feeds the answer to the parser as it
// arrives. obs may be nil. Transport errors become network-failure results.
func (c *Client) StreamScan(ctx context.Context, policyURL string, obs stream.Observer) stream.Result {
	req, err := c.scanRequest(ctx, policyURL, "application/json, text/plain;q=0.9, */*;q=0.1")
	if err != nil {
		return c.parser.Fail(obs, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stream.Result{Summary: model.NewScanSummary(), Outcome: model.OutcomeCancelled, Err: ctxErr}
		}
		return c.parser.Fail(obs, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("scan response received",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"policy", policyURL,
	)
	return c.parser.Parse(ctx, stream.FromHTTP(resp), obs)
}

// Scan submits policyURL and decodes the whole answer as JSON. On any
// failure it returns the backend-failed summary for policyURL together
// with an error wrapping ErrBackendFailed.
func (c *Client) Scan(ctx context.Context, policyURL string) (model.ScanSummary, error) {
	summary, err := c.scan(ctx, policyURL)
	if err != nil {
		c.logger.Warn("backend scan failed", "policy", policyURL, "error", err)
		return model.NewBackendFailedSummary(policyURL), fmt.Errorf("%w: %w", ErrBackendFailed, err)
	}
	return summary, nil
}

func (c *Client) scan(ctx context.Context, policyURL string) (model.ScanSummary, error) {
	req, err := c.scanRequest(ctx, policyURL, "application/json")
	if err != nil {
		return model.ScanSummary{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.ScanSummary{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ScanSummary{}, &stream.StatusError{StatusCode: resp.StatusCode}
	}

	var summary model.ScanSummary
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&summary); err != nil {
		return model.ScanSummary{}, fmt.Errorf("failed to decode scan response: %w", err)
	}
	summary.Summary = stream.CleanRepetitiveText(summary.Summary)
	summary.Normalize()
	return summary, nil
}

// History lists the most recent backend scans, newest first. limit <= 0
// leaves the backend default. Entries that are not objects are skipped, and
// a body holding a single object is a one-entry list.
func (c *Client) History(ctx context.Context, limit int) ([]model.ScanSummary, error) {
	endpoint := c.endpoint(HistoryPath)
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}

	var items []json.RawMessage
	if trimmed := bytes.TrimSpace(body); bytes.HasPrefix(trimmed, []byte("{")) {
		items = []json.RawMessage{trimmed}
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to decode history: %w", ErrHistoryUnavailable, err)
	}

	summaries := make([]model.ScanSummary, 0, len(items))
	for i, item := range items {
		var s model.ScanSummary
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			c.logger.Debug("skipping history entry", "index", i)
			continue
		}
		if err := json.Unmarshal(item, &s); err != nil {
			c.logger.Debug("skipping history entry", "index", i, "error", err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Awareness returns the backend's privacy education content.
func (c *Client) Awareness(ctx context.Context) (*model.Awareness, error) {
	body, err := c.get(ctx, c.endpoint(AwarenessPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAwarenessUnavailable, err)
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode awareness content: %w", ErrAwarenessUnavailable, err)
	}
	content := model.NewAwareness()
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, content); err != nil {
			return nil, fmt.Errorf("%w: failed to decode awareness content: %w", ErrAwarenessUnavailable, err)
		}
	}
	if content.Quiz == nil {
		content.Quiz = []model.QuizQuestion{}
	}
	if content.Leaderboard == nil {
		content.Leaderboard = []model.LeaderboardEntry{}
	}
	return content, nil
}

// get fetches endpoint and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &stream.StatusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

type scanRequest struct {
	URL string `json:"url"`
}

func (c *Client) scanRequest(ctx context.Context, policyURL, accept string) (*http.Request, error) {
	body, err := json.Marshal(scanRequest{URL: policyURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(ScanPath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, accept)
	return req, nil
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}
