package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nao1215/privacypulse/internal/crawler"
	"github.com/nao1215/privacypulse/internal/detector"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/stream"
)

// Step names.
const (
	StepFetchPage      = "fetch_page"
	StepPolicyLink     = "policy_link"
	StepBackendScan    = "backend_scan"
	StepDetectTrackers = "detect_trackers"
)

// WarnPolicyFallback is recorded when a streamed scan falls back to the
// page itself because no policy link was found.
const WarnPolicyFallback = "No privacy policy link found; the page itself was sent for analysis."

// PageFetcher downloads a page snapshot.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*model.Page, error)
}

// FetchPageStep downloads the target page into the report.
type FetchPageStep struct {
	fetcher PageFetcher
}

// NewFetchPageStep returns a FetchPageStep.
func NewFetchPageStep(fetcher PageFetcher) *FetchPageStep {
	return &FetchPageStep{fetcher: fetcher}
}

// Name implements Step.
func (s *FetchPageStep) Name() string { return StepFetchPage }

// Do implements Step. A failure leaves the report without a document.
func (s *FetchPageStep) Do(ctx context.Context, report *model.ScanReport) error {
	if strings.TrimSpace(report.Target) == "" {
		return ErrEmptyTarget
	}
	page, err := s.fetcher.Fetch(ctx, report.Target)
	if err != nil {
		return err
	}
	report.Document = page
	report.Page = model.NewPageInfo(page)
	return nil
}

// PolicyResolver returns a fixed policy URL for a host, or "".
type PolicyResolver interface {
	PolicyURLFor(host string) string
}

// PolicyLinkStep decides which URL the backend analyzes.
//
// A configured per-host policy URL wins. Otherwise the first policy anchor
// of the fetched page is used, rewritten by the overrides. Without a page
// the target itself is used.
//
// When the page has no policy link, a one-shot scan stores the
// no-policy-link summary and halts, while a streamed scan falls back to the
// target with a warning.
type PolicyLinkStep struct {
	overrides []crawler.Override
	resolver  PolicyResolver
	logger    *slog.Logger
}

// PolicyLinkOption configures a PolicyLinkStep.
type PolicyLinkOption func(*PolicyLinkStep)

// WithOverrides replaces the built-in policy overrides.
func WithOverrides(overrides []crawler.Override) PolicyLinkOption {
	return func(s *PolicyLinkStep) {
		s.overrides = overrides
	}
}

// WithPolicyResolver sets the per-host policy URL source.
func WithPolicyResolver(r PolicyResolver) PolicyLinkOption {
	return func(s *PolicyLinkStep) {
		s.resolver = r
	}
}

// WithPolicyLogger sets the step's logger.
func WithPolicyLogger(logger *slog.Logger) PolicyLinkOption {
	return func(s *PolicyLinkStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPolicyLinkStep returns a PolicyLinkStep using crawler.DefaultOverrides.
func NewPolicyLinkStep(opts ...PolicyLinkOption) *PolicyLinkStep {
	s := &PolicyLinkStep{
		overrides: crawler.DefaultOverrides(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Step.
func (s *PolicyLinkStep) Name() string { return StepPolicyLink }

// Do implements Step.
func (s *PolicyLinkStep) Do(_ context.Context, report *model.ScanReport) error {
	if s.resolver != nil {
		if u := s.resolver.PolicyURLFor(targetHost(report)); u != "" {
			report.PolicyURL = u
			return nil
		}
	}

	if report.Document == nil {
		report.PolicyURL = crawler.ApplyOverrides(report.Target, s.overrides)
		return nil
	}

	link, err := crawler.FindPolicyLink(report.Document, s.overrides)
	if err == nil {
		report.PolicyURL = link
		s.logger.Debug("policy link found", "policy", link)
		return nil
	}
	if !errors.Is(err, crawler.ErrNoPolicyLink) {
		return err
	}

	if report.Mode == model.ModeOneShot {
		report.Summary = model.NewNoPolicyLinkSummary(report.Target)
		return Halt(err)
	}
	report.PolicyURL = crawler.ApplyOverrides(report.Target, s.overrides)
	report.AddWarning(WarnPolicyFallback)
	return nil
}

func targetHost(report *model.ScanReport) string {
	if report.Document != nil {
		if h := report.Document.Hostname(); h != "" {
			return h
		}
	}
	u, err := crawler.NormalizeURL(report.Target)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Scanner is the backend API used by BackendScanStep.
type Scanner interface {
	StreamScan(ctx context.Context, policyURL string, obs stream.Observer) stream.Result
	Scan(ctx context.Context, policyURL string) (model.ScanSummary, error)
}

// BackendScanStep asks the backend for the policy summary in the report's
// mode.
//
// A streamed scan halts the pipeline on a network failure. A one-shot scan
// keeps the backend-failed summary and lets tracker detection run, as the
// browser content script does.
type BackendScanStep struct {
	scanner  Scanner
	observer stream.Observer
}

// NewBackendScanStep returns a BackendScanStep. obs receives streamed
// publications and may be nil.
func NewBackendScanStep(scanner Scanner, obs stream.Observer) *BackendScanStep {
	return &BackendScanStep{scanner: scanner, observer: obs}
}

// Name implements Step.
func (s *BackendScanStep) Name() string { return StepBackendScan }

// Do implements Step.
func (s *BackendScanStep) Do(ctx context.Context, report *model.ScanReport) error {
	policyURL := report.PolicyURL
	if policyURL == "" {
		policyURL = report.Target
		report.PolicyURL = policyURL
	}

	if report.Mode == model.ModeOneShot {
		summary, err := s.scanner.Scan(ctx, policyURL)
		report.Summary = summary
		if err != nil {
			report.Failed = true
			report.Outcome = model.OutcomeNetworkFailure
			return err
		}
		report.Outcome = model.OutcomeJSON
		return nil
	}

	result := s.scanner.StreamScan(ctx, policyURL, s.observer)
	report.Summary = result.Summary
	report.Outcome = result.Outcome
	report.AddWarning(result.Warning)

	switch result.Outcome {
	case model.OutcomeCancelled:
		report.Cancelled = true
		return result.Err
	case model.OutcomeNetworkFailure:
		report.Failed = true
		return Halt(result.Err)
	default:
		return nil
	}
}

// DetectTrackersStep runs the detector over the fetched page and merges the
// result into the summary's tracker list.
type DetectTrackersStep struct {
	detector *detector.Detector
	logger   *slog.Logger
}

// NewDetectTrackersStep returns a DetectTrackersStep. A nil detector means
// detector.New().
func NewDetectTrackersStep(d *detector.Detector, logger *slog.Logger) *DetectTrackersStep {
	if d == nil {
		d = detector.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetectTrackersStep{detector: d, logger: logger}
}

// Name implements Step.
func (s *DetectTrackersStep) Name() string { return StepDetectTrackers }

// Do implements Step. Without a fetched page it does nothing; the fetch
// failure is already on the report.
func (s *DetectTrackersStep) Do(_ context.Context, report *model.ScanReport) error {
	if report.Document == nil {
		s.logger.Debug("skipping tracker detection", "target", report.Target, "reason", ErrNoDocument)
		return nil
	}

	merged, added := s.detector.DetectAndMerge(report.Document, report.Summary.Trackers)
	report.AddedTrackers = added
	report.Summary.Trackers = merged
	return nil
}

// Options configures NewScanPipeline.
type Options struct {
	Fetcher  PageFetcher
	Scanner  Scanner
	Detector *detector.Detector
	Observer stream.Observer

	Overrides []crawler.Override
	Resolver  PolicyResolver
	Logger    *slog.Logger
}

// NewScanPipeline returns the standard four-step pipeline.
func NewScanPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policyOpts := []PolicyLinkOption{WithPolicyLogger(logger)}
	if opts.Overrides != nil {
		policyOpts = append(policyOpts, WithOverrides(opts.Overrides))
	}
	if opts.Resolver != nil {
		policyOpts = append(policyOpts, WithPolicyResolver(opts.Resolver))
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewFetchPageStep(opts.Fetcher),
		NewPolicyLinkStep(policyOpts...),
		NewBackendScanStep(opts.Scanner, opts.Observer),
		NewDetectTrackersStep(opts.Detector, logger),
	)
	return p
}
