package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/privacypulse/internal/model"
)

// User-facing warnings attached to degraded results.
const (
	WarnEmptyBody   = "Received empty or invalid response from server."
	WarnRepaired    = "Received incomplete JSON. The payload was repaired and may be missing fields."
	WarnMalformed   = "Received incomplete or malformed JSON. Displaying cleaned text."
	WarnIncomplete  = "Response appears incomplete."
	WarnFetchFailed = "An error occurred while fetching scan results."
)

// DefaultChunkSize is the size of each body read.
const DefaultChunkSize = 4096

// Result is the outcome of one parse.
type Result struct {
	// Summary is the final summary. After cancellation it is the last
	// published partial summary.
	Summary model.ScanSummary

	// Outcome is how the response was interpreted.
	Outcome model.Outcome

	// Warning is the user-facing warning, empty when none applies.
	Warning string

	// Err is set for network failures (wrapping ErrNetworkFailure) and
	// cancellation (the context error). Payload problems are never errors.
	Err error
}

// Snapshot returns the result as a final snapshot.
func (r Result) Snapshot() Snapshot {
	return Snapshot{
		Summary: r.Summary,
		Final:   true,
		Outcome: r.Outcome,
		Warning: r.Warning,
		Err:     r.Err,
	}
}

// Parser interprets scan responses.
type Parser struct {
	chunkSize int
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithChunkSize sets the size of each body read. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithLogger sets the parser's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads resp to the end and returns the interpreted summary. obs may
// be nil.
//
// Cancelling ctx stops reading after the chunk in flight. The result then
// carries the last partial summary, OutcomeCancelled and ctx's error, and
// obs receives nothing further.
func (p *Parser) Parse(ctx context.Context, resp Response, obs Observer) Result {
	if obs == nil {
		obs = nopObserver{}
	}
	if resp == nil {
		return p.Fail(obs, ErrNilResponse)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return p.Fail(obs, &StatusError{StatusCode: code})
	}

	body := resp.Body()
	if body == nil {
		return p.emptyBody(obs, resp)
	}

	isJSON := strings.Contains(strings.ToLower(resp.ContentType()), "application/json")
	partial := model.NewScanSummary()
	reader := transform.NewReader(body, unicode.UTF8.NewDecoder())
	buf := make([]byte, p.chunkSize)
	var text strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return p.cancelled(partial, err)
		}
		n, err := reader.Read(buf)
		if n > 0 {
			text.Write(buf[:n])
			partial.Summary = CleanRepetitiveText(text.String())
			obs.OnPartial(partial)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.cancelled(partial, ctxErr)
			}
			return p.Fail(obs, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return p.cancelled(partial, err)
	}

	result := p.interpret(text.String(), isJSON)
	p.logger.Debug("scan response interpreted", "outcome", result.Outcome.String(), "bytes", text.Len())
	obs.OnFinal(result)
	return result
}

// Stream runs Parse on a new goroutine and delivers every publication on
// the returned channel, which is closed after the final snapshot. On
// cancellation the channel is closed without a final snapshot.
func (p *Parser) Stream(ctx context.Context, resp Response) <-chan Snapshot {
	ch := make(chan Snapshot)
	go func() {
		defer close(ch)
		p.Parse(ctx, resp, chanObserver{ctx: ctx, ch: ch})
	}()
	return ch
}

func (p *Parser) interpret(text string, isJSON bool) Result {
	if !isJSON {
		result := Result{Outcome: model.OutcomePlainText, Summary: textSummary(text)}
		if !endsLikeSentence(result.Summary.Summary) {
			result.Warning = WarnIncomplete
		}
		return result
	}

	if s, ok := DecodeSummary([]byte(text), text); ok {
		return Result{Summary: s, Outcome: model.OutcomeJSON}
	}
	if fixed, changed := Repair(text); changed {
		if s, ok := DecodeSummary([]byte(fixed), text); ok {
			return Result{Summary: s, Outcome: model.OutcomeRepaired, Warning: WarnRepaired}
		}
	}
	return Result{Summary: textSummary(text), Outcome: model.OutcomeMalformed, Warning: WarnMalformed}
}

func (p *Parser) emptyBody(obs Observer, resp Response) Result {
	text, err := resp.Text()
	if err != nil {
		return p.Fail(obs, err)
	}
	if text == "" {
		text = model.NoDataText
	}
	result := Result{Summary: textSummary(text), Outcome: model.OutcomeEmptyBody, Warning: WarnEmptyBody}
	obs.OnFinal(result)
	return result
}

// Fail reports cause as a network failure: it publishes the error summary
// to obs, which may be nil, and returns it. Callers use it for failures
// that happen before a response exists.
func (p *Parser) Fail(obs Observer, cause error) Result {
	if obs == nil {
		obs = nopObserver{}
	}
	err := networkFailure(cause)
	p.logger.Warn("scan request failed", "error", err)
	result := Result{
		Summary: model.NewErrorSummary(),
		Outcome: model.OutcomeNetworkFailure,
		Warning: WarnFetchFailed,
		Err:     err,
	}
	obs.OnFinal(result)
	return result
}

func (p *Parser) cancelled(last model.ScanSummary, err error) Result {
	p.logger.Debug("scan response cancelled", "error", err)
	return Result{Summary: last, Outcome: model.OutcomeCancelled, Err: err}
}

func textSummary(text string) model.ScanSummary {
	s := model.NewScanSummary()
	s.Summary = CleanRepetitiveText(text)
	return s
}
