package detector

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/nao1215/privacypulse/internal/model"
)

// Document is the read-only view of a page the detector needs.
// *model.Page implements it.
type Document interface {
	// Hostname returns the page's own hostname.
	Hostname() string

	// Sources returns the src attributes of every element of the given
	// kind, in document order.
	Sources(kind model.Source) []string
}

// DefaultAnalyticsKeywords are the domain substrings that classify a
// tracker as analytics.
var DefaultAnalyticsKeywords = []string{"google", "facebook", "doubleclick", "ads", "pixel"}

// unknownName is the last-resort tracker name.
const unknownName = "unknown"

// Detector extracts trackers from documents. It holds no per-document
// state and is safe for concurrent use.
type Detector struct {
	keywords []string
	logger   *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithAnalyticsKeywords adds domain keywords that classify a tracker as
// analytics. The default keywords stay in effect.
func WithAnalyticsKeywords(keywords ...string) Option {
	return func(d *Detector) {
		for _, k := range keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				d.keywords = append(d.keywords, k)
			}
		}
	}
}

// WithLogger sets the logger that receives skipped elements.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New returns a Detector with the default keyword set.
func New(opts ...Option) *Detector {
	d := &Detector{
		keywords: append([]string(nil), DefaultAnalyticsKeywords...),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// page holds the normalized identity of the scanned document.
type page struct {
	host  string
	label string
}

// Detect returns the unique trackers embedded in doc. The result is never
// nil; a document without third-party resources yields an empty slice.
func (d *Detector) Detect(doc Document) []model.TrackerRecord {
	host := strings.ToLower(doc.Hostname())
	self := page{host: host, label: firstLabel(strings.TrimPrefix(host, "www."))}

	seen := make(map[string]struct{})
	trackers := make([]model.TrackerRecord, 0)

	for _, kind := range model.DetectionOrder {
		for _, raw := range doc.Sources(kind) {
			rec, ok := d.examine(raw, kind, self)
			if !ok {
				continue
			}
			key := rec.Name + ":" + rec.Domain
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			trackers = append(trackers, rec)
		}
	}
	return trackers
}

// examine turns one element URL into a tracker record, or reports false
// when the element is skipped.
func (d *Detector) examine(raw string, kind model.Source, self page) (model.TrackerRecord, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.TrackerRecord{}, false
	}

	domain, parsed := hostOf(raw)
	if domain == "" {
		d.skip(raw, kind, "no hostname")
		return model.TrackerRecord{}, false
	}
	if domain == self.host {
		return model.TrackerRecord{}, false
	}

	var name string
	if parsed {
		name = firstLabel(strings.TrimPrefix(domain, "www."))
		if name == self.label {
			d.skip(raw, kind, "same-site subdomain")
			return model.TrackerRecord{}, false
		}
		if name == "" {
			name = unknownName
		}
	} else {
		name = fallbackName(raw, domain)
	}

	return model.TrackerRecord{
		Name:     name,
		Category: d.classify(domain),
		Domain:   domain,
		Source:   kind,
		Blocked:  false,
	}, true
}

func (d *Detector) classify(domain string) model.Category {
	for _, k := range d.keywords {
		if strings.Contains(domain, k) {
			return model.CategoryAnalytics
		}
	}
	return model.CategoryUnknown
}

func (d *Detector) skip(raw string, kind model.Source, reason string) {
	if d.logger == nil {
		return
	}
	d.logger.Debug("skipped element", "source", string(kind), "src", raw, "reason", reason)
}

// hostOf returns the lowercased hostname of raw and whether it came from a
// successful URL parse. An absolute URL without a host (data:, about:,
// javascript:) yields "". When raw does not parse as an absolute URL, the
// third "/"-separated segment of raw is used instead.
func hostOf(raw string) (string, bool) {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return strings.ToLower(u.Hostname()), true
	}
	parts := strings.Split(raw, "/")
	if len(parts) < 3 {
		return "", false
	}
	return strings.ToLower(parts[2]), false
}

// fallbackName names a tracker whose URL did not parse: the last path
// segment without its query when that segment does not contain the
// domain, else the domain's first label, else "unknown".
func fallbackName(raw, domain string) string {
	parts := strings.Split(raw, "/")
	last, _, _ := strings.Cut(parts[len(parts)-1], "?")
	if last != "" && !strings.Contains(last, domain) {
		return last
	}
	if label := firstLabel(domain); label != "" {
		return label
	}
	return unknownName
}

func firstLabel(host string) string {
	label, _, _ := strings.Cut(host, ".")
	return label
}
