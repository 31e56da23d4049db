package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Source is the kind of embedded element a tracker was found in.
type Source string

const (
	// SourceScript is a <script src="..."> element.
	SourceScript Source = "script"
	// SourceIframe is an <iframe src="..."> element.
	SourceIframe Source = "iframe"
	// SourceImage is an <img src="..."> element, typically a tracking pixel.
	SourceImage Source = "img"
)

// DetectionOrder is the order in which element kinds are examined.
// Deduplication keeps the first occurrence, so the order is observable.
var DetectionOrder = []Source{SourceScript, SourceIframe, SourceImage}

// Category classifies a tracker.
type Category string

const (
	// CategoryAnalytics marks trackers whose domain matches a known
	// advertising or analytics keyword.
	CategoryAnalytics Category = "Analytics"
	// CategoryUnknown marks every other third-party resource.
	CategoryUnknown Category = "Unknown"
)

// TrackerRecord is one third-party tracker.
//
// Records come from two places: the local detector, which fills every
// field, and the scan backend, which usually sends only name and domain
// (and sometimes a bare string).
type TrackerRecord struct {
	// Name is a short human name such as "google" or "connect".
	Name string `json:"name"`

	// Category is the tracker classification.
	Category Category `json:"category,omitempty"`

	// Domain is the lowercased hostname the resource is loaded from.
	// Backend records may omit it.
	Domain string `json:"domain,omitempty"`

	// Source is the element kind the tracker was found in.
	// Empty for backend records.
	Source Source `json:"source,omitempty"`

	// Blocked reports whether the tracker was blocked. Detection never
	// blocks anything, so locally detected records are always false.
	Blocked bool `json:"blocked"`
}

// Key returns the identity used to deduplicate and merge trackers:
// lowercased name, a colon, then the lowercased domain or, when the
// domain is empty, the lowercased name again.
//
//	TrackerRecord{Name: "Google", Domain: "www.google.com"}.Key() // "google:www.google.com"
//	TrackerRecord{Name: "Hotjar"}.Key()                            // "hotjar:hotjar"
func (t TrackerRecord) Key() string {
	name := strings.ToLower(t.Name)
	domain := strings.ToLower(t.Domain)
	if domain == "" {
		domain = name
	}
	return name + ":" + domain
}

// errTrackerShape is returned for tracker items that are neither a string
// nor an object.
var errTrackerShape = errors.New("tracker item must be a string or an object")

// UnmarshalJSON accepts an object or a bare string. A string becomes a
// record with only Name set.
func (t *TrackerRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errTrackerShape
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*t = TrackerRecord{Name: name}
		return nil
	case '{':
		type plain TrackerRecord
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*t = TrackerRecord(p)
		return nil
	default:
		return errTrackerShape
	}
}

// decodeTrackers decodes a JSON array of tracker items, skipping items
// that do not decode. A value that is not an array yields an empty list.
func decodeTrackers(data json.RawMessage) []TrackerRecord {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return []TrackerRecord{}
	}
	out := make([]TrackerRecord, 0, len(items))
	for _, item := range items {
		var rec TrackerRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}
