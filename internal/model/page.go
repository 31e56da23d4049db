package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MaxPageSize is the largest page body the fetcher keeps.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Page is a snapshot of one fetched HTML document.
// It satisfies the detector's Document interface.
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Relative element URLs are
	// resolved against it.
	FinalURL string `json:"final_url,omitempty"`

	// Host is the hostname of FinalURL, without port.
	Host string `json:"host"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the document <title>.
	Title string `json:"title,omitempty"`

	// Scripts holds <script src> elements.
	Scripts []Element `json:"scripts,omitempty"`

	// Iframes holds <iframe src> elements.
	Iframes []Element `json:"iframes,omitempty"`

	// Images holds <img src> elements.
	Images []Element `json:"images,omitempty"`

	// Anchors holds <a href> elements with their visible text.
	Anchors []Element `json:"anchors,omitempty"`

	// Cookies holds the names of cookies set by the response.
	// Values are never stored.
	Cookies []string `json:"cookies,omitempty"`

	// Raw is the response body, at most MaxPageSize bytes.
	Raw []byte `json:"-"`

	// Hash is the hex SHA3-256 digest of Raw.
	Hash string `json:"hash,omitempty"`
}

// Element is an HTML element that references another resource.
type Element struct {
	// Source is the resolved src or href attribute. Anything that could not
	// be resolved is kept as written.
	Source string `json:"source"`

	// Text is the element's trimmed inner text (anchors only).
	Text string `json:"text,omitempty"`
}

// Hostname returns the page's hostname.
func (p *Page) Hostname() string {
	return p.Host
}

// Sources returns the src attributes of every element of the given kind,
// in document order.
func (p *Page) Sources(kind Source) []string {
	var elems []Element
	switch kind {
	case SourceScript:
		elems = p.Scripts
	case SourceIframe:
		elems = p.Iframes
	case SourceImage:
		elems = p.Images
	default:
		return nil
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Source
	}
	return out
}

// ComputeHash sets Hash from Raw. An empty body has an empty hash.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// IsHTML reports whether the response declared an HTML content type.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// Truncate cuts Raw to MaxPageSize.
func (p *Page) Truncate() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
