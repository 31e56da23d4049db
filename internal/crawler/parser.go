package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/privacypulse/internal/model"
)

// Parser extracts resource-bearing elements from an HTML document.
type Parser struct {
	// baseURL resolves relative src and href values.
	baseURL *url.URL
}

// ParseResult holds the elements of one document, in document order.
type ParseResult struct {
	Title   string
	Scripts []model.Element
	Iframes []model.Element
	Images  []model.Element
	Anchors []model.Element
}

// NewParser returns a Parser resolving URLs against baseURL. A nil baseURL
// leaves relative URLs as written.
func NewParser(baseURL *url.URL) *Parser {
	return &Parser{baseURL: baseURL}
}

// Parse reads an HTML document.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Scripts: p.sources(doc, "script[src]"),
		Iframes: p.sources(doc, "iframe[src]"),
		Images:  p.sources(doc, "img[src]"),
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href != "" {
			href = p.resolve(href)
		}
		result.Anchors = append(result.Anchors, model.Element{
			Source: href,
			Text:   strings.Join(strings.Fields(sel.Text()), " "),
		})
	})

	return result, nil
}

func (p *Parser) sources(doc *goquery.Document, selector string) []model.Element {
	var out []model.Element
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		out = append(out, model.Element{Source: p.resolve(src)})
	})
	return out
}

// resolve makes raw absolute. Values that do not parse are kept as
// written so that later stages can still inspect them.
func (p *Parser) resolve(raw string) string {
	if p.baseURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return p.baseURL.ResolveReference(ref).String()
}

func (r *ParseResult) apply(page *model.Page) {
	page.Title = r.Title
	page.Scripts = r.Scripts
	page.Iframes = r.Iframes
	page.Images = r.Images
	page.Anchors = r.Anchors
}
