package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/privacypulse/internal/model"
)

// policyKeywords mark an anchor as a privacy policy link when its text
// contains any of them, case-insensitively.
var policyKeywords = []string{"privacy", "legal", "policy"}

// Override replaces a discovered policy URL that matches Pattern with URL.
// Some sites link to session-specific or script-rendered pages that the
// backend cannot read; an override points it at the canonical policy.
type Override struct {
	Pattern *regexp.Regexp
	URL     string
}

// NewOverride compiles an override.
func NewOverride(pattern, replacement string) (Override, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Override{}, fmt.Errorf("invalid override pattern %q: %w", pattern, err)
	}
	return Override{Pattern: re, URL: replacement}, nil
}

// DefaultOverrides returns the built-in overrides.
func DefaultOverrides() []Override {
	return []Override{
		{Pattern: regexp.MustCompile(`grok\.com/c/`), URL: "https://x.ai/legal"},
		{Pattern: regexp.MustCompile(`flipkart\.com`), URL: "https://www.flipkart.com/pages/privacypolicy"},
	}
}

// FindPolicyLink returns the policy URL of page: the href of the first
// anchor whose text mentions privacy, legal or policy, rewritten by each
// matching override in turn. It returns ErrNoPolicyLink when the first
// such anchor is missing or has no href.
func FindPolicyLink(page *model.Page, overrides []Override) (string, error) {
	var link string
	found := false
	for _, a := range page.Anchors {
		text := strings.ToLower(a.Text)
		for _, k := range policyKeywords {
			if strings.Contains(text, k) {
				link, found = a.Source, true
				break
			}
		}
		if found {
			break
		}
	}
	if link == "" {
		return "", ErrNoPolicyLink
	}
	return ApplyOverrides(link, overrides), nil
}

// ApplyOverrides rewrites link with every override whose pattern matches
// the current value, in order.
func ApplyOverrides(link string, overrides []Override) string {
	for _, o := range overrides {
		if o.Pattern != nil && o.Pattern.MatchString(link) {
			link = o.URL
		}
	}
	return link
}
