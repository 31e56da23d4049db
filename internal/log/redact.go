package log

import (
	"net/url"
	"regexp"
	"strings"
)

// MaskValue replaces values that must not be logged.
const MaskValue = "***REDACTED***"

// cookieMask replaces individual cookie values.
const cookieMask = "***"

// credentialKeys are attribute keys whose values are always masked.
var credentialKeys = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"api_key":             {},
	"apikey":              {},
	"api-key":             {},
	"password":            {},
	"secret":              {},
	"token":               {},
	"access_token":        {},
	"refresh_token":       {},
	"session":             {},
	"session_id":          {},
	"sessionid":           {},
	"credentials":         {},
}

// credentialFragments mask keys such as "backend_token" or "proxy_password".
// A bare "key" is not listed: it would hit "cache_key" and "storage_key".
var credentialFragments = []string{
	"password", "passwd", "secret", "token", "auth", "credential",
}

// cookieKeys hold cookie header values; names are kept, values masked.
var cookieKeys = map[string]struct{}{
	"cookie":     {},
	"cookies":    {},
	"set-cookie": {},
}

// urlKeys hold URLs whose query strings may identify a visitor.
var urlKeys = map[string]struct{}{
	"url":      {},
	"src":      {},
	"href":     {},
	"location": {},
	"policy":   {},
	"tracker":  {},
	"endpoint": {},
}

// identifyingParams are query parameters commonly used by trackers and
// session links to carry a visitor or account identifier.
var identifyingParams = map[string]struct{}{
	"uid":          {},
	"cid":          {},
	"sid":          {},
	"gclid":        {},
	"fbclid":       {},
	"token":        {},
	"access_token": {},
	"api_key":      {},
	"key":          {},
	"session":      {},
	"email":        {},
}

var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^(sk|pk|rk)_(live|test)_[A-Za-z0-9]+$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{40,}$`),
}

func isCredentialKey(key string) bool {
	if _, ok := credentialKeys[key]; ok {
		return true
	}
	for _, fragment := range credentialFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}

func looksSecret(value string) bool {
	for _, p := range secretValuePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactCookies keeps the cookie names of a Cookie or Set-Cookie value and
// masks every value. Set-Cookie attributes (Path, Expires, ...) are dropped.
//
//	RedactCookies("_ga=GA1.2.3; sid=xyz")        // "_ga=***; sid=***"
//	RedactCookies("id=42; Path=/; HttpOnly")     // "id=***"
func RedactCookies(value string) string {
	parts := strings.Split(value, ";")
	names := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, _, hasValue := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if i > 0 && isCookieAttribute(name) {
			continue
		}
		if !hasValue {
			names = append(names, name)
			continue
		}
		names = append(names, name+"="+cookieMask)
	}
	return strings.Join(names, "; ")
}

func isCookieAttribute(name string) bool {
	switch strings.ToLower(name) {
	case "path", "domain", "expires", "max-age", "secure", "httponly", "samesite", "partitioned", "priority":
		return true
	}
	return false
}

// RedactURL masks identifying query parameter values of raw. Values that do
// not parse as a URL are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	changed := false
	for name := range q {
		if _, ok := identifyingParams[strings.ToLower(name)]; ok {
			q.Set(name, cookieMask)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}
