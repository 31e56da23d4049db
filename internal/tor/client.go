package tor

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// maxRedirects caps redirects followed by clients from NewHTTPClient.
const maxRedirects = 10

// HeaderSource supplies extra request headers and a raw cookie string for a
// host. Either may be empty.
type HeaderSource interface {
	HeadersFor(host string) (headers map[string]string, cookie string)
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	// Timeout is the overall per-request timeout. Zero means none.
	Timeout time.Duration

	// Proxy routes traffic through SOCKS5 when set.
	Proxy *Proxy

	// Headers supplies per-host headers and cookies when set.
	Headers HeaderSource
}

// NewHTTPClient returns an HTTP client with a cookie jar and a redirect cap,
// routed through opts.Proxy when one is given.
func NewHTTPClient(opts ClientOptions) *http.Client {
	var transport http.RoundTripper
	if opts.Proxy != nil {
		transport = opts.Proxy.Transport()
	} else {
		transport = defaultTransport()
	}
	if opts.Headers != nil {
		transport = &headerInjectingTransport{base: transport, source: opts.Headers}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func defaultTransport() http.RoundTripper {
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}
	return http.DefaultTransport
}

// headerInjectingTransport adds the HeaderSource's values to every request,
// redirects included.
type headerInjectingTransport struct {
	base   http.RoundTripper
	source HeaderSource
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	headers, cookie := t.source.HeadersFor(strings.ToLower(req.URL.Hostname()))
	if len(headers) == 0 && cookie == "" {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+cookie)
		} else {
			clone.Header.Set("Cookie", cookie)
		}
	}
	for key, value := range headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
