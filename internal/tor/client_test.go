package tor

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticHeaders struct {
	host    string
	headers map[string]string
	cookie  string
}

func (s staticHeaders) HeadersFor(host string) (map[string]string, string) {
	if host != s.host {
		return nil, ""
	}
	return s.headers, s.cookie
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client", func(t *testing.T) {
		t.Parallel()

		client := NewHTTPClient(ClientOptions{Timeout: 5 * time.Second})
		if client.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", client.Timeout)
		}
		if client.Jar == nil {
			t.Error("expected a cookie jar")
		}
		if _, ok := client.Transport.(*http.Transport); !ok {
			t.Errorf("Transport = %T, want *http.Transport", client.Transport)
		}
	})

	t.Run("proxied client disables compression", func(t *testing.T) {
		t.Parallel()

		p, err := NewProxy("127.0.0.1:9050")
		if err != nil {
			t.Fatalf("NewProxy: %v", err)
		}
		client := NewHTTPClient(ClientOptions{Proxy: p})
		tr, ok := client.Transport.(*http.Transport)
		if !ok {
			t.Fatalf("Transport = %T, want *http.Transport", client.Transport)
		}
		if !tr.DisableCompression {
			t.Error("expected DisableCompression")
		}
		if tr.DialContext == nil {
			t.Error("expected a proxy dialer")
		}
	})

	t.Run("redirect cap", func(t *testing.T) {
		t.Parallel()

		client := NewHTTPClient(ClientOptions{})
		via := make([]*http.Request, maxRedirects)
		if err := client.CheckRedirect(nil, via); err != http.ErrUseLastResponse {
			t.Errorf("CheckRedirect at cap = %v, want ErrUseLastResponse", err)
		}
		if err := client.CheckRedirect(nil, via[:1]); err != nil {
			t.Errorf("CheckRedirect below cap = %v", err)
		}
	})
}

func TestHeaderInjectingTransport(t *testing.T) {
	t.Parallel()

	received := make(chan http.Header, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	source := staticHeaders{
		host:    "127.0.0.1",
		headers: map[string]string{"X-Audit": "privacypulse"},
		cookie:  "session=abc",
	}
	client := NewHTTPClient(ClientOptions{Headers: source})

	req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // test code
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Cookie", "consent=yes")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	got := <-received
	if got.Get("X-Audit") != "privacypulse" {
		t.Errorf("X-Audit = %q", got.Get("X-Audit"))
	}
	if got.Get("Cookie") != "consent=yes; session=abc" {
		t.Errorf("Cookie = %q", got.Get("Cookie"))
	}
	if req.Header.Get("X-Audit") != "" {
		t.Error("original request was modified")
	}
}

func TestHeaderInjectingTransport_OtherHost(t *testing.T) {
	t.Parallel()

	received := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Clone()
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(ClientOptions{Headers: staticHeaders{host: "example.com", cookie: "session=abc"}})
	resp, err := client.Get(server.URL) //nolint:noctx // test code
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got := (<-received).Get("Cookie"); got != "" {
		t.Errorf("Cookie leaked to another host: %q", got)
	}
}
