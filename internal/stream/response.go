package stream

import (
	"io"
	"net/http"
)

// Response is the part of an HTTP response the parser reads.
type Response interface {
	// StatusCode returns the HTTP status code.
	StatusCode() int

	// ContentType returns the Content-Type header value.
	ContentType() string

	// Body returns the incremental body reader, or nil when the response
	// carries no body stream.
	Body() io.Reader

	// Text reads the whole response as text. The parser calls it only
	// when Body returns nil.
	Text() (string, error)
}

// FromHTTP adapts an *http.Response. The caller still owns and closes
// resp.Body.
func FromHTTP(resp *http.Response) Response {
	return httpResponse{resp: resp}
}

type httpResponse struct {
	resp *http.Response
}

func (r httpResponse) StatusCode() int {
	return r.resp.StatusCode
}

func (r httpResponse) ContentType() string {
	return r.resp.Header.Get("Content-Type")
}

func (r httpResponse) Body() io.Reader {
	if r.resp.Body == nil || r.resp.Body == http.NoBody {
		return nil
	}
	return r.resp.Body
}

func (r httpResponse) Text() (string, error) {
	if r.resp.Body == nil || r.resp.Body == http.NoBody {
		return "", nil
	}
	b, err := io.ReadAll(r.resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
