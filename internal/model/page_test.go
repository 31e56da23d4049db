package model

import (
	"strings"
	"testing"
)

func TestPage_Sources(t *testing.T) {
	t.Parallel()

	p := &Page{
		Host:    "example.com",
		Scripts: []Element{{Source: "https://a.com/a.js"}, {Source: "https://b.com/b.js"}},
		Iframes: []Element{{Source: "https://c.com/frame"}},
		Images:  []Element{{Source: "https://d.com/p.gif"}},
	}

	if p.Hostname() != "example.com" {
		t.Errorf("Hostname() = %q", p.Hostname())
	}
	tests := []struct {
		kind Source
		want []string
	}{
		{kind: SourceScript, want: []string{"https://a.com/a.js", "https://b.com/b.js"}},
		{kind: SourceIframe, want: []string{"https://c.com/frame"}},
		{kind: SourceImage, want: []string{"https://d.com/p.gif"}},
		{kind: Source("video"), want: nil},
	}
	for _, tt := range tests {
		got := p.Sources(tt.kind)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Sources(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestPage_ComputeHash(t *testing.T) {
	t.Parallel()

	p := &Page{Raw: []byte("<html></html>")}
	p.ComputeHash()
	if len(p.Hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(p.Hash))
	}

	again := &Page{Raw: []byte("<html></html>")}
	again.ComputeHash()
	if again.Hash != p.Hash {
		t.Error("hash should be deterministic")
	}

	empty := &Page{Hash: "stale"}
	empty.ComputeHash()
	if empty.Hash != "" {
		t.Errorf("empty body hash = %q, want empty", empty.Hash)
	}
}

func TestPage_IsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct   string
		want bool
	}{
		{ct: "text/html", want: true},
		{ct: "text/html; charset=utf-8", want: true},
		{ct: "Application/XHTML+XML", want: true},
		{ct: "application/json", want: false},
		{ct: "", want: false},
	}
	for _, tt := range tests {
		if got := (&Page{ContentType: tt.ct}).IsHTML(); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}
