package content

import (
	"strings"
	"testing"
)

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/watch?v=abc123", "https://example.com/embed/abc123"},
		{"https://www.youtube.com/watch?v=xyz&t=10", "https://www.youtube.com/embed/xyz&t=10"},
		{"https://player.vimeo.com/video/1", "https://player.vimeo.com/video/1"},
		{"watch?v=a watch?v=b", "embed/a watch?v=b"},
	}
	for _, tt := range tests {
		if got := EmbedURL(tt.input); got != tt.expected {
			t.Errorf("EmbedURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderVideo(t *testing.T) {
	u := Render(Block{ID: "1", Kind: Video, Payload: "https://example.com/watch?v=abc123"})
	if u.Kind != Video || u.Src != "https://example.com/embed/abc123" {
		t.Errorf("Render(video) = %+v", u)
	}
}

func TestRenderMedia(t *testing.T) {
	for _, k := range []Kind{Image, GIF} {
		u := Render(Block{Kind: k, Payload: " https://example.com/x.gif "})
		if u.Kind != k || u.Src != "https://example.com/x.gif" {
			t.Errorf("Render(%s) = %+v", k, u)
		}
		if u.HTML != "" {
			t.Errorf("Render(%s) should carry no HTML, got %q", k, u.HTML)
		}
	}
}

func TestRenderText(t *testing.T) {
	u := Render(Block{Kind: Text, Payload: "Hello **world**"})
	if u.Kind != Text {
		t.Fatalf("kind = %q", u.Kind)
	}
	if !strings.Contains(u.HTML, "<p>Hello <strong>world</strong></p>") {
		t.Errorf("Render(text) = %q", u.HTML)
	}
}

func TestRenderTextOmitsRawHTML(t *testing.T) {
	u := Render(Block{Kind: Text, Payload: "<script>alert(1)</script>"})
	if strings.Contains(u.HTML, "<script>") {
		t.Errorf("raw html leaked: %q", u.HTML)
	}
}

func TestRenderAllKeepsOrder(t *testing.T) {
	units := RenderAll([]Block{
		{Kind: Image, Payload: "a.png"},
		{Kind: Text, Payload: "b"},
		{Kind: GIF, Payload: "c.gif"},
	})
	want := []Kind{Image, Text, GIF}
	if len(units) != len(want) {
		t.Fatalf("len = %d", len(units))
	}
	for i, k := range want {
		if units[i].Kind != k {
			t.Errorf("units[%d].Kind = %q, want %q", i, units[i].Kind, k)
		}
	}
}
