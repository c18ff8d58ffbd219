package content

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Unit is the display form of a block. Text units carry rendered HTML,
// media units carry the source URL.
type Unit struct {
	Kind Kind
	Src  string
	HTML string
}

// Raw HTML in text blocks is omitted; goldmark only passes it through with WithUnsafe.
var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Render converts a block to its display unit. It never fails.
func Render(b Block) Unit {
	switch b.Kind {
	case Text:
		return Unit{Kind: Text, HTML: renderText(b.Payload)}
	case Image, GIF:
		return Unit{Kind: b.Kind, Src: strings.TrimSpace(b.Payload)}
	case Video:
		return Unit{Kind: Video, Src: EmbedURL(strings.TrimSpace(b.Payload))}
	}
	return Unit{Kind: b.Kind}
}

// RenderAll renders blocks in order.
func RenderAll(blocks []Block) []Unit {
	units := make([]Unit, 0, len(blocks))
	for _, b := range blocks {
		units = append(units, Render(b))
	}
	return units
}

// EmbedURL rewrites the first "watch?v=" in a video URL to "embed/".
// URLs without it are returned as is.
func EmbedURL(u string) string {
	return strings.Replace(u, "watch?v=", "embed/", 1)
}

func renderText(src string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return buf.String()
}
