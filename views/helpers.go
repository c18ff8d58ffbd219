package views

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/portfolio/content"
)

var funcs = template.FuncMap{
	"join":       JoinTags,
	"tagClass":   TagClass,
	"tagURL":     tagURL,
	"date":       FormatDate,
	"size":       FormatSize,
	"pathEscape": url.PathEscape,
	"jsonld":     func(s string) template.JS { return template.JS(s) },
	// Only goldmark output reaches this; it omits raw HTML.
	"unitHTML": func(u content.Unit) template.HTML { return template.HTML(u.HTML) },
	"editPath": EditPath,
	"card":     func(c content.Collection, it content.Item) cardData { return cardData{Collection: c, Item: it} },
}

type cardData struct {
	Collection content.Collection
	Item       content.Item
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// TagClass returns the CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

func tagURL(coll content.Collection, tag string) string {
	if tag == "" {
		return coll.Path()
	}
	return coll.Path() + "?tag=" + url.QueryEscape(tag)
}

// FormatDate renders t like "Jan 2, 2006"; zero times render empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatSize renders a byte count in KB or MB.
func FormatSize(n int) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}

// EditPath is the editor URL of an item; new items use "new".
func EditPath(coll content.Collection, id string) string {
	if id == "" {
		id = "new"
	}
	return "/admin/editor/" + string(coll) + "/" + url.PathEscape(id) + "/"
}
