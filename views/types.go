package views

import (
	"time"

	"github.com/eringen/portfolio/content"
)

// Site holds site-wide settings. Every page carries it so nothing is hardcoded.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// Page carries per-request data into the layout: SEO metadata, the CSRF
// token for forms and the viewer deciding what admin controls show.
type Page struct {
	Site         Site
	Title        string
	Description  string
	CanonicalURL string // canonical + og:url
	OGType       string // "website" or "article"
	Image        string
	JSONLD       string
	CSRFToken    string
	Viewer       content.Viewer
	Account      string // email of the signed-in account on admin pages
	Collections  []content.Collection
}

// Section is one collection's items on the home page or dashboard.
type Section struct {
	Collection content.Collection
	Items      []content.Item
}

// EditorState is everything the editor form round-trips between requests.
type EditorState struct {
	Collection content.Collection
	Item       content.Item
	NewKind    content.Kind
	NewPayload string
	Error      string
	Message    string
}

// ImageRow is one uploaded image in the media library.
type ImageRow struct {
	Filename   string
	URL        string
	Width      int
	Height     int
	Size       int
	UploadedAt time.Time
}

type homeData struct {
	Page     Page
	Sections []Section
}

type listData struct {
	Page       Page
	Collection content.Collection
	Items      []content.Item
	Tags       []string
	ActiveTag  string
}

type detailData struct {
	Page       Page
	Collection content.Collection
	Item       content.Item
	Units      []content.Unit
}

type loginData struct {
	Page  Page
	Error string
	Email string
}

type dashboardData struct {
	Page     Page
	Sections []Section
	Active   content.Collection
	Message  string
}

type editorData struct {
	Page       Page
	State      EditorState
	BlocksJSON string
	Kinds      []content.Kind
}

type imagesData struct {
	Page    Page
	Images  []ImageRow
	Message string
}

type errorData struct {
	Page    Page
	Code    int
	Message string
}
