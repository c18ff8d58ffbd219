// Package views renders every page of the site as a templ.Component.
// Pages share one layout; each page template defines "title" and "content".
package views

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/a-h/templ"

	"github.com/eringen/portfolio/content"
)

//go:embed templates/*.html
var templateFS embed.FS

// Static holds the stylesheet served at /public/site.css.
//
//go:embed static/*
var Static embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "list", "detail", "login", "dashboard", "editor", "images", "error"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

func render(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name].Lookup("layout"), data)
}

// Home lists the newest entries of every collection.
func Home(p Page, sections []Section) templ.Component {
	return render("home", homeData{Page: p, Sections: sections})
}

// List shows one collection, optionally filtered by activeTag.
func List(p Page, coll content.Collection, items []content.Item, tags []string, activeTag string) templ.Component {
	return render("list", listData{Page: p, Collection: coll, Items: items, Tags: tags, ActiveTag: activeTag})
}

// Detail shows one item with its blocks rendered in order.
func Detail(p Page, coll content.Collection, it content.Item) templ.Component {
	return render("detail", detailData{Page: p, Collection: coll, Item: it, Units: content.RenderAll(it.Content)})
}

// Login is the admin sign-in form.
func Login(p Page, errMsg, email string) templ.Component {
	return render("login", loginData{Page: p, Error: errMsg, Email: email})
}

// Dashboard lists every item of every collection with its admin actions.
func Dashboard(p Page, sections []Section, active content.Collection, msg string) templ.Component {
	return render("dashboard", dashboardData{Page: p, Sections: sections, Active: active, Message: msg})
}

// Editor is the item form. The block list round-trips as JSON in a hidden field.
func Editor(p Page, st EditorState) templ.Component {
	blocks := st.Item.Content
	if blocks == nil {
		blocks = []content.Block{}
	}
	raw, err := json.Marshal(blocks)
	if err != nil {
		raw = []byte("[]")
	}
	if st.NewKind == "" {
		st.NewKind = content.Text
	}
	return render("editor", editorData{Page: p, State: st, BlocksJSON: string(raw), Kinds: content.Kinds})
}

// Images is the media library.
func Images(p Page, images []ImageRow, msg string) templ.Component {
	return render("images", imagesData{Page: p, Images: images, Message: msg})
}

// NotFound is the 404 page.
func NotFound(p Page) templ.Component {
	return render("error", errorData{Page: p, Code: http.StatusNotFound, Message: "The page you are looking for does not exist."})
}

// ServerError is the 5xx page.
func ServerError(p Page) templ.Component {
	return render("error", errorData{Page: p, Code: http.StatusInternalServerError, Message: "Something went wrong. Please try again later."})
}
