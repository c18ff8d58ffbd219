package portfolio

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/views"
)

// ViewFuncs holds the templ components the handlers render. Replace any of
// them with WithViews to restyle the site without touching handler logic.
type ViewFuncs struct {
	Home           func(p views.Page, sections []views.Section) templ.Component
	List           func(p views.Page, coll content.Collection, items []content.Item, tags []string, activeTag string) templ.Component
	Detail         func(p views.Page, coll content.Collection, it content.Item) templ.Component
	AdminLogin     func(p views.Page, errMsg, email string) templ.Component
	AdminDashboard func(p views.Page, sections []views.Section, active content.Collection, msg string) templ.Component
	AdminEditor    func(p views.Page, st views.EditorState) templ.Component
	AdminImages    func(p views.Page, images []Image, msg string) templ.Component
	NotFound       func(p views.Page) templ.Component
	ServerError    func(p views.Page) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		List:           views.List,
		Detail:         views.Detail,
		AdminLogin:     views.Login,
		AdminDashboard: views.Dashboard,
		AdminEditor:    views.Editor,
		AdminImages: func(p views.Page, images []Image, msg string) templ.Component {
			rows := make([]views.ImageRow, 0, len(images))
			for _, img := range images {
				rows = append(rows, views.ImageRow{
					Filename:   img.Filename,
					URL:        img.URL,
					Width:      img.Width,
					Height:     img.Height,
					Size:       img.Size,
					UploadedAt: img.UploadedAt,
				})
			}
			return views.Images(p, rows, msg)
		},
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// fill replaces any nil view with its default.
func (v *ViewFuncs) fill() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.List == nil {
		v.List = d.List
	}
	if v.Detail == nil {
		v.Detail = d.Detail
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.AdminEditor == nil {
		v.AdminEditor = d.AdminEditor
	}
	if v.AdminImages == nil {
		v.AdminImages = d.AdminImages
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// page builds the layout data shared by every page of a request.
func (a *App) page(c echo.Context, title string) views.Page {
	if title == "" {
		title = a.Config.Name
	}
	p := views.Page{
		Site:         a.site(),
		Title:        title,
		Description:  a.Config.Description,
		CanonicalURL: BuildURL(a.Config.URL, c.Request().URL.Path),
		OGType:       "website",
		CSRFToken:    CsrfToken(c),
		Viewer:       ViewerFrom(c),
		Collections:  content.Collections,
	}
	if u, ok := AdminUser(c); ok {
		p.Account = u.Email
	}
	return p
}
