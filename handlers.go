package portfolio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
	"github.com/eringen/portfolio/views"
)

// homeLimit is how many entries of each collection the home page shows.
const homeLimit = 6

func (a *App) handleHome(c echo.Context) error {
	v := ViewerFrom(c)
	all, err := a.Library.Overview(c.Request().Context(), v, homeLimit)
	if err != nil {
		return err
	}
	sections := make([]views.Section, 0, len(content.Collections))
	for _, coll := range content.Collections {
		sections = append(sections, views.Section{Collection: coll, Items: all[coll]})
	}
	p := a.page(c, "")
	p.JSONLD = WebsiteJsonLD(a.Config)
	return Render(c, a.Views.Home(p, sections))
}

// collectionParam resolves :collection, answering 404 for unknown names.
func collectionParam(c echo.Context) (content.Collection, error) {
	coll, ok := content.ParseCollection(c.Param("collection"))
	if !ok {
		return "", echo.ErrNotFound
	}
	return coll, nil
}

func (a *App) handleList(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	v := ViewerFrom(c)
	tag := c.QueryParam("tag")

	items, err := a.Library.List(ctx, coll, v, tag)
	if err != nil {
		return err
	}
	tags, err := a.Library.Tags(ctx, coll, v)
	if err != nil {
		return err
	}
	return Render(c, a.Views.List(a.page(c, coll.Label()), coll, items, tags, tag))
}

func (a *App) handleDetail(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	it, err := a.Library.GetBySlug(c.Request().Context(), coll, c.Param("slug"), ViewerFrom(c))
	if err != nil {
		return err
	}
	p := a.page(c, it.Title)
	p.OGType = "article"
	if it.Excerpt != "" {
		p.Description = it.Excerpt
	}
	p.Image = it.FeaturedImageURL
	p.JSONLD = ItemJsonLD(coll, it, a.Config)
	return Render(c, a.Views.Detail(p, coll, it))
}

func (a *App) handleAPIList(c echo.Context) error {
	coll, ok := content.ParseCollection(c.Param("collection"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}
	items, err := a.Library.List(c.Request().Context(), coll, ViewerFrom(c), c.QueryParam("tag"))
	if err != nil {
		a.Log.Error("api list failed", logger.String("collection", string(coll)), logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load items"})
	}
	return c.JSON(http.StatusOK, items)
}

func (a *App) handleAPIDetail(c echo.Context) error {
	coll, ok := content.ParseCollection(c.Param("collection"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}
	it, err := a.Library.GetBySlug(c.Request().Context(), coll, c.Param("slug"), ViewerFrom(c))
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	if err != nil {
		a.Log.Error("api detail failed", logger.String("collection", string(coll)), logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load item"})
	}
	return c.JSON(http.StatusOK, it)
}

func (a *App) handleSitemap(c echo.Context) error {
	entries, err := a.publishedEntries(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, entries)
}

func (a *App) handleFeed(c echo.Context) error {
	entries, err := a.publishedEntries(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, entries)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, ErrNotFound) {
		err = echo.ErrNotFound
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code == http.StatusNotFound {
		if wantsJSON(c) {
			_ = c.JSON(code, map[string]string{"error": "not found"})
			return
		}
		_ = RenderStatus(c, code, a.Views.NotFound(a.page(c, "Not found")))
		return
	}
	if code >= 500 {
		a.Log.Error("server error",
			logger.String("method", c.Request().Method),
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
		if wantsJSON(c) {
			_ = c.JSON(code, map[string]string{"error": http.StatusText(code)})
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, "Error")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
