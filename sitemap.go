package portfolio

import (
	"encoding/xml"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// entry is a published item with the collection it belongs to.
type entry struct {
	Collection content.Collection
	Item       content.Item
}

// publishedEntries returns every published item, newest first. Feeds are
// always built for an anonymous viewer.
func (a *App) publishedEntries(c echo.Context) ([]entry, error) {
	all, err := a.Library.Overview(c.Request().Context(), content.Anonymous, 0)
	if err != nil {
		return nil, err
	}
	var out []entry
	for _, coll := range content.Collections {
		for _, it := range all[coll] {
			out = append(out, entry{Collection: coll, Item: it})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.CreatedAt.After(out[j].Item.CreatedAt)
	})
	return out, nil
}

func (a *App) renderSitemap(c echo.Context, entries []entry) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, coll := range content.Collections {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, string(coll))})
	}
	for _, e := range entries {
		urls = append(urls, sitemapURL{
			Loc:     ItemURL(a.Config, e.Collection, e.Item),
			LastMod: e.Item.UpdatedAt.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
