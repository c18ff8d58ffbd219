package portfolio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// feedLimit caps the number of entries in feed.xml.
const feedLimit = 50

func (a *App) renderRSS(c echo.Context, entries []entry) error {
	if len(entries) > feedLimit {
		entries = entries[:feedLimit]
	}
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		link := ItemURL(a.Config, e.Collection, e.Item)
		items = append(items, rssItem{
			Title:       e.Item.Title,
			Link:        link,
			Description: e.Item.Excerpt,
			Category:    e.Collection.Label(),
			PubDate:     e.Item.CreatedAt.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(a.Config.URL),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
