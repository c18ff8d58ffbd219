package portfolio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/portfolio/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") && path.Ext(u.Path) == "" {
		u.Path += "/"
	}
	return u.String()
}

// ItemURL is the absolute public URL of it.
func ItemURL(cfg SiteConfig, coll content.Collection, it content.Item) string {
	return BuildURL(cfg.URL, string(coll), it.Slug)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// schemaType maps a collection onto its schema.org type.
func schemaType(coll content.Collection) string {
	switch coll {
	case content.Blogs:
		return "BlogPosting"
	case content.Games:
		return "VideoGame"
	default:
		return "CreativeWork"
	}
}

// ItemJsonLD returns a JSON-LD string describing one entry.
func ItemJsonLD(coll content.Collection, it content.Item, cfg SiteConfig) string {
	itemURL := ItemURL(cfg, coll, it)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       schemaType(coll),
		"name":        it.Title,
		"description": it.Excerpt,
		"url":         itemURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   itemURL,
		},
	}
	if coll == content.Blogs {
		data["headline"] = it.Title
	}
	if !it.CreatedAt.IsZero() {
		data["datePublished"] = it.CreatedAt.Format(time.RFC3339)
	}
	if !it.UpdatedAt.IsZero() {
		data["dateModified"] = it.UpdatedAt.Format(time.RFC3339)
	}
	if it.FeaturedImageURL != "" {
		data["image"] = it.FeaturedImageURL
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(it.Tags) > 0 {
		data["keywords"] = strings.Join(it.Tags, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
