package content

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Collection names one of the three item tables.
type Collection string

const (
	Blogs    Collection = "blogs"
	Games    Collection = "games"
	Projects Collection = "projects"
)

// Collections lists every collection in navigation order.
var Collections = []Collection{Blogs, Games, Projects}

// ParseCollection reports whether s names a known collection.
func ParseCollection(s string) (Collection, bool) {
	switch c := Collection(strings.ToLower(strings.TrimSpace(s))); c {
	case Blogs, Games, Projects:
		return c, true
	}
	return "", false
}

// Label is the display name, e.g. "Projects".
func (c Collection) Label() string {
	// A Caser keeps state, so one is built per call.
	return cases.Title(language.English).String(string(c))
}

// Singular is the display name of one item, e.g. "Project".
func (c Collection) Singular() string {
	return strings.TrimSuffix(c.Label(), "s")
}

// Path returns the public URL path of the collection, or of one item when
// slug is given.
func (c Collection) Path(slug ...string) string {
	if len(slug) == 0 || slug[0] == "" {
		return "/" + string(c) + "/"
	}
	return "/" + string(c) + "/" + slug[0] + "/"
}

// Item is one entry of a collection.
type Item struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Excerpt          string    `json:"excerpt"`
	FeaturedImageURL string    `json:"featured_image_url"`
	Year             string    `json:"year"`
	Tags             []string  `json:"tags"`
	Content          []Block   `json:"content"`
	IsDraft          bool      `json:"is_draft"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewItem returns the empty item the editor starts from.
func NewItem() Item {
	return Item{
		Tags:    []string{},
		Content: []Block{},
		IsDraft: true,
	}
}

// IsNew reports whether the item has not been stored yet.
func (it Item) IsNew() bool {
	return it.ID == ""
}

// HasTag compares case-insensitively.
func (it Item) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range it.Tags {
		if strings.ToLower(strings.TrimSpace(t)) == tag {
			return true
		}
	}
	return false
}

// ParseTags splits a comma separated tag field, dropping empty entries.
// Order and duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
