// Package importer turns seed files into collection items.
//
// Two formats are read. YAML files hold a list of documents under "items".
// Markdown files carry one document as frontmatter and their body becomes a
// trailing text block. A document without a collection takes the name of the
// directory it sits in, so content/games/*.md needs no frontmatter field.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/eringen/portfolio/content"
)

var (
	ErrNoCollection    = errors.New("collection is missing or unknown")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// Document is one entry as written in a seed file.
type Document struct {
	Collection       string     `yaml:"collection"`
	Title            string     `yaml:"title"`
	Excerpt          string     `yaml:"excerpt"`
	FeaturedImageURL string     `yaml:"featured_image_url"`
	Year             string     `yaml:"year"`
	Tags             []string   `yaml:"tags"`
	Draft            bool       `yaml:"draft"`
	Blocks           []BlockDoc `yaml:"blocks"`
}

// BlockDoc is a block in a seed file; type is one of text, image, video, gif.
type BlockDoc struct {
	Type    string `yaml:"type"`
	Content string `yaml:"content"`
}

type yamlFile struct {
	Items []Document `yaml:"items"`
}

// Entry is a parsed document ready to be saved.
type Entry struct {
	Collection content.Collection
	Item       content.Item
	Publish    bool
	Source     string
}

// ParseYAML reads every document of a YAML seed file.
func ParseYAML(r io.Reader, source, fallback string) ([]Entry, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: parse yaml: %w", source, err)
	}
	entries := make([]Entry, 0, len(f.Items))
	for i, d := range f.Items {
		e, err := d.entry(fmt.Sprintf("%s#%d", source, i+1), fallback, "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseMarkdown reads one Markdown document with optional frontmatter.
func ParseMarkdown(r io.Reader, source, fallback string) (Entry, error) {
	var d Document
	body, err := frontmatter.Parse(r, &d)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: parse frontmatter: %w", source, err)
	}
	return d.entry(source, fallback, string(bytes.TrimSpace(body)))
}

func (d Document) entry(source, fallback, body string) (Entry, error) {
	name := d.Collection
	if name == "" {
		name = fallback
	}
	coll, ok := content.ParseCollection(name)
	if !ok {
		return Entry{}, fmt.Errorf("%s: %w: %q", source, ErrNoCollection, name)
	}

	it := content.NewItem()
	it.Title = strings.TrimSpace(d.Title)
	it.Excerpt = d.Excerpt
	it.FeaturedImageURL = d.FeaturedImageURL
	it.Year = d.Year
	for _, t := range d.Tags {
		if t = strings.TrimSpace(t); t != "" {
			it.Tags = append(it.Tags, t)
		}
	}
	for i, b := range d.Blocks {
		kind, err := content.ParseKind(b.Type)
		if err != nil {
			return Entry{}, fmt.Errorf("%s: block %d: %w", source, i+1, err)
		}
		it.Content = content.Append(it.Content, kind, b.Content)
	}
	it.Content = content.Append(it.Content, content.Text, body)

	return Entry{
		Collection: coll,
		Item:       it,
		Publish:    !d.Draft,
		Source:     source,
	}, nil
}

// LoadFile parses one .yaml, .yml, .md or .markdown file.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fallback := filepath.Base(filepath.Dir(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f, path, fallback)
	case ".md", ".markdown":
		e, err := ParseMarkdown(f, path, fallback)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
}

// Load parses path, walking it if it is a directory. Files of other types
// inside a directory are skipped; entries come back in path order.
func Load(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var entries []Entry
	for _, f := range files {
		es, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return entries, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".md", ".markdown":
		return true
	}
	return false
}
