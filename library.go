package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

// Library is the single entry point for reading and editing any collection.
// Every read takes the viewer explicitly; drafts never leave it for an
// anonymous viewer.
type Library struct {
	store Store
	cache Cache
	log   logger.Logger
	now   func() time.Time
}

// NewLibrary creates a Library. A nil cache reads straight from the store.
func NewLibrary(s Store, c Cache, log logger.Logger) *Library {
	if c == nil {
		c = noCache{store: s}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Library{
		store: s,
		cache: c,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the items of coll that v may see, newest first, optionally
// restricted to a tag.
func (l *Library) List(ctx context.Context, coll content.Collection, v content.Viewer, tag string) ([]content.Item, error) {
	return l.list(ctx, coll, v, ListOptions{Tag: tag})
}

// list answers anonymous viewers from the published cache and admins from
// the store. opts.IncludeDrafts is derived from v.
func (l *Library) list(ctx context.Context, coll content.Collection, v content.Viewer, opts ListOptions) ([]content.Item, error) {
	if _, err := table(coll); err != nil {
		return nil, err
	}
	var (
		items []content.Item
		err   error
	)
	if v.Authenticated() {
		opts.IncludeDrafts = true
		items, err = l.store.List(ctx, coll, opts)
	} else {
		items, err = l.cache.Published(ctx, coll)
		items = filterByTag(items, opts.Tag)
		if opts.Limit > 0 && len(items) > opts.Limit {
			items = items[:opts.Limit]
		}
	}
	if err != nil {
		l.log.Error("list failed", logger.String("collection", string(coll)), logger.Error(err))
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	return content.FilterVisible(items, v), nil
}

// Tags returns the tags used by the items of coll that v may see.
func (l *Library) Tags(ctx context.Context, coll content.Collection, v content.Viewer) ([]string, error) {
	items, err := l.List(ctx, coll, v, "")
	if err != nil {
		return nil, err
	}
	return collectTags(items), nil
}

// GetBySlug returns the item with slug if v may see it. A draft looked up by
// an anonymous viewer is reported as ErrNotFound.
func (l *Library) GetBySlug(ctx context.Context, coll content.Collection, slug string, v content.Viewer) (content.Item, error) {
	it, err := l.store.GetBySlug(ctx, coll, slug, v.Authenticated())
	if err != nil {
		return content.Item{}, l.readErr(coll, err)
	}
	if !content.Visible(it, v) {
		return content.Item{}, ErrNotFound
	}
	return it, nil
}

// Get returns the item with id if v may see it.
func (l *Library) Get(ctx context.Context, coll content.Collection, id string, v content.Viewer) (content.Item, error) {
	it, err := l.store.Get(ctx, coll, id)
	if err != nil {
		return content.Item{}, l.readErr(coll, err)
	}
	if !content.Visible(it, v) {
		return content.Item{}, ErrNotFound
	}
	return it, nil
}

func (l *Library) readErr(coll content.Collection, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnknownCollection) {
		return err
	}
	l.log.Error("load failed", logger.String("collection", string(coll)), logger.Error(err))
	return fmt.Errorf("load %s: %w", coll, err)
}

// Overview loads every collection for v at once, keyed by collection.
// A positive limit caps each collection to its newest items.
func (l *Library) Overview(ctx context.Context, v content.Viewer, limit int) (map[content.Collection][]content.Item, error) {
	results := make([][]content.Item, len(content.Collections))
	g, ctx := errgroup.WithContext(ctx)
	for i, coll := range content.Collections {
		i, coll := i, coll
		g.Go(func() error {
			items, err := l.list(ctx, coll, v, ListOptions{Limit: limit})
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[content.Collection][]content.Item, len(results))
	for i, coll := range content.Collections {
		out[coll] = results[i]
	}
	return out, nil
}

// Save validates and stores it. The title must not be blank; the slug is
// derived from it again, the draft flag follows publish and updated_at is
// refreshed. Items without an id are inserted, others updated in place.
func (l *Library) Save(ctx context.Context, coll content.Collection, it content.Item, publish bool) (content.Item, error) {
	if _, err := table(coll); err != nil {
		return it, err
	}
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return it, ErrTitleRequired
	}
	it.Title = title
	it.Slug = content.Slugify(title)
	it.IsDraft = !publish
	it.UpdatedAt = l.now()
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.Content == nil {
		it.Content = []content.Block{}
	}

	var err error
	if it.IsNew() {
		saved := it
		saved.CreatedAt = it.UpdatedAt
		if err = l.store.Insert(ctx, coll, &saved); err == nil {
			it = saved
		}
	} else {
		err = l.store.Update(ctx, coll, it)
	}
	if err != nil {
		l.log.Error("save failed",
			logger.String("collection", string(coll)),
			logger.String("id", it.ID),
			logger.Bool("publish", publish),
			logger.Error(err))
		return it, fmt.Errorf("save %s: %w", coll, err)
	}
	l.cache.Invalidate(ctx, coll)
	l.log.Info("item saved",
		logger.String("collection", string(coll)),
		logger.String("id", it.ID),
		logger.String("slug", it.Slug),
		logger.Bool("draft", it.IsDraft))
	return it, nil
}

// SetDraft flips only the draft flag of the item with id.
func (l *Library) SetDraft(ctx context.Context, coll content.Collection, id string, draft bool) error {
	if err := l.store.SetDraft(ctx, coll, id, draft); err != nil {
		l.log.Error("set draft failed", logger.String("collection", string(coll)), logger.String("id", id), logger.Error(err))
		return fmt.Errorf("set draft %s/%s: %w", coll, id, err)
	}
	l.cache.Invalidate(ctx, coll)
	return nil
}

// ToggleDraft archives a published item or publishes an archived one and
// returns the new draft state.
func (l *Library) ToggleDraft(ctx context.Context, coll content.Collection, id string) (bool, error) {
	it, err := l.store.Get(ctx, coll, id)
	if err != nil {
		return false, l.readErr(coll, err)
	}
	draft := !it.IsDraft
	if err := l.SetDraft(ctx, coll, id, draft); err != nil {
		return it.IsDraft, err
	}
	return draft, nil
}

// Delete removes the item with id immediately.
func (l *Library) Delete(ctx context.Context, coll content.Collection, id string) error {
	if err := l.store.Delete(ctx, coll, id); err != nil {
		l.log.Error("delete failed", logger.String("collection", string(coll)), logger.String("id", id), logger.Error(err))
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	l.cache.Invalidate(ctx, coll)
	l.log.Info("item deleted", logger.String("collection", string(coll)), logger.String("id", id))
	return nil
}
