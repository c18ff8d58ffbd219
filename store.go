package portfolio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

// ListOptions narrows a List query.
type ListOptions struct {
	IncludeDrafts bool
	Tag           string // case-insensitive, empty for all
	Limit         int    // 0 for no limit
}

// Store persists items of the three collections plus admin users and
// uploaded image metadata.
type Store interface {
	List(ctx context.Context, coll content.Collection, opts ListOptions) ([]content.Item, error)
	Get(ctx context.Context, coll content.Collection, id string) (content.Item, error)
	GetBySlug(ctx context.Context, coll content.Collection, slug string, includeDrafts bool) (content.Item, error)
	Insert(ctx context.Context, coll content.Collection, it *content.Item) error
	Update(ctx context.Context, coll content.Collection, it content.Item) error
	SetDraft(ctx context.Context, coll content.Collection, id string, draft bool) error
	Delete(ctx context.Context, coll content.Collection, id string) error

	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	ListImages(ctx context.Context) ([]Image, error)
	ImageExists(ctx context.Context, filename string) (bool, error)
	SaveImage(ctx context.Context, img Image) error
	DeleteImage(ctx context.Context, filename string) error

	Close() error
}

// timeLayout is fixed width so that text ordering equals time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const itemColumns = `id, title, slug, excerpt, featured_image_url, year, tags, content, is_draft, created_at, updated_at`

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewStore migrates the database at dsn and opens it. dsn is a SQLite file
// path or a postgres:// URL.
func NewStore(ctx context.Context, dsn string, log logger.Logger) (*SQLStore, error) {
	if err := Migrate(dsn, log); err != nil {
		return nil, err
	}
	db, dialect, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// table maps a collection to its table name. Only known collections reach SQL.
func table(coll content.Collection) (string, error) {
	c, ok := content.ParseCollection(string(coll))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	return string(c), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (content.Item, error) {
	var (
		it               content.Item
		tags, body       string
		created, updated string
	)
	if err := row.Scan(&it.ID, &it.Title, &it.Slug, &it.Excerpt, &it.FeaturedImageURL, &it.Year,
		&tags, &body, &it.IsDraft, &created, &updated); err != nil {
		return content.Item{}, err
	}
	if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
		return content.Item{}, fmt.Errorf("decode tags of %s: %w", it.ID, err)
	}
	if err := json.Unmarshal([]byte(body), &it.Content); err != nil {
		return content.Item{}, fmt.Errorf("decode content of %s: %w", it.ID, err)
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.Content == nil {
		it.Content = []content.Block{}
	}
	it.CreatedAt = parseTime(created)
	it.UpdatedAt = parseTime(updated)
	return it, nil
}

func encodeItem(it content.Item) (tags, body string, err error) {
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.Content == nil {
		it.Content = []content.Block{}
	}
	t, err := json.Marshal(it.Tags)
	if err != nil {
		return "", "", err
	}
	b, err := json.Marshal(it.Content)
	if err != nil {
		return "", "", err
	}
	return string(t), string(b), nil
}

// List returns items ordered by creation time, newest first.
func (s *SQLStore) List(ctx context.Context, coll content.Collection, opts ListOptions) ([]content.Item, error) {
	tbl, err := table(coll)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemColumns + ` FROM ` + tbl
	var args []any
	if !opts.IncludeDrafts {
		query += ` WHERE is_draft = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []content.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if opts.Tag != "" && !it.HasTag(opts.Tag) {
			continue
		}
		items = append(items, it)
		if opts.Limit > 0 && len(items) == opts.Limit {
			break
		}
	}
	return items, rows.Err()
}

// Get returns an item by id regardless of draft state.
func (s *SQLStore) Get(ctx context.Context, coll content.Collection, id string) (content.Item, error) {
	tbl, err := table(coll)
	if err != nil {
		return content.Item{}, err
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+itemColumns+` FROM `+tbl+` WHERE id = ?`), id)
	return notFound(scanItem(row))
}

// GetBySlug returns an item by slug. Drafts are only matched when includeDrafts is set.
func (s *SQLStore) GetBySlug(ctx context.Context, coll content.Collection, slug string, includeDrafts bool) (content.Item, error) {
	tbl, err := table(coll)
	if err != nil {
		return content.Item{}, err
	}
	query := `SELECT ` + itemColumns + ` FROM ` + tbl + ` WHERE slug = ?`
	args := []any{slug}
	if !includeDrafts {
		query += ` AND is_draft = ?`
		args = append(args, false)
	}
	row := s.db.QueryRowContext(ctx, s.rebind(query), args...)
	return notFound(scanItem(row))
}

func notFound(it content.Item, err error) (content.Item, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return content.Item{}, ErrNotFound
	}
	return it, err
}

// Insert stores a new item, assigning its id and creation time.
func (s *SQLStore) Insert(ctx context.Context, coll content.Collection, it *content.Item) error {
	tbl, err := table(coll)
	if err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = it.CreatedAt
	}
	tags, body, err := encodeItem(*it)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO `+tbl+` (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		it.ID, it.Title, it.Slug, it.Excerpt, it.FeaturedImageURL, it.Year,
		tags, body, it.IsDraft, formatTime(it.CreatedAt), formatTime(it.UpdatedAt))
	return err
}

// Update replaces every field of the item with the matching id except created_at.
func (s *SQLStore) Update(ctx context.Context, coll content.Collection, it content.Item) error {
	tbl, err := table(coll)
	if err != nil {
		return err
	}
	tags, body, err := encodeItem(it)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE `+tbl+` SET title = ?, slug = ?, excerpt = ?, featured_image_url = ?, year = ?, tags = ?, content = ?, is_draft = ?, updated_at = ? WHERE id = ?`),
		it.Title, it.Slug, it.Excerpt, it.FeaturedImageURL, it.Year,
		tags, body, it.IsDraft, formatTime(it.UpdatedAt), it.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SetDraft changes only the draft flag.
func (s *SQLStore) SetDraft(ctx context.Context, coll content.Collection, id string, draft bool) error {
	tbl, err := table(coll)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE `+tbl+` SET is_draft = ? WHERE id = ?`), draft, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Delete removes an item by id.
func (s *SQLStore) Delete(ctx context.Context, coll content.Collection, id string) error {
	tbl, err := table(coll)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM `+tbl+` WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns the number of admin accounts.
func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CreateUser stores u, assigning its id and creation time.
func (s *SQLStore) CreateUser(ctx context.Context, u *User) error {
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return fmt.Errorf("%w: %s", ErrUserExists, u.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	return err
}

// GetUser returns a user by id.
func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail returns a user by email, compared case-insensitively.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, `lower(email) = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLStore) getUser(ctx context.Context, where string, arg string) (User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, email, password_hash, created_at FROM users WHERE `+where), arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// ListImages returns uploaded images, newest first.
func (s *SQLStore) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, original_name, url, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		var uploaded string
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.URL, &img.Width, &img.Height, &img.Size, &uploaded); err != nil {
			return nil, err
		}
		img.UploadedAt = parseTime(uploaded)
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is already recorded.
func (s *SQLStore) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM images WHERE filename = ?`), filename).Scan(&n)
	return n > 0, err
}

// SaveImage records the metadata of an uploaded image.
func (s *SQLStore) SaveImage(ctx context.Context, img Image) error {
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO images (filename, original_name, url, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		img.Filename, img.OriginalName, img.URL, img.Width, img.Height, img.Size, formatTime(img.UploadedAt))
	return err
}

// DeleteImage removes image metadata by filename.
func (s *SQLStore) DeleteImage(ctx context.Context, filename string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM images WHERE filename = ?`), filename)
	if err != nil {
		return err
	}
	return expectRow(res)
}
