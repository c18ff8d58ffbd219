package portfolio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/portfolio/logger"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Portfolio")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD

	Addr        string `mapstructure:"addr"`         // Listen address (default ":3000")
	DatabaseURL string `mapstructure:"database_url"` // SQLite path or postgres:// URL (default "data/portfolio.db")
	StaticDir   string `mapstructure:"static_dir"`   // Static assets and local uploads (default "public")

	AdminEmail    string `mapstructure:"admin_email"`    // First admin, created when no user exists
	AdminPassword string `mapstructure:"admin_password"` // Password of the first admin
	SessionSecret string `mapstructure:"session_secret"` // Required: session cookie key
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	CacheTTL      time.Duration `mapstructure:"cache_ttl"`      // Published item cache TTL (default 5m)
	RedisAddr     string        `mapstructure:"redis_addr"`     // Share the cache through Redis when set
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`

	Uploads UploadConfig `mapstructure:"uploads"`

	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error (default "info")
	LogPretty bool   `mapstructure:"log_pretty"` // Coloured console output
}

// UploadConfig selects where uploaded images are written.
type UploadConfig struct {
	Backend string   `mapstructure:"backend"` // "local" (default) or "s3"
	S3      S3Config `mapstructure:"s3"`
}

// S3Config addresses an S3 compatible bucket.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`   // Custom endpoint for S3 compatible services
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"` // Base URL objects are served from
	PathStyle       bool   `mapstructure:"path_style"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/portfolio.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Uploads.Backend == "" {
		c.Uploads.Backend = "local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports missing or inconsistent settings.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session_secret is required"))
	}
	switch c.Uploads.Backend {
	case "", "local":
	case "s3":
		s3 := c.Uploads.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			errs = append(errs, errors.New("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown uploads.backend %q", c.Uploads.Backend))
	}
	return errors.Join(errs...)
}

// LoadConfig reads configuration from an optional YAML file and PORTFOLIO_*
// environment variables, e.g. PORTFOLIO_SESSION_SECRET or
// PORTFOLIO_UPLOADS_S3_BUCKET. An empty path looks for ./portfolio.yaml.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can override it.
	var defaults SiteConfig
	defaults.setDefaults()
	for key, val := range map[string]any{
		"name":                         defaults.Name,
		"url":                          defaults.URL,
		"description":                  "",
		"author":                       "",
		"addr":                         defaults.Addr,
		"database_url":                 defaults.DatabaseURL,
		"static_dir":                   defaults.StaticDir,
		"admin_email":                  "",
		"admin_password":               "",
		"session_secret":               "",
		"cookie_secure":                false,
		"cache_ttl":                    defaults.CacheTTL,
		"redis_addr":                   "",
		"redis_password":               "",
		"redis_db":                     0,
		"uploads.backend":              defaults.Uploads.Backend,
		"uploads.s3.bucket":            "",
		"uploads.s3.region":            "",
		"uploads.s3.endpoint":          "",
		"uploads.s3.access_key_id":     "",
		"uploads.s3.secret_access_key": "",
		"uploads.s3.public_url":        "",
		"uploads.s3.path_style":        false,
		"log_level":                    defaults.LogLevel,
		"log_pretty":                   false,
	} {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portfolio")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses s instead of opening Config.DatabaseURL.
func WithStore(s Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithCache uses c instead of the in-memory or Redis cache.
func WithCache(c Cache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithUploads uses u instead of the configured upload backend.
func WithUploads(u Uploads) Option {
	return func(a *App) {
		a.Uploads = u
	}
}

// WithLogger sets the application logger.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithViews replaces the built-in page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
