// Package portfolio is a personal site engine for blogs, games and projects,
// built with Go, Echo and templ.
//
// Every entry is a block document: an ordered list of text, image, video and
// GIF blocks. Drafts are visible to signed-in admins only. The App wires the
// store, cache, upload backend, handlers and middleware; templates can be
// swapped through ViewFuncs.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/logger"
	"github.com/eringen/portfolio/views"
)

// App is the central application. It wires together the store, cache,
// handlers, middleware and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   Store
	Cache   Cache
	Uploads Uploads
	Library *Library
	Auth    *Auth
	Views   ViewFuncs
	Log     logger.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	closers      []func() error
}

// New creates an App. Nothing is opened until Init.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  DefaultViews(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		a.Log = logger.New(cfg.LogLevel, cfg.LogPretty)
	}
	a.Views.fill()
	return a
}

// Init opens the store, cache and upload backend, creates the first admin
// and registers middleware and routes. On failure everything opened so far
// is closed again.
func (a *App) Init(ctx context.Context) error {
	if err := a.open(ctx); err != nil {
		if cerr := a.Close(); cerr != nil {
			a.Log.Warn("close after failed init", logger.Error(cerr))
		}
		return err
	}
	return nil
}

func (a *App) open(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}

	if a.Store == nil {
		store, err := NewStore(ctx, a.Config.DatabaseURL, a.Log)
		if err != nil {
			return fmt.Errorf("portfolio: init store: %w", err)
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
	}

	if a.Cache == nil {
		cache, err := a.newCache(ctx)
		if err != nil {
			return fmt.Errorf("portfolio: init cache: %w", err)
		}
		a.Cache = cache
	}

	if a.Uploads == nil {
		uploads, err := NewUploads(a.Config)
		if err != nil {
			return fmt.Errorf("portfolio: init uploads: %w", err)
		}
		a.Uploads = uploads
	}

	a.Library = NewLibrary(a.Store, a.Cache, a.Log)
	a.Auth = NewAuth(a.Store, a.Log)
	if err := a.Auth.Bootstrap(ctx, a.Config.AdminEmail, a.Config.AdminPassword); err != nil {
		return fmt.Errorf("portfolio: bootstrap admin: %w", err)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.closers = append(a.closers, func() error {
		a.loginLimiter.Stop()
		return nil
	})

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) newCache(ctx context.Context) (Cache, error) {
	if a.Config.RedisAddr == "" {
		return NewMemoryCache(a.Store, a.Config.CacheTTL), nil
	}
	client, err := ConnectRedis(ctx, RedisOptions{
		Addr:           a.Config.RedisAddr,
		Password:       a.Config.RedisPassword,
		DB:             a.Config.RedisDB,
		ConnectTimeout: 30 * time.Second,
		RetryInterval:  500 * time.Millisecond,
	}, a.Log)
	if err != nil {
		return nil, err
	}
	cache := NewRedisCache(client, a.Store, a.Config.CacheTTL, a.Log)
	a.closers = append(a.closers, cache.Close)
	return cache, nil
}

// Start serves HTTP on Config.Addr until Shutdown is called.
func (a *App) Start() error {
	a.Log.Info("listening", logger.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run initialises the app and serves until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.Start() }()

	select {
	case err := <-errCh:
		a.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server and releases every resource.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases resources opened by Init, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Built-in stylesheet, then the user's static dir and local uploads.
	staticFS, _ := fs.Sub(views.Static, "static")
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(staticFS)))))
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/api/:collection", a.handleAPIList)
	e.GET("/api/:collection/:slug", a.handleAPIDetail)

	e.GET("/admin/", a.handleAdmin)
	e.GET("/admin/login/", a.handleLoginForm)
	e.POST("/admin/login/", a.handleLogin)
	e.POST("/admin/logout/", a.handleLogout)

	e.GET("/admin/dashboard/", a.handleDashboard, a.requireAdmin)
	e.GET("/admin/editor/:collection/:id/", a.handleEditor, a.requireAdmin)
	e.POST("/admin/editor/:collection/:id/", a.handleEditorPost, a.requireAdmin)
	e.POST("/admin/:collection/:id/draft/", a.handleToggleDraft, a.requireAdmin)
	e.POST("/admin/:collection/:id/delete/", a.handleDelete, a.requireAdmin)
	e.DELETE("/admin/:collection/:id/delete/", a.handleDelete, a.requireAdmin)
	e.GET("/admin/images/", a.handleImageList, a.requireAdmin)
	e.POST("/admin/images/upload/", a.handleImageUpload, a.requireAdmin)
	e.POST("/admin/images/:filename/delete/", a.handleImageDelete, a.requireAdmin)
	e.DELETE("/admin/images/:filename/delete/", a.handleImageDelete, a.requireAdmin)

	e.GET("/:collection/", a.handleList)
	e.GET("/:collection/:slug/", a.handleDetail)
}
