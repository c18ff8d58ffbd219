package portfolio

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

const (
	sessionName  = "admin_session"
	viewerKey    = "viewer"
	adminUserKey = "admin_user"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				a.Log.Warn("request", append(fields, logger.Error(v.Error))...)
				return nil
			}
			a.Log.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; media-src 'self' https:; frame-src https://www.youtube.com https://player.vimeo.com",
		HSTSMaxAge:            31536000,
	}))

	e.Use(session.Middleware(a.newSessionStore()))
	e.Use(a.viewerMiddleware)

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		Skipper:        csrfSkipper,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/api/") ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
}

// csrfSkipper exempts the read-only JSON API and logout. Logout carries no
// body and only destroys the caller's own session.
func csrfSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/api/") || path == "/admin/logout/"
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasPrefix(path, "/admin"), ViewerFrom(c).Authenticated():
			// Signed-in responses include drafts.
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=300")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

const sessionMaxAge = 12 * time.Hour

// viewerMiddleware resolves the request's viewer from the session cookie.
// Expired or malformed sessions make the request anonymous.
func (a *App) viewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(viewerKey, content.ViewerFor(readSession(c)))
		return next(c)
	}
}

func readSession(c echo.Context) *content.Session {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	id, _ := sess.Values["user_id"].(string)
	email, _ := sess.Values["email"].(string)
	issued, _ := sess.Values["issued_at"].(int64)
	if id == "" {
		return nil
	}
	issuedAt := time.Unix(issued, 0).UTC()
	if time.Since(issuedAt) > sessionMaxAge {
		return nil
	}
	return &content.Session{UserID: id, Email: email, IssuedAt: issuedAt}
}

// ViewerFrom returns the viewer resolved for this request.
func ViewerFrom(c echo.Context) content.Viewer {
	v, _ := c.Get(viewerKey).(content.Viewer)
	return v
}

// IsAdmin reports whether the request carries a valid admin session.
func IsAdmin(c echo.Context) bool {
	return ViewerFrom(c).Authenticated()
}

// requireAdmin lets a request through only when its session still belongs
// to an existing account. Sessions of removed accounts are cleared.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return unauthorized(c)
		}
		u, err := a.Auth.CurrentUser(c.Request().Context(), ViewerFrom(c))
		if errors.Is(err, ErrNotFound) {
			a.Log.Warn("session for unknown account", logger.String("user_id", ViewerFrom(c).Session.UserID))
			if err := clearAdminSession(c); err != nil {
				return err
			}
			return unauthorized(c)
		}
		if err != nil {
			return err
		}
		c.Set(adminUserKey, u)
		return next(c)
	}
}

func unauthorized(c echo.Context) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login/")
}

// AdminUser returns the account loaded by requireAdmin, if any.
func AdminUser(c echo.Context) (User, bool) {
	u, ok := c.Get(adminUserKey).(User)
	return u, ok
}

func setAdminSession(c echo.Context, s *content.Session) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["user_id"] = s.UserID
	sess.Values["email"] = s.Email
	sess.Values["issued_at"] = s.IssuedAt.Unix()
	c.Set(viewerKey, content.ViewerFor(s))
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	c.Set(viewerKey, content.Anonymous)
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
