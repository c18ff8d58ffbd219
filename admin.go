package portfolio

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
	"github.com/eringen/portfolio/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard/")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login/")
}

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard/")
	}
	return Render(c, a.Views.AdminLogin(a.page(c, "Sign in"), "", ""))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	email := strings.TrimSpace(c.FormValue("email"))
	if !a.loginLimiter.Check(ip) {
		wait := a.loginLimiter.RetryAfter(ip).Round(time.Second)
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(wait.Seconds())))
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.AdminLogin(a.page(c, "Sign in"),
			"Too many login attempts. Try again later.", email))
	}

	s, err := a.Auth.SignIn(c.Request().Context(), email, c.FormValue("password"))
	if errors.Is(err, ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		a.Log.Warn("login failed", logger.String("ip", ip))
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.page(c, "Sign in"),
			"Invalid email or password.", email))
	}
	if err != nil {
		return err
	}

	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, s); err != nil {
		return err
	}
	a.Log.Info("admin signed in", logger.String("user_id", s.UserID))
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard/")
}

// handleLogout ends the session. It needs no body or CSRF token.
func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return redirectOrJSON(c, "/admin/login/", map[string]bool{"success": true})
}

func (a *App) handleDashboard(c echo.Context) error {
	active, ok := content.ParseCollection(c.QueryParam("tab"))
	if !ok {
		active = content.Blogs
	}
	return a.renderDashboard(c, active, c.QueryParam("msg"))
}

func (a *App) renderDashboard(c echo.Context, active content.Collection, msg string) error {
	code := http.StatusOK
	all, err := a.Library.Overview(c.Request().Context(), ViewerFrom(c), 0)
	if err != nil {
		all = nil
		msg = "Failed to load items. Please try again."
		code = http.StatusInternalServerError
	}
	sections := make([]views.Section, 0, len(content.Collections))
	for _, coll := range content.Collections {
		sections = append(sections, views.Section{Collection: coll, Items: all[coll]})
	}
	return RenderStatus(c, code, a.Views.AdminDashboard(a.page(c, "Dashboard"), sections, active, msg))
}

// dashboardURL is where admin actions land after a form post.
func dashboardURL(coll content.Collection, msg string) string {
	q := url.Values{}
	q.Set("tab", string(coll))
	if msg != "" {
		q.Set("msg", msg)
	}
	return "/admin/dashboard/?" + q.Encode()
}

func (a *App) handleToggleDraft(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	draft, err := a.Library.ToggleDraft(c.Request().Context(), coll, id)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return redirectOrJSONError(c, dashboardURL(coll, "Failed to update item. Please try again."))
	}
	msg := "Published"
	if draft {
		msg = "Moved to drafts"
	}
	return redirectOrJSON(c, dashboardURL(coll, msg), map[string]any{"success": true, "is_draft": draft})
}

func (a *App) handleDelete(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	err = a.Library.Delete(c.Request().Context(), coll, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return redirectOrJSONError(c, dashboardURL(coll, "Failed to delete item. Please try again."))
	}
	return redirectOrJSON(c, dashboardURL(coll, "Deleted"), map[string]bool{"success": true})
}

// redirectOrJSONError reports a failed admin action with a generic message.
func redirectOrJSONError(c echo.Context, to string) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "operation failed"})
	}
	return c.Redirect(http.StatusSeeOther, to)
}
