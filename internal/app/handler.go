package app

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/stolasapp/wicket/internal/app/component"
	"github.com/stolasapp/wicket/internal/sec"
	"github.com/stolasapp/wicket/internal/storage/db"
)

const errInvalidLoginType = "invalid choice of form submission: must be 'login' or 'register'"

type handler struct {
	gateway *sec.Gateway
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.home)
	e.GET("/login", h.loginForm)
	e.POST("/login", h.login)
	e.GET("/login/available", h.available)
	e.POST("/logout", h.logout)
}

func (h handler) home(c echo.Context) error {
	id := sec.GetIdentity(c.Request().Context())
	if !id.Authenticated {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return render(c, http.StatusOK, component.HomePage(id.User.Name))
}

func (h handler) loginForm(c echo.Context) error {
	redirectTo := safeRedirect(c.QueryParam("redirectTo"))
	if sec.GetIdentity(c.Request().Context()).Authenticated {
		return c.Redirect(http.StatusSeeOther, redirectTo)
	}
	return render(c, http.StatusOK, component.LoginPage(component.LoginProps{
		LoginType:  component.LoginTypeLogin,
		RedirectTo: redirectTo,
	}))
}

func (h handler) login(c echo.Context) error {
	ctx := c.Request().Context()
	props := component.LoginProps{
		LoginType:  c.FormValue("loginType"),
		Username:   c.FormValue("username"),
		RedirectTo: safeRedirect(c.FormValue("redirectTo")),
	}
	password := c.FormValue("password")

	var (
		session db.Session
		err     error
	)
	switch props.LoginType {
	case component.LoginTypeLogin:
		session, err = h.gateway.Login(ctx, props.Username, password)
	case component.LoginTypeRegister:
		session, err = h.gateway.Register(ctx, props.Username, password)
	default:
		props.Error = errInvalidLoginType
		return render(c, http.StatusBadRequest, component.LoginPage(props))
	}

	var authErr sec.AuthError
	switch {
	case errors.As(err, &authErr):
		props.Error = authErr.Error()
		return render(c, http.StatusUnprocessableEntity, component.LoginPage(props))
	case err != nil:
		return err
	}

	c.Response().Header().Add(echo.HeaderSetCookie, h.gateway.Codec().Encode(session.Token))
	return c.Redirect(http.StatusSeeOther, props.RedirectTo)
}

func (h handler) logout(c echo.Context) error {
	if err := h.gateway.Logout(c.Request().Context(), cookieHeader(c.Request())); err != nil {
		return err
	}
	c.Response().Header().Add(echo.HeaderSetCookie, h.gateway.Codec().Clear())
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h handler) available(c echo.Context) error {
	ok, err := h.gateway.UsernameAvailable(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return err
	}
	if ok {
		return c.String(http.StatusOK, "available")
	}
	return c.String(http.StatusOK, "unavailable")
}

func render(c echo.Context, status int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// cookieHeader joins all Cookie headers on req into one.
func cookieHeader(req *http.Request) string {
	return strings.Join(req.Header.Values("Cookie"), "; ")
}

// safeRedirect restricts post-login redirects to paths on this site.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return target
}
