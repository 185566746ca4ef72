package handler

import (
	"net/http"
	"time"

	appmiddleware "auth-gate/middleware"
	"auth-gate/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// stateCookieName carries the OAuth state between /auth/login and the callback.
const stateCookieName = "oauth_state"

// AuthorizeURLBuilder builds the provider authorization URL for a state value.
type AuthorizeURLBuilder interface {
	AuthorizeURL(state string) string
}

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	ExpiryDays int
}

// AuthHandler handles the OAuth login flow and logout.
type AuthHandler struct {
	login     *usecase.Login
	logout    *usecase.Logout
	authorize AuthorizeURLBuilder
	cookies   CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(login *usecase.Login, logout *usecase.Logout, authorize AuthorizeURLBuilder, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{login: login, logout: logout, authorize: authorize, cookies: cookies}
}

// loginUser is the user object returned to the frontend after login.
type loginUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// HandleLogin returns the provider authorization URL. The frontend performs
// the actual redirect; the state value is pinned in a short-lived cookie.
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	state := uuid.NewString()

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		Path:     "/",
	})

	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data:   map[string]string{"url": h.authorize.AuthorizeURL(state)},
	})
}

// HandleCallback exchanges the authorization code and sets the session cookie.
func (h *AuthHandler) HandleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, failResponse{
			Status:  "fail",
			Message: "Missing authorization code",
		})
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "Invalid OAuth state",
		})
	}

	result, err := h.login.Execute(c.Request().Context(), code)
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     appmiddleware.SessionCookieName,
		Value:    result.Credential,
		Expires:  time.Now().Add(time.Duration(h.cookies.ExpiryDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		Path:     "/",
	})

	// The state cookie is single-use.
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	})

	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data: loginUser{
			UserID:   result.User.UserID,
			Username: result.Profile.Username,
			Avatar:   result.Profile.Avatar,
		},
	})
}

// HandleLogout invalidates the cached identity and expires the session cookie.
// Requires an authenticated session.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	user := appmiddleware.DBUser(c)

	h.logout.Execute(c.Request().Context(), user.UserID)

	c.SetCookie(&http.Cookie{
		Name:     appmiddleware.SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	})

	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data:   nil,
	})
}
