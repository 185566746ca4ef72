package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"auth-gate/internal/domain"
	"auth-gate/internal/usecase"
	"auth-gate/utils/logger"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the signed session credential.
const SessionCookieName = "JWT"

// Context keys for the identity attached by RequireSession.
const (
	ContextKeyDBUser      = "db_user"
	ContextKeyDiscordUser = "discord_user"
)

// failResponse is the error envelope written on every rejection.
type failResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SessionAuth authenticates requests from their session cookie and attaches
// the resolved identity to the request context.
type SessionAuth struct {
	authenticate *usecase.Authenticate
	logger       *slog.Logger
}

// NewSessionAuth creates a new session authentication middleware.
func NewSessionAuth(authenticate *usecase.Authenticate, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{authenticate: authenticate, logger: logger}
}

// RequireSession rejects requests without a valid session. On success the
// downstream handler finds the user record and upstream profile in the echo
// context. The user store is never written on this path.
func (m *SessionAuth) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			cookie, err := c.Cookie(SessionCookieName)
			if err != nil {
				return reject(c, domain.ErrCredentialMissing)
			}

			start := time.Now()
			result, err := m.authenticate.Execute(ctx, cookie.Value)
			if err != nil {
				m.logger.WarnContext(ctx, "authentication rejected", "error", err)
				return reject(c, err)
			}

			// Downstream handlers and their logs see who the request belongs to.
			ctx = logger.WithUserID(ctx, result.User.UserID)
			c.SetRequest(c.Request().WithContext(ctx))

			if logger.GlobalContext != nil {
				logger.GlobalContext.LogDuration(ctx, "session_validate", time.Since(start).Milliseconds())
			}

			c.Set(ContextKeyDBUser, result.User)
			c.Set(ContextKeyDiscordUser, result.Profile)

			return next(c)
		}
	}
}

// DBUser returns the user record attached by RequireSession, or nil when the
// request was not authenticated.
func DBUser(c echo.Context) *domain.UserRecord {
	user, _ := c.Get(ContextKeyDBUser).(*domain.UserRecord)
	return user
}

// DiscordUser returns the upstream profile attached by RequireSession.
func DiscordUser(c echo.Context) *domain.Profile {
	profile, _ := c.Get(ContextKeyDiscordUser).(*domain.Profile)
	return profile
}

// reject terminates the request with the client-visible error envelope.
// Nothing is recovered locally; every failure ends the request.
func reject(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCredentialMissing):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "You are not logged in! Please log in to get access.",
		})

	case errors.Is(err, domain.ErrCredentialInvalid),
		errors.Is(err, domain.ErrCredentialExpired):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "Invalid or expired session. Please log in again.",
		})

	case errors.Is(err, domain.ErrUserGone):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "The user belonging to this token does no longer exist.",
		})

	case errors.Is(err, domain.ErrUpstreamUnauthorized):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "Could not get user profile unauthorized",
		})

	case errors.Is(err, domain.ErrUpstreamFailure):
		return c.JSON(http.StatusBadGateway, failResponse{
			Status:  "fail",
			Message: "Identity provider unavailable",
		})

	default:
		return c.JSON(http.StatusInternalServerError, failResponse{
			Status:  "fail",
			Message: "Something went wrong",
		})
	}
}
