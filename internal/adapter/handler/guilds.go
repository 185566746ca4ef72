package handler

import (
	"net/http"

	appmiddleware "auth-gate/middleware"
	"auth-gate/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GuildsHandler serves the guild list of the authenticated user.
// Guild resolution is opt-in: it only happens on this endpoint, never as part
// of the session middleware itself.
type GuildsHandler struct {
	uc *usecase.ResolveGuilds
}

// NewGuildsHandler creates a new guilds handler.
func NewGuildsHandler(uc *usecase.ResolveGuilds) *GuildsHandler {
	return &GuildsHandler{uc: uc}
}

// Handle serves /auth/guilds.
func (h *GuildsHandler) Handle(c echo.Context) error {
	user := appmiddleware.DBUser(c)

	guilds, err := h.uc.Execute(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data:   guilds,
	})
}
