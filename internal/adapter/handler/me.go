package handler

import (
	"net/http"

	appmiddleware "auth-gate/middleware"

	"github.com/labstack/echo/v4"
)

// MeHandler returns the resolved identity of the authenticated session.
type MeHandler struct{}

// NewMeHandler creates a new me handler.
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// meData combines the local user record and the upstream profile.
type meData struct {
	UserID  string      `json:"userId"`
	Profile interface{} `json:"profile"`
}

// Handle serves /auth/me for sessions admitted by RequireSession.
func (h *MeHandler) Handle(c echo.Context) error {
	user := appmiddleware.DBUser(c)
	profile := appmiddleware.DiscordUser(c)

	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data: meData{
			UserID:  user.UserID,
			Profile: profile,
		},
	})
}
