package handler

import (
	"errors"
	"net/http"

	"auth-gate/internal/domain"

	"github.com/labstack/echo/v4"
)

// failResponse is the error envelope shared by all handlers.
type failResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// successResponse is the envelope for successful JSON responses.
type successResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// respondError maps a domain error onto an HTTP status and writes the
// client-visible fail envelope.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAuthCode):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "The authorization code is not valid",
		})

	case errors.Is(err, domain.ErrUpstreamUnauthorized):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "Could not get user profile unauthorized",
		})

	case errors.Is(err, domain.ErrCredentialMissing),
		errors.Is(err, domain.ErrCredentialInvalid),
		errors.Is(err, domain.ErrCredentialExpired),
		errors.Is(err, domain.ErrUserGone):
		return c.JSON(http.StatusUnauthorized, failResponse{
			Status:  "fail",
			Message: "Authentication required",
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
