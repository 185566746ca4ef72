package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const internalAuthHeader = "X-Internal-Auth"

// InternalAuth guards operator endpoints such as the cache sweep trigger
// with a shared secret. Comparison is constant-time.
func InternalAuth(sharedSecret string) echo.MiddlewareFunc {
	secret := []byte(sharedSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := []byte(c.Request().Header.Get(internalAuthHeader))
			if len(provided) == 0 {
				return c.JSON(http.StatusUnauthorized, failResponse{
					Status:  "fail",
					Message: "Missing internal auth header",
				})
			}
			if subtle.ConstantTimeCompare(provided, secret) != 1 {
				return c.JSON(http.StatusForbidden, failResponse{
					Status:  "fail",
					Message: "Invalid internal auth",
				})
			}
			return next(c)
		}
	}
}
