// Package echomw provides the Echo middlewares of the report API.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

const (
	// Default env var holding the API token.
	EnvAPIBearerToken = "PERMIT_REPORT_API_TOKEN"

	// Realm for WWW-Authenticate header.
	authRealm = "permit-report"
)

// BearerTokenFromEnv reads the expected token from the configured env var.
func BearerTokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(Cfg.BearerTokenEnv))
}

/*
RequireBearerToken validates Authorization: Bearer <token> against expected.
An empty expected token rejects every request.
*/
func RequireBearerToken(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return unauthorized(c)
			}

			received, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}

			if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
				return unauthorized(c)
			}
			return next(c)
		}
	}
}

// scheme is case-insensitive, extra spaces are allowed
func bearerToken(header string) (token string, ok bool) {
	header = strings.TrimSpace(header)
	const bearer = "bearer "
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", false
	}
	token = strings.TrimSpace(header[len(bearer):])
	return token, token != ""
}

func unauthorized(c echo.Context) error {
	LogRouteAccess(c, tl.Info, "Unauthorized access attempt", palette.Yellow)

	c.Response().Header().Set("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}
