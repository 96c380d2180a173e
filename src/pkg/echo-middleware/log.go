package echomw

import (
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		startedAt := time.Now()
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)

		err := next(c)
		if err != nil {
			c.Error(err) // commits the response so the status below is final
		}

		colorizer := palette.Green
		if c.Response().Status >= 400 {
			colorizer = palette.Yellow
		}
		tl.Log(
			routeLogLevel(c, tl.Info1), colorizer, "Route served: Method='%s', Path='%s', Status='%v', Took='%s'",
			c.Request().Method, c.Path(), c.Response().Status, time.Since(startedAt).Round(time.Millisecond),
		)
		return nil
	}
}

// Log route access
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == "/healthz" {
		colorizer = palette.CyanDim
	}
	tl.Log(routeLogLevel(c, logLevel), colorizer, "%s: Method='%s', Path='%s', ClientIP='%s'", actionName, c.Request().Method, c.Path(), c.RealIP())
}

// health probes are noisy, keep them out of normal output
func routeLogLevel(c echo.Context, logLevel tl.LogLevel) tl.LogLevel {
	if c.Path() == "/healthz" {
		return tl.Verbose
	}
	return logLevel
}
