// Package server exposes reports and exports over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	echomw "permit-report/src/pkg/echo-middleware"
	"permit-report/src/pkg/export"
	"permit-report/src/pkg/queue"
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/store"
)

// JobStore is the part of the job history the API reads and writes.
type JobStore interface {
	Create(ctx context.Context, job store.Job) (created store.Job, e *xerr.Error)
	Get(ctx context.Context, id string) (job store.Job, found bool, e *xerr.Error)
	List(ctx context.Context, limit int) (jobs []store.Job, e *xerr.Error)
	Fail(ctx context.Context, id string, message string) (e *xerr.Error)
}

// DatasetLoader returns the dataset used when a request carries no results.
type DatasetLoader func() (dataset report.Dataset, e *xerr.Error)

/*
Server wires the report handlers into Echo. Queue may be nil, in which case
POST /api/v1/exports answers 503.
*/
type Server struct {
	Echo        *echo.Echo
	Exporter    *export.Exporter
	Jobs        JobStore
	Queue       queue.Publisher
	LoadDataset DatasetLoader
}

type Options struct {
	Exporter    *export.Exporter
	Jobs        JobStore
	Queue       queue.Publisher
	LoadDataset DatasetLoader
	BearerToken string
	Limiter     *echomw.RateLimiter // nil disables rate limiting
	BrotliLevel int
	BodyLimit   string
}

// New builds the Echo instance with middleware and routes.
func New(options Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		Echo:        e,
		Exporter:    options.Exporter,
		Jobs:        options.Jobs,
		Queue:       options.Queue,
		LoadDataset: options.LoadDataset,
	}

	e.Use(middleware.Recover())
	e.Use(echomw.RouteAccessLoggerMiddleware)
	if options.Limiter != nil {
		e.Use(options.Limiter.Middleware)
	}
	if options.BodyLimit != "" {
		e.Use(middleware.BodyLimit(options.BodyLimit))
	}
	if options.BrotliLevel > 0 {
		e.Use(echomw.Brotli(options.BrotliLevel))
	}

	e.GET("/healthz", server.health)

	api := e.Group("/api/v1", echomw.RequireBearerToken(options.BearerToken))
	api.POST("/reports/preview", server.preview)
	api.POST("/reports/export/:format", server.exportNow)
	api.POST("/exports", server.enqueue)
	api.GET("/exports", server.listJobs)
	api.GET("/exports/:id", server.getJob)
	api.GET("/exports/:id/download", server.download)

	return server
}

/*
Run serves on address until ctx is cancelled, then shuts down gracefully
within shutdownTimeout.
*/
func (server *Server) Run(ctx context.Context, address string, shutdownTimeout time.Duration) (e *xerr.Error) {
	errs := make(chan error, 1)
	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "Serving report API on '%s'", address)
		errs <- server.Echo.Start(address)
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			e = xerr.NewError(err, "serve report API", address)
		}
		return e
	case <-ctx.Done():
	}

	tl.Log(tl.Info, palette.Purple, "Shutting down report API on '%s'", address)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Echo.Shutdown(shutdownCtx)
	if err != nil {
		e = xerr.NewError(err, "shut down report API", address)
		return e
	}
	tl.Log(tl.Info, palette.Green, "Report API on '%s' stopped", address)
	return e
}
