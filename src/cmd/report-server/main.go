package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/archive"
	"permit-report/src/pkg/config"
	"permit-report/src/pkg/document"
	echomw "permit-report/src/pkg/echo-middleware"
	"permit-report/src/pkg/email"
	"permit-report/src/pkg/export"
	"permit-report/src/pkg/queue"
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/server"
	"permit-report/src/pkg/store"
)

/*
main serves the report API until SIGINT/SIGTERM.

Enqueueing needs a reachable queue broker; without one the synchronous export
routes still work.
*/
func main() {
	config.CheckIfEnvVarsPresent(echomw.EnvAPIBearerToken)

	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	flag.Parse()
	config.InitializeConfig(*configPath)

	server.InitializeConfig(config.Section[server.Config]("server"))
	echomw.InitializeConfig(config.Section[echomw.Config]("middleware"))
	export.InitializeConfig(config.Section[export.Config]("export"))
	document.InitializeConfig(config.Section[document.Config]("document"))
	store.InitializeConfig(config.Section[store.Config]("storage"))
	queue.InitializeConfig(config.Section[queue.Config]("queue"))
	email.InitializeConfig(config.Section[email.Config]("email"))
	archive.InitializeConfig(config.Section[archive.Config]("archive"))

	jobs, e := store.Open(store.Cfg.DatabasePath)
	e.QuitIf(xerr.ErrorTypeError)
	defer jobs.Close()

	exporter, e := export.NewFromConfig(jobs)
	e.QuitIf(xerr.ErrorTypeError)

	options := server.Options{
		Exporter: exporter,
		Jobs:     jobs,
		LoadDataset: func() (report.Dataset, *xerr.Error) {
			return export.LoadDataset(export.Cfg.DatasetPath)
		},
		BearerToken: echomw.BearerTokenFromEnv(),
		Limiter:     echomw.NewRateLimiter(echomw.Cfg.MiddlewareRateLimit, echomw.Cfg.MiddlewareBurst),
		BrotliLevel: echomw.Cfg.BrotliLevel,
		BodyLimit:   server.Cfg.BodyLimit,
	}
	if options.BearerToken == "" {
		tl.Log(tl.Warning, palette.YellowBold, "%s is %s, every API call will be rejected", echomw.Cfg.BearerTokenEnv, "empty")
	}

	client, e := queue.NewClient(queue.Cfg)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Queue at '%s' is %s, asynchronous exports disabled", queue.Cfg.Exchange, "unreachable")
	} else {
		defer client.Close()
		options.Queue = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := server.New(options)
	e = api.Run(ctx, server.Cfg.ListenAddress(), time.Duration(server.Cfg.ShutdownTimeout)*time.Second)
	e.QuitIf(xerr.ErrorTypeError)
}
