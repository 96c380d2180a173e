package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"golang.org/x/sync/errgroup"

	"permit-report/src/pkg/archive"
	"permit-report/src/pkg/config"
	"permit-report/src/pkg/document"
	"permit-report/src/pkg/email"
	"permit-report/src/pkg/export"
	"permit-report/src/pkg/queue"
	"permit-report/src/pkg/store"
)

/*
main consumes export requests from the queue and runs them one at a time
until SIGINT/SIGTERM.
*/
func main() {
	config.CheckIfEnvVarsPresent(
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // archive bucket and ses
	)

	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	flag.Parse()
	config.InitializeConfig(*configPath)

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

	client, e := queue.NewClient(queue.Cfg)
	e.QuitIf(xerr.ErrorTypeError)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := exportWorker{exporter: exporter, jobs: jobs}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		e := client.Consume(groupCtx, worker.handle)
		if e != nil {
			return errConsume
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		tl.Log(tl.Info, palette.Purple, "Closing queue connection: %s", groupCtx.Err().Error())
		client.Close()
		return nil
	})

	err := group.Wait()
	xerr.QuitIfError(err, "Export worker stopped")
	tl.Log(tl.Notice, palette.GreenBold, "Export worker %s", "stopped")
}
