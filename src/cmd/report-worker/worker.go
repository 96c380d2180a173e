package main

import (
	"context"
	"errors"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/export"
	"permit-report/src/pkg/queue"
	"permit-report/src/pkg/store"
)

var errConsume = errors.New("export request consumption failed")

type jobRows interface {
	Get(ctx context.Context, id string) (job store.Job, found bool, e *xerr.Error)
	Fail(ctx context.Context, id string, message string) (e *xerr.Error)
}

type exportRunner interface {
	Export(ctx context.Context, request export.Request) (output export.Output, e *xerr.Error)
}

type exportWorker struct {
	exporter exportRunner
	jobs     jobRows
	// datasetPath is used when a message names none; empty means export.Cfg.DatasetPath.
	datasetPath string
}

/*
handle runs one queued export. A failed export is recorded on its job row and
the message is still acknowledged; only a cancelled context (shutdown) or an
unreadable job store sends it back to the queue.
*/
func (worker exportWorker) handle(ctx context.Context, message *queue.ExportRequestMessage) (e *xerr.Error) {
	format, e := export.ParseFormat(message.Format)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Dropping job '%s': unsupported format '%s'", message.JobID, message.Format)
		return nil
	}

	_, queued, e := worker.jobs.Get(ctx, message.JobID)
	if e != nil {
		return e
	}

	datasetPath := message.DatasetPath
	if datasetPath == "" {
		datasetPath = worker.datasetPath
	}
	if datasetPath == "" {
		datasetPath = export.Cfg.DatasetPath
	}
	dataset, e := export.LoadDataset(datasetPath)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Job '%s' has no readable dataset at '%s'", message.JobID, datasetPath)
		if queued {
			failErr := worker.jobs.Fail(ctx, message.JobID, "dataset unavailable")
			if failErr != nil {
				tl.Log(tl.Warning, palette.Yellow, "Unable to mark job '%s' failed", message.JobID)
			}
		}
		return nil
	}

	_, e = worker.exporter.Export(ctx, export.Request{
		JobID:      message.JobID,
		Kind:       message.Kind,
		Format:     format,
		FileName:   message.FileName,
		Criteria:   message.Criteria,
		Dataset:    dataset,
		Recipients: message.Recipients,
		Archive:    message.Archive,
		Queued:     queued,
	})
	if e != nil && ctx.Err() != nil {
		return e
	}
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Job '%s' failed and stays failed", message.JobID)
	}
	return nil
}
