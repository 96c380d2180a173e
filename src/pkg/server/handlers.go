package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/export"
	"permit-report/src/pkg/queue"
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/store"
)

const HeaderExportJob = "X-Export-Job"

// reportRequest is the body shared by preview, export and enqueue.
type reportRequest struct {
	Kind       string                  `json:"kind"`
	Format     string                  `json:"format,omitempty"`
	FileName   string                  `json:"fileName,omitempty"`
	Criteria   report.FilterCriteria   `json:"criteria"`
	Results    []report.LocalityRecord `json:"results,omitempty"`
	Recipients []string                `json:"recipients,omitempty"`
	Archive    bool                    `json:"archive,omitempty"`
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

func (server *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// bind decodes the body and resolves its kind and dataset.
func (server *Server) bind(c echo.Context) (body reportRequest, kind report.Kind, dataset report.Dataset, status int, message string) {
	err := c.Bind(&body)
	if err != nil {
		return body, kind, dataset, http.StatusBadRequest, "invalid request body"
	}

	kind, err = report.KindByName(body.Kind)
	if err != nil {
		return body, kind, dataset, http.StatusBadRequest, err.Error()
	}

	if body.Results != nil {
		return body, kind, report.Dataset{Results: body.Results}, 0, ""
	}
	if server.LoadDataset == nil {
		return body, kind, report.Dataset{}, 0, ""
	}
	dataset, e := server.LoadDataset()
	if e != nil {
		return body, kind, dataset, http.StatusServiceUnavailable, "dataset unavailable"
	}
	return body, kind, dataset, 0, ""
}

func (server *Server) preview(c echo.Context) error {
	body, kind, dataset, status, message := server.bind(c)
	if status != 0 {
		return errorJSON(c, status, message)
	}

	built := report.Build(dataset, body.Criteria, kind, server.Exporter.Resolver)
	return c.JSON(http.StatusOK, report.Table(built))
}

// exportNow renders synchronously and answers with the file itself.
func (server *Server) exportNow(c echo.Context) error {
	format, e := export.ParseFormat(c.Param("format"))
	if e != nil {
		return errorJSON(c, http.StatusNotFound, fmt.Sprintf("unsupported export format '%s'", c.Param("format")))
	}
	body, _, dataset, status, message := server.bind(c)
	if status != 0 {
		return errorJSON(c, status, message)
	}

	jobID := uuid.New().String()
	c.Response().Header().Set(HeaderExportJob, jobID)
	output, e := server.Exporter.Export(c.Request().Context(), export.Request{
		JobID:      jobID,
		Kind:       body.Kind,
		Format:     format,
		FileName:   body.FileName,
		Criteria:   body.Criteria,
		Dataset:    dataset,
		Recipients: body.Recipients,
		Archive:    body.Archive,
	})
	if e != nil {
		return errorJSON(c, http.StatusInternalServerError, "export failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", output.FileName))
	return c.Blob(http.StatusOK, output.ContentType, output.Content)
}

/*
enqueue records a queued job and publishes it for a worker. Inline results
are written next to the job output so the worker can load them.
*/
func (server *Server) enqueue(c echo.Context) error {
	if server.Queue == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "export queue is not configured")
	}
	body, _, dataset, status, message := server.bind(c)
	if status != 0 {
		return errorJSON(c, status, message)
	}
	format, e := export.ParseFormat(body.Format)
	if e != nil {
		return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("unsupported export format '%s'", body.Format))
	}

	ctx := c.Request().Context()
	request := export.Request{
		JobID:      uuid.New().String(),
		Kind:       body.Kind,
		Format:     format,
		FileName:   body.FileName,
		Criteria:   body.Criteria,
		Recipients: body.Recipients,
		Archive:    body.Archive,
	}

	datasetPath := ""
	if body.Results != nil {
		datasetPath, e = export.SaveDataset(filepath.Join(server.Exporter.OutputDirectory, request.JobID), dataset)
		if e != nil {
			return errorJSON(c, http.StatusInternalServerError, "unable to stage dataset")
		}
	}

	job, e := export.JobFor(request)
	if e != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid criteria")
	}
	job, e = server.Jobs.Create(ctx, job)
	if e != nil {
		return errorJSON(c, http.StatusInternalServerError, "unable to record export job")
	}

	e = server.Queue.Publish(ctx, &queue.ExportRequestMessage{
		JobID:       request.JobID,
		Kind:        request.Kind,
		Format:      string(request.Format),
		FileName:    request.FileName,
		DatasetPath: datasetPath,
		Criteria:    request.Criteria,
		Recipients:  request.Recipients,
		Archive:     request.Archive,
		Timestamp:   time.Now().UTC(),
	})
	if e != nil {
		failErr := server.Jobs.Fail(ctx, request.JobID, "enqueue failed")
		if failErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Unable to mark job '%s' failed", request.JobID)
		}
		return errorJSON(c, http.StatusServiceUnavailable, "unable to enqueue export")
	}

	tl.Log(tl.Info, palette.Cyan, "Enqueued export job '%s' (%s %s)", job.ID, job.Kind, job.Format)
	return c.JSON(http.StatusAccepted, job)
}

func (server *Server) listJobs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	jobs, e := server.Jobs.List(c.Request().Context(), limit)
	if e != nil {
		return errorJSON(c, http.StatusInternalServerError, "unable to list export jobs")
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}

func (server *Server) findJob(c echo.Context) (job store.Job, status int, message string) {
	job, found, e := server.Jobs.Get(c.Request().Context(), c.Param("id"))
	if e != nil {
		return job, http.StatusInternalServerError, "unable to load export job"
	}
	if !found {
		return job, http.StatusNotFound, "export job not found"
	}
	return job, 0, ""
}

func (server *Server) getJob(c echo.Context) error {
	job, status, message := server.findJob(c)
	if status != 0 {
		return errorJSON(c, status, message)
	}
	return c.JSON(http.StatusOK, job)
}

func (server *Server) download(c echo.Context) error {
	job, status, message := server.findJob(c)
	if status != 0 {
		return errorJSON(c, status, message)
	}
	if job.Status != store.StatusDone || job.FilePath == "" {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":    "export is not finished",
			"status":   job.Status,
			"progress": job.Progress,
		})
	}
	return c.Attachment(job.FilePath, filepath.Base(job.FilePath))
}
