package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/document"
	"permit-report/src/pkg/email"
	"permit-report/src/pkg/region"
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/spreadsheet"
	"permit-report/src/pkg/store"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx"/"excel"/"spreadsheet" and "pdf"/"document".
func ParseFormat(raw string) (format Format, e *xerr.Error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, e
	case "pdf", "document":
		return FormatPDF, e
	default:
		e = xerr.NewError(fmt.Errorf("unsupported export format '%s'", raw), "parse export format", "xlsx or pdf")
		return "", e
	}
}

// ContentType is the MIME type of the format.
func (format Format) ContentType() string {
	if format == FormatPDF {
		return document.ContentType
	}
	return spreadsheet.ContentType
}

// Request is one export to run.
type Request struct {
	JobID      string
	Kind       string
	Format     Format
	FileName   string
	Criteria   report.FilterCriteria
	Dataset    report.Dataset
	Recipients []string
	Archive    bool
	// Queued marks a job row that already exists (created when it was enqueued).
	Queued bool
}

// Output is a rendered export.
type Output struct {
	JobID       string
	FileName    string
	Path        string
	ContentType string
	Content     []byte
	Pages       int
	Rows        int
	ArchiveURL  string
	Table       report.TableView
}

// JobRecorder is the job-history surface the exporter writes to.
type JobRecorder interface {
	Create(ctx context.Context, job store.Job) (created store.Job, e *xerr.Error)
	Start(ctx context.Context, id string) (e *xerr.Error)
	UpdateProgress(ctx context.Context, id string, progress int) (e *xerr.Error)
	Finish(ctx context.Context, id string, result store.Result) (e *xerr.Error)
	Fail(ctx context.Context, id string, message string) (e *xerr.Error)
}

// Archiver stores a copy of finished exports.
type Archiver interface {
	Upload(ctx context.Context, jobID string, fileName string, contentType string, content []byte) (location string, e *xerr.Error)
}

// Mailer sends a finished export to its recipients.
type Mailer func(recipients []string, subject string, text string, html string, attachments []email.Attachment) (e *xerr.Error)

/*
Exporter renders reports to files. Jobs, Archiver and Mailer are optional;
a nil one is skipped.
*/
type Exporter struct {
	Resolver        region.Resolver
	Documents       document.Renderer
	Jobs            JobRecorder
	Archiver        Archiver
	Mailer          Mailer
	OutputDirectory string
	WriteSummary    bool
	// OnProgress, when set, sees every progress update of every job.
	OnProgress func(jobID string, percent int)
}

// ConfiguredMailer sends through the configured email provider.
func ConfiguredMailer(sendEmails bool) Mailer {
	return func(recipients []string, subject string, text string, html string, attachments []email.Attachment) (e *xerr.Error) {
		return email.SendMessage(
			email.Provider(email.Cfg.Provider), &sendEmails, email.Cfg.Sender, recipients,
			subject, text, html, attachments,
		)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DefaultFileName is "<kind>-<date label>.<format>" with unsafe characters dashed.
func DefaultFileName(kind string, dateLabel string, format Format) string {
	base := unsafeFileChars.ReplaceAllString(kind+"-"+dateLabel, "-")
	base = strings.Trim(strings.ToLower(base), "-")
	return base + "." + string(format)
}

func (exporter *Exporter) fileName(request Request, built report.Report) string {
	if name := strings.TrimSpace(filepath.Base(request.FileName)); name != "" && name != "." && name != string(filepath.Separator) {
		if filepath.Ext(name) == "" {
			name += "." + string(request.Format)
		}
		return name
	}
	return DefaultFileName(built.Kind.Name, built.DateLabel, request.Format)
}

/*
Render builds the report and renders it in memory. progress receives page
percentages for documents; spreadsheets report 100 once.
*/
func (exporter *Exporter) Render(request Request, progress document.ProgressFunc) (output Output, e *xerr.Error) {
	kind, err := report.KindByName(request.Kind)
	if err != nil {
		e = xerr.NewError(err, "select report kind", request.Kind)
		return Output{}, e
	}

	built := report.Build(request.Dataset, request.Criteria, kind, exporter.Resolver)
	output = Output{
		JobID:       request.JobID,
		FileName:    exporter.fileName(request, built),
		ContentType: request.Format.ContentType(),
		Rows:        built.RowCount(),
		Table:       report.Table(built),
	}

	switch request.Format {
	case FormatXLSX:
		output.Content, e = spreadsheet.RenderBytes(built)
		output.Pages = 1
		if e == nil && progress != nil {
			progress(100)
		}
	case FormatPDF:
		var rendered document.Document
		rendered, e = exporter.Documents.Render(built, progress)
		output.Content, output.Pages = rendered.Content, rendered.Pages
	default:
		e = xerr.NewError(fmt.Errorf("unsupported export format '%s'", request.Format), "render export", request.JobID)
	}
	if e != nil {
		return Output{}, e
	}
	return output, e
}

/*
Export renders the request, writes it under OutputDirectory, then archives and
mails it. The job row follows it through running, progress and done/failed.
A missing JobID is generated.
*/
func (exporter *Exporter) Export(ctx context.Context, request Request) (output Output, e *xerr.Error) {
	if request.JobID == "" {
		request.JobID = uuid.New().String()
	}
	startedAt := time.Now()

	e = exporter.recordStart(ctx, request)
	if e != nil {
		return Output{}, e
	}

	output, e = exporter.Render(request, func(percent int) {
		if exporter.OnProgress != nil {
			exporter.OnProgress(request.JobID, percent)
		}
		if exporter.Jobs == nil {
			return
		}
		progressErr := exporter.Jobs.UpdateProgress(ctx, request.JobID, percent)
		if progressErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Unable to record progress '%v' of job '%s'", percent, request.JobID)
		}
	})
	if e != nil {
		exporter.recordFailure(ctx, request.JobID, "render failed")
		return Output{}, e
	}

	e = exporter.writeFiles(request.JobID, &output)
	if e != nil {
		exporter.recordFailure(ctx, request.JobID, "write failed")
		return Output{}, e
	}

	if request.Archive && exporter.Archiver != nil {
		location, archiveErr := exporter.Archiver.Upload(ctx, request.JobID, output.FileName, output.ContentType, output.Content)
		if archiveErr != nil {
			// the local file is still good, keep the job successful
			tl.Log(tl.Warning, palette.Yellow, "Archiving '%s' failed, keeping local copy only", output.FileName)
		} else {
			output.ArchiveURL = location
		}
	}

	if len(request.Recipients) > 0 && exporter.Mailer != nil {
		exporter.mail(request, output)
	}

	if exporter.Jobs != nil {
		finishErr := exporter.Jobs.Finish(ctx, request.JobID, store.Result{
			FilePath:   output.Path,
			SizeBytes:  int64(len(output.Content)),
			Pages:      output.Pages,
			Rows:       output.Rows,
			ArchiveURL: output.ArchiveURL,
		})
		if finishErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Unable to mark job '%s' done", request.JobID)
		}
	}

	tl.Log(
		tl.Notice, palette.GreenBold, "Exported job '%s' to '%s' (%v rows, %v pages) in %s",
		request.JobID, output.Path, output.Rows, output.Pages, time.Since(startedAt).Round(time.Millisecond),
	)
	return output, e
}

/*
JobFor describes a request as a queued job row, the way Export records it.
*/
func JobFor(request Request) (job store.Job, e *xerr.Error) {
	criteria, err := json.Marshal(request.Criteria)
	if err != nil {
		e = xerr.NewError(err, "marshal export criteria", request.JobID)
		return store.Job{}, e
	}
	job = store.Job{
		ID:         request.JobID,
		Kind:       request.Kind,
		Format:     string(request.Format),
		Criteria:   string(criteria),
		FileName:   request.FileName,
		Recipients: strings.Join(request.Recipients, ","),
	}
	return job, e
}

func (exporter *Exporter) recordStart(ctx context.Context, request Request) (e *xerr.Error) {
	if exporter.Jobs == nil {
		return e
	}
	if request.Queued {
		return exporter.Jobs.Start(ctx, request.JobID)
	}

	job, e := JobFor(request)
	if e != nil {
		return e
	}
	_, e = exporter.Jobs.Create(ctx, job)
	if e != nil {
		return e
	}
	return exporter.Jobs.Start(ctx, request.JobID)
}

func (exporter *Exporter) recordFailure(ctx context.Context, jobID string, message string) {
	if exporter.Jobs == nil {
		return
	}
	failErr := exporter.Jobs.Fail(ctx, jobID, message)
	if failErr != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unable to mark job '%s' failed", jobID)
	}
}

func (exporter *Exporter) writeFiles(jobID string, output *Output) (e *xerr.Error) {
	directory := filepath.Join(exporter.OutputDirectory, jobID)
	e = ensureOutputDirectory(directory)
	if e != nil {
		return e
	}

	output.Path = filepath.Join(directory, output.FileName)
	e = saveExportFile(output.Path, output.Content)
	if e != nil {
		return e
	}

	if exporter.WriteSummary {
		summaryPath := strings.TrimSuffix(output.Path, filepath.Ext(output.Path)) + ".summary.json"
		e = saveJSONToFile(summaryPath, output.Table)
	}
	return e
}

func (exporter *Exporter) mail(request Request, output Output) {
	subject := fmt.Sprintf(email.Cfg.Subject, output.Table.Title)
	text := fmt.Sprintf(
		"%s for %s: %d rows, %d pages.\nThe %s export is attached.",
		output.Table.Title, output.Table.DateLabel, output.Rows, output.Pages, strings.ToUpper(string(request.Format)),
	)
	if output.ArchiveURL != "" {
		text += "\nArchived copy: " + output.ArchiveURL
	}

	mailErr := exporter.Mailer(request.Recipients, subject, text, "", []email.Attachment{{
		FileName:    output.FileName,
		ContentType: output.ContentType,
		Content:     output.Content,
	}})
	if mailErr != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unable to email '%s' to %v", output.FileName, request.Recipients)
	}
}
