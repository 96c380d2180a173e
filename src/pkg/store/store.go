package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of an export job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one row of export_jobs.
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Format     string     `json:"format"`
	Status     Status     `json:"status"`
	Progress   int        `json:"progress"`
	Criteria   string     `json:"criteria"`
	FileName   string     `json:"fileName"`
	FilePath   string     `json:"-"`
	SizeBytes  int64      `json:"sizeBytes"`
	Pages      int        `json:"pages"`
	Rows       int        `json:"rows"`
	ArchiveURL string     `json:"archiveUrl,omitempty"`
	Recipients string     `json:"recipients,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Result is what a finished export reports back.
type Result struct {
	FilePath   string
	SizeBytes  int64
	Pages      int
	Rows       int
	ArchiveURL string
}

// Store keeps export job history in SQLite.
type Store struct {
	db *sql.DB
}

/*
Open creates the database directory, opens the database and applies
migrations.
*/
func Open(databasePath string) (store *Store, e *xerr.Error) {
	err := os.MkdirAll(filepath.Dir(databasePath), 0o755)
	if err != nil {
		e = xerr.NewError(err, "create database directory", filepath.Dir(databasePath))
		return nil, e
	}

	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		e = xerr.NewError(err, "open sqlite database", databasePath)
		return nil, e
	}
	// one writer at a time, sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		e = xerr.NewError(err, "ping sqlite database", databasePath)
		return nil, e
	}

	e = runMigrations(databasePath)
	if e != nil {
		db.Close()
		return nil, e
	}

	tl.Log(tl.Info1, palette.Green, "Opened export job store '%s'", databasePath)
	return &Store{db: db}, e
}

// Close releases the database.
func (store *Store) Close() (e *xerr.Error) {
	if store == nil || store.db == nil {
		return e
	}
	err := store.db.Close()
	if err != nil {
		e = xerr.NewError(err, "close sqlite database", "export_jobs")
	}
	return e
}

// fixed-width so timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Create inserts a new queued job. CreatedAt defaults to now.
func (store *Store) Create(ctx context.Context, job Job) (created Job, e *xerr.Error) {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
	}
	if job.Criteria == "" {
		job.Criteria = "{}"
	}

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO export_jobs (id, kind, format, status, progress, criteria, file_name, recipients, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Kind, job.Format, string(job.Status), job.Progress, job.Criteria, job.FileName, job.Recipients,
		formatTime(job.CreatedAt), formatTime(job.UpdatedAt),
	)
	if err != nil {
		e = xerr.NewError(err, "insert export job", job.ID)
		return Job{}, e
	}

	tl.Log(tl.Verbose, palette.CyanDim, "Recorded export job '%s' (%s %s)", job.ID, job.Kind, job.Format)
	return job, e
}

func (store *Store) exec(ctx context.Context, action string, id string, query string, args ...any) (e *xerr.Error) {
	result, err := store.db.ExecContext(ctx, query, args...)
	if err != nil {
		e = xerr.NewError(err, action, id)
		return e
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		e = xerr.NewError(errors.New("no such export job"), action, id)
		return e
	}
	return e
}

// Start marks a job running.
func (store *Store) Start(ctx context.Context, id string) (e *xerr.Error) {
	return store.exec(ctx, "mark export job running", id,
		`UPDATE export_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(StatusRunning), formatTime(time.Now()), id,
	)
}

// UpdateProgress stores the latest page percentage.
func (store *Store) UpdateProgress(ctx context.Context, id string, progress int) (e *xerr.Error) {
	return store.exec(ctx, "update export job progress", id,
		`UPDATE export_jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, formatTime(time.Now()), id,
	)
}

// Finish marks a job done and records its output.
func (store *Store) Finish(ctx context.Context, id string, result Result) (e *xerr.Error) {
	now := formatTime(time.Now())
	return store.exec(ctx, "mark export job done", id,
		`UPDATE export_jobs
		 SET status = ?, progress = 100, file_path = ?, size_bytes = ?, pages = ?, row_count = ?, archive_url = ?,
		     error = '', updated_at = ?, finished_at = ?
		 WHERE id = ?`,
		string(StatusDone), result.FilePath, result.SizeBytes, result.Pages, result.Rows, result.ArchiveURL,
		now, now, id,
	)
}

// Fail marks a job failed with a message.
func (store *Store) Fail(ctx context.Context, id string, message string) (e *xerr.Error) {
	now := formatTime(time.Now())
	return store.exec(ctx, "mark export job failed", id,
		`UPDATE export_jobs SET status = ?, error = ?, updated_at = ?, finished_at = ? WHERE id = ?`,
		string(StatusFailed), message, now, now, id,
	)
}

const selectColumns = `id, kind, format, status, progress, criteria, file_name, file_path, size_bytes, pages, row_count,
	archive_url, recipients, error, created_at, updated_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job Job, err error) {
	var status, createdAt, updatedAt string
	var finishedAt sql.NullString
	err = row.Scan(
		&job.ID, &job.Kind, &job.Format, &status, &job.Progress, &job.Criteria, &job.FileName, &job.FilePath,
		&job.SizeBytes, &job.Pages, &job.Rows, &job.ArchiveURL, &job.Recipients, &job.Error,
		&createdAt, &updatedAt, &finishedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.Status = Status(status)
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	if finishedAt.Valid {
		finished := parseTime(finishedAt.String)
		job.FinishedAt = &finished
	}
	return job, nil
}

// Get loads one job; found is false when the id is unknown.
func (store *Store) Get(ctx context.Context, id string) (job Job, found bool, e *xerr.Error) {
	row := store.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM export_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, false, e
	}
	if err != nil {
		e = xerr.NewError(err, "load export job", id)
		return Job{}, false, e
	}
	return job, true, e
}

// List returns the most recent jobs first.
func (store *Store) List(ctx context.Context, limit int) (jobs []Job, e *xerr.Error) {
	if limit <= 0 {
		limit = Cfg.ListLimit
	}
	rows, err := store.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM export_jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		e = xerr.NewError(err, "list export jobs", "export_jobs")
		return nil, e
	}
	defer rows.Close()

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			e = xerr.NewError(err, "scan export job", "export_jobs")
			return nil, e
		}
		jobs = append(jobs, job)
	}
	err = rows.Err()
	if err != nil {
		e = xerr.NewError(err, "iterate export jobs", "export_jobs")
		return nil, e
	}
	return jobs, e
}
