package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Archiver copies finished exports to S3.
type Archiver struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

/*
NewArchiver creates an S3 uploader from the AWS_* environment. An empty bucket
means archiving is disabled and nil is returned without error.
*/
func NewArchiver(cfg Config) (archiver *Archiver, e *xerr.Error) {
	if cfg.Bucket == "" {
		tl.Log(tl.Info, palette.Purple, "Archive bucket is %s, exports stay local", "not set")
		return nil, e
	}

	awsSession, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		e = xerr.NewError(err, "create AWS session", cfg.Region)
		return nil, e
	}
	return NewArchiverWithUploader(s3manager.NewUploader(awsSession), cfg), e
}

// NewArchiverWithUploader wires a given uploader.
func NewArchiverWithUploader(uploader s3manageriface.UploaderAPI, cfg Config) *Archiver {
	return &Archiver{uploader: uploader, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

// ObjectKey lays exports out as <prefix>/<yyyy>/<mm>/<job id>/<file name>.
func ObjectKey(prefix string, jobID string, fileName string, at time.Time) string {
	return path.Join(prefix, at.UTC().Format("2006"), at.UTC().Format("01"), jobID, path.Base(fileName))
}

// Upload stores content and returns the object's location URL.
func (archiver *Archiver) Upload(ctx context.Context, jobID string, fileName string, contentType string, content []byte) (location string, e *xerr.Error) {
	key := ObjectKey(archiver.prefix, jobID, fileName, time.Now())

	output, err := archiver.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(archiver.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"job-id": aws.String(jobID),
		},
	})
	if err != nil {
		e = xerr.NewError(err, "upload export to S3", fmt.Sprintf("s3://%s/%s", archiver.bucket, key))
		return "", e
	}

	tl.Log(tl.Info1, palette.Green, "Archived '%s' to '%s'", fileName, output.Location)
	return output.Location, e
}
