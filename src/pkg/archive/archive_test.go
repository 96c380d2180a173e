package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type fakeUploader struct {
	inputs []*s3manager.UploadInput
	bodies [][]byte
	err    error
}

func (fake *fakeUploader) Upload(input *s3manager.UploadInput, options ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return fake.UploadWithContext(context.Background(), input, options...)
}

func (fake *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, options ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if fake.err != nil {
		return nil, fake.err
	}
	body, _ := io.ReadAll(input.Body)
	fake.inputs = append(fake.inputs, input)
	fake.bodies = append(fake.bodies, body)
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(input.Key)}, nil
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	got := ObjectKey("permit-reports", "job-1", "../clearance.pdf", at)
	if got != "permit-reports/2024/03/job-1/clearance.pdf" {
		t.Errorf("ObjectKey = %q", got)
	}
}

func TestUpload(t *testing.T) {
	fake := &fakeUploader{}
	archiver := NewArchiverWithUploader(fake, Config{Bucket: "bucket", Prefix: "reports"})

	location, e := archiver.Upload(context.Background(), "job-1", "clearance.pdf", "application/pdf", []byte("%PDF"))
	if e != nil {
		t.Fatal("Upload returned error")
	}
	if len(fake.inputs) != 1 || aws.StringValue(fake.inputs[0].Bucket) != "bucket" {
		t.Fatalf("inputs = %+v", fake.inputs)
	}
	if string(fake.bodies[0]) != "%PDF" || aws.StringValue(fake.inputs[0].ContentType) != "application/pdf" {
		t.Errorf("body = %q", fake.bodies[0])
	}
	if location == "" {
		t.Error("empty location")
	}

	failing := NewArchiverWithUploader(&fakeUploader{err: errors.New("denied")}, Config{Bucket: "bucket"})
	if _, e := failing.Upload(context.Background(), "job-2", "x.xlsx", "application/octet-stream", nil); e == nil {
		t.Error("expected error")
	}
}

func TestNewArchiverDisabledWithoutBucket(t *testing.T) {
	archiver, e := NewArchiver(Config{})
	if archiver != nil || e != nil {
		t.Error("empty bucket must disable archiving")
	}
}
