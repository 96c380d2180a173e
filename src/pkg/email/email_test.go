package email

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/tuumbleweed/xerr"
)

func sampleMessage() Message {
	return Message{
		Sender:     "reports@example.org",
		Recipients: []string{"a@example.org", "b@example.org"},
		Subject:    "Clearance report",
		Text:       "See attachment.",
		HTML:       "<p>See attachment.</p>",
		Attachments: []Attachment{
			{FileName: "clearance.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 fake")},
		},
	}
}

func TestBuildRawMessage(t *testing.T) {
	raw, err := buildRawMessage(sampleMessage())
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Header.Get("To") != "a@example.org, b@example.org" {
		t.Errorf("To = %q", parsed.Header.Get("To"))
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("content type = %q (%v)", mediaType, err)
	}

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	var parts []*multipart.Part
	var attachmentBody []byte
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		parts = append(parts, part)
		if part.FileName() == "clearance.pdf" {
			encoded, _ := io.ReadAll(part)
			attachmentBody, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if string(attachmentBody) != "%PDF-1.4 fake" {
		t.Errorf("attachment = %q", attachmentBody)
	}
}

func TestWrapBase64(t *testing.T) {
	wrapped := wrapBase64(make([]byte, 200))
	for _, line := range strings.Split(strings.TrimSuffix(wrapped, "\r\n"), "\r\n") {
		if len(line) > 76 {
			t.Errorf("line of %d characters", len(line))
		}
	}
}

func TestBuildSendgridMessage(t *testing.T) {
	built := buildSendgridMessage(sampleMessage())
	if built.Subject != "Clearance report" || built.From.Address != "reports@example.org" {
		t.Errorf("header fields = %+v", built)
	}
	if len(built.Personalizations) != 1 || len(built.Personalizations[0].To) != 2 {
		t.Errorf("personalizations = %+v", built.Personalizations)
	}
	if len(built.Content) != 2 || len(built.Attachments) != 1 {
		t.Fatalf("content = %d, attachments = %d", len(built.Content), len(built.Attachments))
	}
	if built.Attachments[0].Content != base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")) {
		t.Errorf("attachment content = %q", built.Attachments[0].Content)
	}
}

type fakeSender struct {
	sent []Message
	err  bool
}

func (fake *fakeSender) send(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	if fake.err {
		e = xerr.NewError(errors.New("rejected"), "send email via fake", message.Subject)
		return "", e
	}
	fake.sent = append(fake.sent, message)
	return "fake-1", e
}

func withFakeSender(t *testing.T, fake *fakeSender) {
	t.Helper()
	original := senderFor
	senderFor = func(provider Provider) (delivery sender, e *xerr.Error) { return fake, nil }
	t.Cleanup(func() { senderFor = original })
}

func TestSendMessage(t *testing.T) {
	enabled, disabled := true, false

	t.Run("sends through provider", func(t *testing.T) {
		fake := &fakeSender{}
		withFakeSender(t, fake)
		e := SendMessage(ProviderMailgun, &enabled, "r@example.org", []string{" a@example.org ", ""}, "s", "t", "", nil)
		if e != nil {
			t.Fatal("SendMessage returned error")
		}
		if len(fake.sent) != 1 || len(fake.sent[0].Recipients) != 1 || fake.sent[0].Recipients[0] != "a@example.org" {
			t.Errorf("sent = %+v", fake.sent)
		}
	})

	t.Run("disabled sends nothing", func(t *testing.T) {
		fake := &fakeSender{}
		withFakeSender(t, fake)
		if e := SendMessage(ProviderSES, &disabled, "r@example.org", []string{"a@example.org"}, "s", "t", "", nil); e != nil {
			t.Fatal("SendMessage returned error")
		}
		if e := SendMessage(ProviderSES, nil, "r@example.org", []string{"a@example.org"}, "s", "t", "", nil); e != nil {
			t.Fatal("SendMessage returned error")
		}
		if len(fake.sent) != 0 {
			t.Errorf("sent = %+v", fake.sent)
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		withFakeSender(t, &fakeSender{err: true})
		if e := SendMessage(ProviderSendgrid, &enabled, "r@example.org", []string{"a@example.org"}, "s", "t", "", nil); e == nil {
			t.Error("expected error")
		}
	})

	t.Run("no recipients", func(t *testing.T) {
		if e := SendMessage(ProviderSendgrid, &enabled, "r@example.org", []string{" "}, "s", "t", "", nil); e == nil {
			t.Error("expected error")
		}
	})
}

func TestUnknownProvider(t *testing.T) {
	if _, e := senderFor(Provider("pigeon")); e == nil {
		t.Error("expected error for unknown provider")
	}
}
