package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tuumbleweed/xerr"
)

type sendgridClient interface {
	Send(message *mail.SGMailV3) (*rest.Response, error)
}

type sendgridSender struct {
	client sendgridClient
}

// newSendgridSender reads SENDGRID_API_KEY.
func newSendgridSender() (delivery sendgridSender, e *xerr.Error) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		e = xerr.NewError(fmt.Errorf("SENDGRID_API_KEY must be set"), "configure sendgrid", "SENDGRID_API_KEY")
		return sendgridSender{}, e
	}
	return sendgridSender{client: sendgrid.NewSendClient(apiKey)}, e
}

func buildSendgridMessage(message Message) *mail.SGMailV3 {
	sendgridMessage := mail.NewV3Mail()
	sendgridMessage.SetFrom(mail.NewEmail("", message.Sender))
	sendgridMessage.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range message.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	sendgridMessage.AddPersonalizations(personalization)

	if message.Text != "" {
		sendgridMessage.AddContent(mail.NewContent("text/plain", message.Text))
	}
	if message.HTML != "" {
		sendgridMessage.AddContent(mail.NewContent("text/html", message.HTML))
	}

	for _, attachment := range message.Attachments {
		sendgridAttachment := mail.NewAttachment()
		sendgridAttachment.SetContent(base64.StdEncoding.EncodeToString(attachment.Content))
		sendgridAttachment.SetType(attachment.ContentType)
		sendgridAttachment.SetFilename(attachment.FileName)
		sendgridAttachment.SetDisposition("attachment")
		sendgridMessage.AddAttachment(sendgridAttachment)
	}
	return sendgridMessage
}

// context is unused: the sendgrid client has no context-aware Send.
func (delivery sendgridSender) send(_ context.Context, message Message) (messageID string, e *xerr.Error) {
	response, err := delivery.client.Send(buildSendgridMessage(message))
	if err != nil {
		e = xerr.NewError(err, "send email via sendgrid", message.Subject)
		return "", e
	}
	if response.StatusCode >= 300 {
		e = xerr.NewError(fmt.Errorf("status %d: %s", response.StatusCode, response.Body), "send email via sendgrid", message.Subject)
		return "", e
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		messageID = ids[0]
	}
	return messageID, e
}
