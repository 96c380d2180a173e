package email

import (
	"context"
	"fmt"
	"os"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/tuumbleweed/xerr"
)

type mailgunSender struct {
	client *mailgun.MailgunImpl
}

// newMailgunSender reads MAILGUN_DOMAIN and MAILGUN_API_KEY.
func newMailgunSender() (delivery mailgunSender, e *xerr.Error) {
	domain, apiKey := os.Getenv("MAILGUN_DOMAIN"), os.Getenv("MAILGUN_API_KEY")
	if domain == "" || apiKey == "" {
		e = xerr.NewError(fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY must be set"), "configure mailgun", domain)
		return mailgunSender{}, e
	}
	return mailgunSender{client: mailgun.NewMailgun(domain, apiKey)}, e
}

func (delivery mailgunSender) send(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	mailgunMessage := delivery.client.NewMessage(message.Sender, message.Subject, message.Text, message.Recipients...)
	if message.HTML != "" {
		mailgunMessage.SetHtml(message.HTML)
	}
	for _, attachment := range message.Attachments {
		mailgunMessage.AddBufferAttachment(attachment.FileName, attachment.Content)
	}

	_, messageID, err := delivery.client.Send(ctx, mailgunMessage)
	if err != nil {
		e = xerr.NewError(err, "send email via mailgun", message.Subject)
		return "", e
	}
	return messageID, e
}
