package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderSES      Provider = "ses"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendgrid Provider = "sendgrid"
)

// Attachment is a file sent along with the message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Message is a provider-neutral email.
type Message struct {
	Sender      string
	Recipients  []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// sender delivers one message and returns the provider's message id.
type sender interface {
	send(ctx context.Context, message Message) (messageID string, e *xerr.Error)
}

// senderFor is swapped in tests.
var senderFor = func(provider Provider) (delivery sender, e *xerr.Error) {
	switch provider {
	case ProviderSES:
		return newSESSender(), nil
	case ProviderMailgun:
		return newMailgunSender()
	case ProviderSendgrid:
		return newSendgridSender()
	default:
		e = xerr.NewError(fmt.Errorf("unknown provider '%s'", provider), "select email provider", "ses, mailgun or sendgrid")
		return nil, e
	}
}

/*
SendMessage delivers one email through provider. When sendEmails is nil or
false the message is only logged, which is how test runs avoid real sends.
*/
func SendMessage(
	provider Provider, sendEmails *bool, senderAddress string, recipients []string,
	subject string, text string, html string, attachments []Attachment,
) (e *xerr.Error) {
	message := Message{
		Sender:      senderAddress,
		Recipients:  cleanRecipients(recipients),
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}
	if len(message.Recipients) == 0 {
		e = xerr.NewError(fmt.Errorf("no recipients"), "send email", subject)
		return e
	}

	if sendEmails == nil || !*sendEmails {
		tl.Log(
			tl.Notice, palette.Yellow, "Not sending '%s' to %v via %s (%v attachments): %s",
			subject, message.Recipients, provider, len(attachments), "sending disabled",
		)
		return e
	}

	delivery, e := senderFor(provider)
	if e != nil {
		return e
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(max(Cfg.Timeout, 1))*time.Second)
	defer cancel()

	messageID, e := delivery.send(ctx, message)
	if e != nil {
		return e
	}

	tl.Log(
		tl.Info1, palette.Green, "Sent '%s' to %v via %s, message id '%s'",
		subject, message.Recipients, provider, messageID,
	)
	return e
}

func cleanRecipients(recipients []string) (cleaned []string) {
	for _, recipient := range recipients {
		trimmed := strings.TrimSpace(recipient)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
