package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/tuumbleweed/xerr"
)

// sesSender sends raw MIME messages; credentials come from the AWS_* environment.
type sesSender struct{}

func newSESSender() sesSender {
	return sesSender{}
}

func (sesSender) send(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	raw, err := buildRawMessage(message)
	if err != nil {
		e = xerr.NewError(err, "build raw MIME message", message.Subject)
		return "", e
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		e = xerr.NewError(err, "load AWS config for SES", "AWS_REGION")
		return "", e
	}
	client := sesv2.NewFromConfig(awsCfg)

	output, err := client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.Sender),
		Destination:      &types.Destination{ToAddresses: message.Recipients},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		e = xerr.NewError(err, "send email via SES", message.Subject)
		return "", e
	}
	return aws.ToString(output.MessageId), e
}
