package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

/*
buildRawMessage renders a multipart/mixed MIME message: a text/html
alternative part followed by base64 attachments. SES accepts it as a raw
message.
*/
func buildRawMessage(message Message) (raw []byte, err error) {
	var buffer bytes.Buffer
	mixed := multipart.NewWriter(&buffer)

	fmt.Fprintf(&buffer, "From: %s\r\n", message.Sender)
	fmt.Fprintf(&buffer, "To: %s\r\n", strings.Join(message.Recipients, ", "))
	fmt.Fprintf(&buffer, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", message.Subject))
	fmt.Fprintf(&buffer, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buffer, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	var alternativeBody bytes.Buffer
	alternative := multipart.NewWriter(&alternativeBody)
	for _, part := range []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain; charset=utf-8", body: message.Text},
		{contentType: "text/html; charset=utf-8", body: message.HTML},
	} {
		if part.body == "" {
			continue
		}
		writer, err := alternative.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		_, err = writer.Write([]byte(part.body))
		if err != nil {
			return nil, err
		}
	}
	err = alternative.Close()
	if err != nil {
		return nil, err
	}

	writer, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alternative.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	_, err = writer.Write(alternativeBody.Bytes())
	if err != nil {
		return nil, err
	}

	for _, attachment := range message.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		writer, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, attachment.FileName)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.FileName)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		_, err = writer.Write([]byte(wrapBase64(attachment.Content)))
		if err != nil {
			return nil, err
		}
	}

	err = mixed.Close()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// wrapBase64 encodes content in 76-character lines.
func wrapBase64(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)
	var builder strings.Builder
	for start := 0; start < len(encoded); start += 76 {
		end := min(start+76, len(encoded))
		builder.WriteString(encoded[start:end])
		builder.WriteString("\r\n")
	}
	return builder.String()
}
