// entrypoint with multiple subprograms for report delivery
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/config"
	"permit-report/src/pkg/email"
	"permit-report/src/pkg/export"
	"permit-report/src/pkg/store"
	"permit-report/src/pkg/util"
)

var providerEnvVars = []string{
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // amazon ses
	"MAILGUN_DOMAIN", "MAILGUN_API_KEY", // mailgun
	"SENDGRID_API_KEY", // sendgrid
}

// readAttachment loads an export file as an email attachment.
func readAttachment(path string) (attachment email.Attachment, e *xerr.Error) {
	content, err := os.ReadFile(path)
	if err != nil {
		e = xerr.NewError(err, "read export file", path)
		return attachment, e
	}

	format := export.FormatXLSX
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		format = export.FormatPDF
	}
	attachment = email.Attachment{FileName: filepath.Base(path), ContentType: format.ContentType(), Content: content}
	return attachment, e
}

/*
Pick provider and use it to send a test email to the specified address.
An existing export can be attached with -attach.
*/
func testProvider(subprogram string, flags []string) {
	config.CheckIfEnvVarsPresent(providerEnvVars...)

	// common flags
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	// custom flags
	provider := subprogramCmd.String("provider", "mailgun", "Provider to use when sending emails: ses, mailgun, sendgrid")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address, comma-separated for several")
	subject := subprogramCmd.String("subject", "Test subject", "Subject of an email")
	emailTextFilePath := subprogramCmd.String("text", "./tmp/email.txt", "Plain text body of an email")
	emailHtmlFilePath := subprogramCmd.String("html", "", "Optional html body of an email")
	attachPath := subprogramCmd.String("attach", "", "Optional export file (.xlsx or .pdf) to attach")

	// parse and init config
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	config.InitializeConfig(*configPath)

	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddress, "recipient")
	util.RequiredFlag(provider, "provider")
	util.EnsureFlags()

	textFileContentBytes, err := os.ReadFile(*emailTextFilePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailTextFilePath))
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", textFileContentBytes)

	htmlText := ""
	if *emailHtmlFilePath != "" {
		htmlFileContentBytes, err := os.ReadFile(*emailHtmlFilePath)
		xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailHtmlFilePath))
		htmlText = string(htmlFileContentBytes)
	}

	var attachments []email.Attachment
	if *attachPath != "" {
		attachment, e := readAttachment(*attachPath)
		e.QuitIf(xerr.ErrorTypeError)
		attachments = append(attachments, attachment)
	}

	sendEmails := true
	e := email.SendMessage(email.Provider(*provider), &sendEmails, *senderAddress, util.SplitList(*recipientAddress), *subject, string(textFileContentBytes), htmlText, attachments)
	e.QuitIf("error")
}

/*
Email the file of a finished export job, looked up in the job database.
Recipients default to the ones recorded on the job.
*/
func sendJob(subprogram string, flags []string) {
	config.CheckIfEnvVarsPresent(providerEnvVars...)

	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	jobID := subprogramCmd.String("job", "", "Export job id")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address, comma-separated (default: job recipients)")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	config.InitializeConfig(*configPath)
	store.InitializeConfig(config.Section[store.Config]("storage"))
	email.InitializeConfig(config.Section[email.Config]("email"))

	util.RequiredFlag(jobID, "job")
	util.EnsureFlags()

	jobs, e := store.Open(store.Cfg.DatabasePath)
	e.QuitIf(xerr.ErrorTypeError)
	defer jobs.Close()

	job, found, e := jobs.Get(context.Background(), *jobID)
	e.QuitIf(xerr.ErrorTypeError)
	if !found || job.Status != store.StatusDone {
		tl.Log(tl.Error, palette.Red, "Job '%s' is %s", *jobID, "not a finished export")
		os.Exit(1)
	}

	recipients := util.SplitList(*recipientAddress)
	if len(recipients) == 0 {
		recipients = util.SplitList(job.Recipients)
	}
	if len(recipients) == 0 {
		tl.Log(tl.Error, palette.Red, "Job '%s' has %s, pass -recipient", *jobID, "no recipients")
		os.Exit(1)
	}

	attachment, e := readAttachment(job.FilePath)
	e.QuitIf(xerr.ErrorTypeError)

	text := fmt.Sprintf("The %s %s export (%d rows, %d pages) is attached.", job.Kind, strings.ToUpper(job.Format), job.Rows, job.Pages)
	sendEmails := true
	e = email.SendMessage(
		email.Provider(email.Cfg.Provider), &sendEmails, email.Cfg.Sender, recipients,
		fmt.Sprintf(email.Cfg.Subject, job.Kind), text, "", []email.Attachment{attachment},
	)
	e.QuitIf("error")
	tl.Log(tl.Notice1, palette.GreenBold, "Sent '%s' to %v", attachment.FileName, recipients)
}

func main() {
	// Check if there are enough arguments
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run src/cmd/send-report/main.go subprogram_name(test-provider or job)")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	// Switch subprogram based on the first argument
	switch subprogram {
	case "test-provider":
		testProvider(subprogram, flags)
	case "job":
		sendJob(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
