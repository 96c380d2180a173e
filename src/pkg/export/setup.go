package export

import (
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/archive"
	"permit-report/src/pkg/document"
)

/*
NewFromConfig assembles an Exporter from the export, document and archive
configs. jobs may be nil for runs that keep no history.
*/
func NewFromConfig(jobs JobRecorder) (exporter *Exporter, e *xerr.Error) {
	resolver, e := LoadResolver(Cfg.LookupPath)
	if e != nil {
		return nil, e
	}

	renderer, e := document.NewRenderer(document.Cfg)
	if e != nil {
		return nil, e
	}

	exporter = &Exporter{
		Resolver:        resolver,
		Documents:       renderer,
		Jobs:            jobs,
		Mailer:          ConfiguredMailer(Cfg.SendEmails),
		OutputDirectory: Cfg.OutputDirectory,
		WriteSummary:    Cfg.WriteSummary,
	}

	archiver, e := archive.NewArchiver(archive.Cfg)
	if e != nil {
		return nil, e
	}
	if archiver != nil {
		exporter.Archiver = archiver
	}
	return exporter, e
}
