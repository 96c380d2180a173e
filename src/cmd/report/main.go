package main

import (
	"context"
	"flag"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/archive"
	"permit-report/src/pkg/config"
	"permit-report/src/pkg/document"
	"permit-report/src/pkg/email"
	"permit-report/src/pkg/export"
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/store"
	"permit-report/src/pkg/util"
)

/*
main renders one report from a dataset file.

Example:

	go run ./src/cmd/report -kind clearance -format pdf -start 2024-01 -end 2024-03 -regions NCR,IV-A
*/
func main() {
	config.CheckIfEnvVarsPresent()

	// common flags
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// program-specific flags
	kindName := flag.String("kind", "", "Report kind: "+strings.Join(report.KindNames(), ", "))
	formatName := flag.String("format", "xlsx", "Export format: xlsx or pdf")
	datasetPath := flag.String("dataset", "", "Dataset JSON file (default: export.dataset_path from config)")
	outputName := flag.String("o", "", "Output file name (default: <kind>-<date label>.<format>)")
	outputDirPath := flag.String("out", "", "Output directory (default: export.output_directory from config)")
	regions := flag.String("regions", "", "Comma-separated region codes, e.g. NCR,IV-A,VII")
	islands := flag.String("islands", "", "Comma-separated island groups: Luzon, Visayas, Mindanao")
	provinces := flag.String("provinces", "", "Comma-separated provinces")
	cities := flag.String("cities", "", "Comma-separated cities")
	start := flag.String("start", "", "Range start: YYYY, YYYY-MM or YYYY-MM-DD")
	end := flag.String("end", "", "Range end: YYYY, YYYY-MM or YYYY-MM-DD")
	dateType := flag.String("date-type", "Month", "Date granularity: Day, Month or Year")
	recipients := flag.String("recipients", "", "Comma-separated addresses to email the export to")
	archiveExport := flag.Bool("archive", false, "Upload the export to the archive bucket")
	keepHistory := flag.Bool("history", false, "Record the run in the export job database")

	// parse and init config
	flag.Parse()
	util.RequiredFlag(kindName, "kind")
	util.EnsureFlags()
	config.InitializeConfig(*configPath)
	initializeConfigs()

	format, e := export.ParseFormat(*formatName)
	e.QuitIf(xerr.ErrorTypeError)
	if *datasetPath == "" {
		*datasetPath = export.Cfg.DatasetPath
	}
	if *outputDirPath != "" {
		export.Cfg.OutputDirectory = *outputDirPath
	}

	dataset, e := export.LoadDataset(*datasetPath)
	e.QuitIf(xerr.ErrorTypeError)

	var jobs export.JobRecorder
	if *keepHistory {
		jobStore, e := store.Open(store.Cfg.DatabasePath)
		e.QuitIf(xerr.ErrorTypeError)
		defer jobStore.Close()
		jobs = jobStore
	}

	exporter, e := export.NewFromConfig(jobs)
	e.QuitIf(xerr.ErrorTypeError)
	exporter.OnProgress = func(jobID string, percent int) {
		tl.Log(tl.Info, palette.Cyan, "Rendering '%s': %v%%", *kindName, percent)
	}

	criteria := report.FilterCriteria{
		SelectedRegions:   util.SplitList(*regions),
		SelectedIslands:   util.SplitList(*islands),
		SelectedProvinces: util.SplitList(*provinces),
		SelectedCities:    util.SplitList(*cities),
		DateRange:         report.DateRange{Start: optional(*start), End: optional(*end)},
		SelectedDateType:  report.ParseDateType(*dateType),
	}

	tl.Log(
		tl.Notice, palette.BlueBold, "Exporting '%s' as %s from '%s' (%v localities)",
		*kindName, format, *datasetPath, len(dataset.Results),
	)

	output, e := exporter.Export(context.Background(), export.Request{
		Kind:       *kindName,
		Format:     format,
		FileName:   *outputName,
		Criteria:   criteria,
		Dataset:    dataset,
		Recipients: util.SplitList(*recipients),
		Archive:    *archiveExport,
	})
	e.QuitIf(xerr.ErrorTypeError)

	tl.Log(tl.Notice1, palette.GreenBold, "%s. Saved '%s' (%v rows, %v pages)", "Export completed", output.Path, output.Rows, output.Pages)
}

// blank flags mean an open bound
func optional(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func initializeConfigs() {
	export.InitializeConfig(config.Section[export.Config]("export"))
	document.InitializeConfig(config.Section[document.Config]("document"))
	store.InitializeConfig(config.Section[store.Config]("storage"))
	email.InitializeConfig(config.Section[email.Config]("email"))
	archive.InitializeConfig(config.Section[archive.Config]("archive"))
}
