package document

import (
	"image"
	"os"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/report"
)

// ProgressFunc receives the percentage of pages completed.
type ProgressFunc func(percent int)

// Document is a finished multi-page export.
type Document struct {
	Content []byte
	Pages   int
}

// Renderer turns a report into a paginated document.
type Renderer struct {
	Rasterizer  PageRasterizer
	Logo        image.Image
	RasterWidth int
	MarginMM    float64
}

/*
NewRenderer builds a renderer from the document config, loading the logo when
one is configured.
*/
func NewRenderer(cfg Config) (renderer Renderer, e *xerr.Error) {
	logo, e := LoadLogo(cfg.LogoPath, cfg.LogoWidth, cfg.LogoHeight)
	if e != nil {
		return Renderer{}, e
	}
	renderer = Renderer{
		Rasterizer:  NewTableRasterizer(cfg),
		Logo:        logo,
		RasterWidth: cfg.RasterWidth,
		MarginMM:    cfg.MarginMM,
	}
	return renderer, e
}

/*
Render paginates the report and rasterizes its pages strictly one after the
other. progress (optional) is called after each page with
round(pagesDone/pageCount*100). Any page failure aborts the export and no
document bytes are returned.
*/
func (renderer Renderer) Render(built report.Report, progress ProgressFunc) (document Document, e *xerr.Error) {
	startedAt := time.Now()
	job := NewExportJob(built)
	pdf := newAssembler(renderer.MarginMM)
	columns := built.Kind.ColumnTitles()

	// computed once over the whole record set, printed on the last page only
	grandTotal := TotalRow{
		Label:  built.GrandTotalLabel(),
		Values: built.Kind.Values(built.Totals),
	}

	tl.Log(
		tl.Info, palette.Blue, "Rendering '%s' document: '%v' rows on '%v' pages",
		built.Kind.Name, built.RowCount(), job.PageCount(),
	)

	for index, chunk := range job.Chunks {
		page := Page{
			Number:       index + 1,
			Count:        job.PageCount(),
			Title:        built.Kind.Title,
			DateLabel:    built.DateLabel,
			Columns:      columns,
			Rows:         chunk,
			MergeRegions: built.MergeRegions(),
		}
		if index == 0 {
			page.Logo = renderer.Logo
		}
		if job.IsLast(index) {
			page.GrandTotal = &grandTotal
		}

		raster, e := renderer.Rasterizer.RasterizePage(page)
		if e != nil {
			tl.Log(tl.Error, palette.Red, "Page '%v' of '%v' failed, aborting export", page.Number, page.Count)
			return Document{}, e
		}
		pdf.place(fitWidth(raster, renderer.RasterWidth))

		percent := job.Complete(index)
		if progress != nil {
			progress(percent)
		}
		tl.Log(tl.Debug, palette.CyanDim, "Rendered page '%v' of '%v' (%v%%)", page.Number, page.Count, percent)
	}

	content, e := pdf.bytes()
	if e != nil {
		return Document{}, e
	}

	document = Document{Content: content, Pages: job.PageCount()}
	tl.Log(
		tl.Info1, palette.Green, "Rendered '%v' pages (%v bytes) in %s",
		document.Pages, len(content), time.Since(startedAt).Round(time.Millisecond),
	)
	return document, e
}

// Save writes the document to path, creating parent directories.
func (document Document) Save(path string) (e *xerr.Error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		e = xerr.NewError(err, "create document output directory", filepath.Dir(path))
		return e
	}
	err = os.WriteFile(path, document.Content, 0o644)
	if err != nil {
		e = xerr.NewError(err, "write document file", path)
		return e
	}
	tl.Log(tl.Info1, palette.Green, "Saved document to '%s'", path)
	return e
}
