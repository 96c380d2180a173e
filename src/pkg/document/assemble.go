package document

import (
	"bytes"
	"image"

	"github.com/tuumbleweed/xerr"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgpdf"
)

// Landscape A4.
const (
	pageWidth  = 297 * vg.Millimeter
	pageHeight = 210 * vg.Millimeter
)

// ContentType is the MIME type of the document bytes.
const ContentType = "application/pdf"

/*
assembler places page rasters onto consecutive PDF pages. Nothing is written
out until bytes is called, so a failed export leaves no partial document.
*/
type assembler struct {
	canvas *vgpdf.Canvas
	margin vg.Length
	pages  int
}

func newAssembler(marginMM float64) *assembler {
	return &assembler{
		canvas: vgpdf.New(pageWidth, pageHeight),
		margin: vg.Length(marginMM) * vg.Millimeter,
	}
}

/*
placement fits an image of the given pixel size into the printable area:
full width with the aspect ratio kept, shrunk further if it would overflow the
height. The result is anchored to the top margin and centered horizontally.
*/
func placement(imageWidth int, imageHeight int, margin vg.Length) vg.Rectangle {
	availableWidth := pageWidth - 2*margin
	availableHeight := pageHeight - 2*margin
	if imageWidth <= 0 || imageHeight <= 0 {
		return vg.Rectangle{}
	}

	ratio := vg.Length(imageHeight) / vg.Length(imageWidth)
	drawWidth := availableWidth
	drawHeight := drawWidth * ratio
	if drawHeight > availableHeight {
		drawHeight = availableHeight
		drawWidth = drawHeight / ratio
	}

	left := (pageWidth - drawWidth) / 2
	top := pageHeight - margin
	return vg.Rectangle{
		Min: vg.Point{X: left, Y: top - drawHeight},
		Max: vg.Point{X: left + drawWidth, Y: top},
	}
}

// place adds raster on a new page.
func (pdf *assembler) place(raster image.Image) {
	if pdf.pages > 0 {
		pdf.canvas.NextPage()
	}
	bounds := raster.Bounds()
	pdf.canvas.DrawImage(placement(bounds.Dx(), bounds.Dy(), pdf.margin), raster)
	pdf.pages += 1
}

func (pdf *assembler) bytes() (content []byte, e *xerr.Error) {
	var buffer bytes.Buffer
	_, err := pdf.canvas.WriteTo(&buffer)
	if err != nil {
		e = xerr.NewError(err, "write PDF document", "landscape A4")
		return nil, e
	}
	return buffer.Bytes(), e
}
