package document

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/tuumbleweed/xerr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PageRasterizer turns one page context into an image.
type PageRasterizer interface {
	RasterizePage(page Page) (raster image.Image, e *xerr.Error)
}

var (
	headerFill = color.RGBA{R: 0x1F, G: 0x4E, B: 0x78, A: 0xFF}
	zebraFill  = color.RGBA{R: 0xF2, G: 0xF2, B: 0xF2, A: 0xFF}
	totalFill  = color.RGBA{R: 0xDD, G: 0xEB, B: 0xF7, A: 0xFF}
	gridColor  = color.RGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}
	inkColor   = color.Black
)

/*
TableRasterizer draws a page as a table on a gonum vgimg canvas. Width is the
drawing width in points; the pixel size follows from DPI.
*/
type TableRasterizer struct {
	Width     vg.Length
	DPI       int
	FontSize  vg.Length
	RowHeight vg.Length
	Margin    vg.Length
}

// NewTableRasterizer sizes the rasterizer from the document config.
func NewTableRasterizer(cfg Config) TableRasterizer {
	defaults := DefaultValueConfig()
	if cfg.DPI <= 0 {
		cfg.DPI = defaults.DPI
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = defaults.FontSize
	}
	if cfg.RowHeight <= 0 {
		cfg.RowHeight = defaults.RowHeight
	}
	return TableRasterizer{
		Width:     1000,
		DPI:       cfg.DPI,
		FontSize:  vg.Points(cfg.FontSize),
		RowHeight: vg.Points(cfg.RowHeight),
		Margin:    12,
	}
}

// tableLayout holds the horizontal column edges and the canvas height of one page.
type tableLayout struct {
	edges        []vg.Length
	headerLines  [][]string
	headerHeight vg.Length
	logoHeight   vg.Length
	logoWidth    vg.Length
	headingLines int
	height       vg.Length
}

func (rasterizer TableRasterizer) style(size vg.Length, clr color.Color, xAlign text.XAlignment) text.Style {
	return text.Style{
		Color:   clr,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  xAlign,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

func (rasterizer TableRasterizer) lineHeight() vg.Length {
	return rasterizer.FontSize * 1.4
}

/*
columnEdges splits the drawing width: a narrow region column, a wide locality
column and equal numeric columns for the rest.
*/
func (rasterizer TableRasterizer) columnEdges(columnCount int) (edges []vg.Length) {
	left := rasterizer.Margin
	usable := rasterizer.Width - 2*rasterizer.Margin
	numeric := columnCount - 2

	regionWidth := usable * 0.07
	localityWidth := usable * 0.23
	if numeric <= 3 {
		localityWidth = usable * 0.48
	}
	numericWidth := (usable - regionWidth - localityWidth) / vg.Length(max(numeric, 1))

	edges = append(edges, left, left+regionWidth, left+regionWidth+localityWidth)
	for index := 1; index <= numeric; index += 1 {
		edges = append(edges, edges[2]+numericWidth*vg.Length(index))
	}
	return edges
}

func headerLines(title string) []string {
	words := strings.Fields(title)
	if len(words) <= 1 {
		return []string{title}
	}
	return words
}

func (rasterizer TableRasterizer) layout(page Page) (layout tableLayout) {
	layout.edges = rasterizer.columnEdges(len(page.Columns))

	maxLines := 1
	for _, title := range page.Columns {
		lines := headerLines(title)
		layout.headerLines = append(layout.headerLines, lines)
		maxLines = max(maxLines, len(lines))
	}
	layout.headerHeight = vg.Length(maxLines)*rasterizer.lineHeight() + rasterizer.FontSize

	layout.headingLines = 1
	if page.IsFirst() {
		layout.headingLines = 2
		if page.Logo != nil {
			// logo pixels are mapped 1:1 to canvas pixels
			pixelsPerPoint := vg.Length(rasterizer.DPI) / 72
			layout.logoWidth = vg.Length(page.Logo.Bounds().Dx()) / pixelsPerPoint
			layout.logoHeight = vg.Length(page.Logo.Bounds().Dy()) / pixelsPerPoint
			if limit := rasterizer.Width - 2*rasterizer.Margin; layout.logoWidth > limit {
				layout.logoHeight = layout.logoHeight * limit / layout.logoWidth
				layout.logoWidth = limit
			}
		}
	}

	rows := len(page.Rows)
	if page.GrandTotal != nil {
		rows += 1
	}
	layout.height = 2*rasterizer.Margin +
		layout.logoHeight +
		vg.Length(layout.headingLines)*rasterizer.lineHeight()*1.5 +
		layout.headerHeight +
		vg.Length(rows)*rasterizer.RowHeight +
		rasterizer.lineHeight()*1.5
	return layout
}

/*
RasterizePage draws the heading, column header, rows, optional grand total and
page footer. A drawing panic from the canvas is returned as an error.
*/
func (rasterizer TableRasterizer) RasterizePage(page Page) (raster image.Image, e *xerr.Error) {
	if len(page.Columns) < 2 {
		e = xerr.NewError(fmt.Errorf("page has %d columns, need at least 2", len(page.Columns)), "rasterize page", fmt.Sprintf("page %d", page.Number))
		return
	}

	defer func() {
		recovered := recover()
		if recovered != nil {
			raster = nil
			e = xerr.NewError(fmt.Errorf("%v", recovered), "draw page canvas", fmt.Sprintf("page %d", page.Number))
		}
	}()

	layout := rasterizer.layout(page)
	canvas := vgimg.NewWith(
		vgimg.UseWH(rasterizer.Width, layout.height),
		vgimg.UseDPI(rasterizer.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(canvas)

	cursor := layout.height - rasterizer.Margin
	cursor = rasterizer.drawHeading(&dc, page, layout, cursor)
	cursor = rasterizer.drawColumnHeader(&dc, layout, cursor)
	cursor = rasterizer.drawRows(&dc, page, layout, cursor)
	if page.GrandTotal != nil {
		cursor = rasterizer.drawGrandTotal(&dc, *page.GrandTotal, layout, cursor)
	}
	rasterizer.drawFooter(&dc, page, cursor)

	raster = canvas.Image()
	return raster, e
}

func (rasterizer TableRasterizer) drawHeading(dc *draw.Canvas, page Page, layout tableLayout, top vg.Length) vg.Length {
	center := rasterizer.Width / 2
	step := rasterizer.lineHeight() * 1.5

	if !page.IsFirst() {
		sty := rasterizer.style(rasterizer.FontSize, inkColor, text.XCenter)
		dc.FillText(sty, vg.Point{X: center, Y: top - step/2}, page.Title+" | "+page.DateLabel)
		return top - step
	}

	if page.Logo != nil {
		left := center - layout.logoWidth/2
		dc.DrawImage(vg.Rectangle{
			Min: vg.Point{X: left, Y: top - layout.logoHeight},
			Max: vg.Point{X: left + layout.logoWidth, Y: top},
		}, page.Logo)
		top -= layout.logoHeight
	}

	titleStyle := rasterizer.style(rasterizer.FontSize*1.6, inkColor, text.XCenter)
	dc.FillText(titleStyle, vg.Point{X: center, Y: top - step/2}, page.Title)
	top -= step

	labelStyle := rasterizer.style(rasterizer.FontSize*1.2, inkColor, text.XCenter)
	dc.FillText(labelStyle, vg.Point{X: center, Y: top - step/2}, page.DateLabel)
	return top - step
}

func fillRect(dc *draw.Canvas, clr color.Color, left vg.Length, bottom vg.Length, right vg.Length, top vg.Length) {
	dc.FillPolygon(clr, []vg.Point{
		{X: left, Y: bottom},
		{X: right, Y: bottom},
		{X: right, Y: top},
		{X: left, Y: top},
	})
}

func (rasterizer TableRasterizer) gridLine() draw.LineStyle {
	return draw.LineStyle{Color: gridColor, Width: vg.Points(0.5)}
}

func (rasterizer TableRasterizer) drawColumnHeader(dc *draw.Canvas, layout tableLayout, top vg.Length) vg.Length {
	left, right := layout.edges[0], layout.edges[len(layout.edges)-1]
	bottom := top - layout.headerHeight
	fillRect(dc, headerFill, left, bottom, right, top)

	sty := rasterizer.style(rasterizer.FontSize*0.9, color.White, text.XCenter)
	middle := (top + bottom) / 2
	for index, lines := range layout.headerLines {
		x := (layout.edges[index] + layout.edges[index+1]) / 2
		firstY := middle + vg.Length(len(lines)-1)*rasterizer.lineHeight()/2
		for lineIndex, line := range lines {
			dc.FillText(sty, vg.Point{X: x, Y: firstY - vg.Length(lineIndex)*rasterizer.lineHeight()}, line)
		}
	}
	return bottom
}

// fitText shortens txt with an ellipsis until it fits width.
func fitText(sty text.Style, txt string, width vg.Length) string {
	if sty.Width(txt) <= width {
		return txt
	}
	runes := []rune(txt)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if sty.Width(candidate) <= width {
			return candidate
		}
	}
	return string(runes)
}

func (rasterizer TableRasterizer) drawValues(dc *draw.Canvas, values []int64, layout tableLayout, middle vg.Length, sty text.Style) {
	pad := rasterizer.FontSize / 2
	for index, value := range values {
		if 3+index >= len(layout.edges) {
			break
		}
		dc.FillText(sty, vg.Point{X: layout.edges[3+index] - pad, Y: middle}, formatCount(value))
	}
}

func (rasterizer TableRasterizer) drawRows(dc *draw.Canvas, page Page, layout tableLayout, top vg.Length) vg.Length {
	edges := layout.edges
	left, right := edges[0], edges[len(edges)-1]
	pad := rasterizer.FontSize / 2
	textStyle := rasterizer.style(rasterizer.FontSize, inkColor, text.XLeft)
	numberStyle := rasterizer.style(rasterizer.FontSize, inkColor, text.XRight)
	regionStyle := rasterizer.style(rasterizer.FontSize, inkColor, text.XCenter)

	for index, row := range page.Rows {
		rowTop := top - vg.Length(index)*rasterizer.RowHeight
		rowBottom := rowTop - rasterizer.RowHeight
		middle := (rowTop + rowBottom) / 2

		if index%2 == 1 {
			fillRect(dc, zebraFill, edges[1], rowBottom, right, rowTop)
		}
		locality := fitText(textStyle, row.Locality, edges[2]-edges[1]-2*pad)
		dc.FillText(textStyle, vg.Point{X: edges[1] + pad, Y: middle}, locality)
		rasterizer.drawValues(dc, row.Values, layout, middle, numberStyle)
		dc.StrokeLine2(rasterizer.gridLine(), edges[1], rowBottom, right, rowBottom)
	}

	for _, span := range page.RegionSpans() {
		spanTop := top - vg.Length(span.Start)*rasterizer.RowHeight
		spanBottom := spanTop - vg.Length(span.Length)*rasterizer.RowHeight
		dc.FillText(regionStyle, vg.Point{X: (edges[0] + edges[1]) / 2, Y: (spanTop + spanBottom) / 2}, span.Code)
		dc.StrokeLine2(rasterizer.gridLine(), left, spanBottom, edges[1], spanBottom)
	}

	bottom := top - vg.Length(len(page.Rows))*rasterizer.RowHeight
	for _, edge := range edges {
		dc.StrokeLine2(rasterizer.gridLine(), edge, bottom, edge, top)
	}
	return bottom
}

func (rasterizer TableRasterizer) drawGrandTotal(dc *draw.Canvas, total TotalRow, layout tableLayout, top vg.Length) vg.Length {
	edges := layout.edges
	left, right := edges[0], edges[len(edges)-1]
	bottom := top - rasterizer.RowHeight
	middle := (top + bottom) / 2
	fillRect(dc, totalFill, left, bottom, right, top)

	labelStyle := rasterizer.style(rasterizer.FontSize, inkColor, text.XCenter)
	label := fitText(labelStyle, total.Label, edges[2]-edges[0]-rasterizer.FontSize)
	dc.FillText(labelStyle, vg.Point{X: (edges[0] + edges[2]) / 2, Y: middle}, label)
	rasterizer.drawValues(dc, total.Values, layout, middle, rasterizer.style(rasterizer.FontSize, inkColor, text.XRight))

	dc.StrokeLine2(rasterizer.gridLine(), left, bottom, right, bottom)
	for index, edge := range edges {
		if index == 1 {
			continue
		}
		dc.StrokeLine2(rasterizer.gridLine(), edge, bottom, edge, top)
	}
	return bottom
}

func (rasterizer TableRasterizer) drawFooter(dc *draw.Canvas, page Page, top vg.Length) {
	sty := rasterizer.style(rasterizer.FontSize*0.9, gridColor, text.XRight)
	y := top - rasterizer.lineHeight()*0.75
	dc.FillText(sty, vg.Point{X: rasterizer.Width - rasterizer.Margin, Y: y}, fmt.Sprintf("Page %d of %d", page.Number, page.Count))
}
