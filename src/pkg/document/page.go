package document

import (
	"image"
)

// TotalRow is the grand-total line printed once, on the last page.
type TotalRow struct {
	Label  string
	Values []int64
}

/*
Page is everything one page rasterization needs. It is built fresh for every
page and handed over by value; rasterizers keep no state between pages.
*/
type Page struct {
	Number       int
	Count        int
	Title        string
	DateLabel    string
	Columns      []string
	Rows         []Row
	MergeRegions bool
	GrandTotal   *TotalRow
	Logo         image.Image
}

// IsFirst reports whether this is page 1.
func (page Page) IsFirst() bool {
	return page.Number == 1
}

// IsLast reports whether this is the final page.
func (page Page) IsLast() bool {
	return page.Number == page.Count
}

// RegionSpan is a run of rows sharing one region cell.
type RegionSpan struct {
	Start  int
	Length int
	Code   string
}

/*
RegionSpans groups the page's rows into region cells. With MergeRegions set,
consecutive rows of the same region share one cell; otherwise every row gets
its own. Spans never cross a page boundary.
*/
func (page Page) RegionSpans() (spans []RegionSpan) {
	for index, row := range page.Rows {
		last := len(spans) - 1
		if page.MergeRegions && last >= 0 && page.Rows[index-1].RegionKey == row.RegionKey {
			spans[last].Length += 1
			continue
		}
		spans = append(spans, RegionSpan{Start: index, Length: 1, Code: row.RegionCode})
	}
	return spans
}
