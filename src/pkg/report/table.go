package report

import (
	"permit-report/src/pkg/region"
)

// TableRow is one rendered data row.
type TableRow struct {
	RegionKey   string   `json:"regionKey"`
	RegionCode  string   `json:"regionCode"`
	Locality    string   `json:"locality"`
	Province    string   `json:"province"`
	City        string   `json:"city"`
	Months      []string `json:"months"`
	Values      []int64  `json:"values"`
	RegionStart bool     `json:"regionStart"`
	RegionSpan  int      `json:"regionSpan"`
}

// TableRegion is a region block with its subtotal.
type TableRegion struct {
	Key         string     `json:"key"`
	DisplayCode string     `json:"displayCode"`
	Rows        []TableRow `json:"rows"`
	Subtotal    []int64    `json:"subtotal"`
}

/*
TableView is the on-screen rendition of a Report. It holds exactly the labels
and numbers the spreadsheet and document print.
*/
type TableView struct {
	Title           string        `json:"title"`
	Kind            string        `json:"kind"`
	DateLabel       string        `json:"dateLabel"`
	Columns         []string      `json:"columns"`
	Regions         []TableRegion `json:"regions"`
	GrandTotalLabel string        `json:"grandTotalLabel"`
	GrandTotal      []int64       `json:"grandTotal"`
	Unregistered    []TableRow    `json:"unregistered,omitempty"`
	RowCount        int           `json:"rowCount"`
}

// Row renders one record the way every output format shows it.
func (built Report) Row(record AggregatedRecord) TableRow {
	return TableRow{
		RegionKey:  record.RegionKey,
		RegionCode: regionDisplay(record),
		Locality:   built.LocalityLabel(record),
		Province:   record.Province,
		City:       record.City,
		Months:     record.Months,
		Values:     built.Kind.Values(record),
	}
}

func regionDisplay(record AggregatedRecord) string {
	if record.RegionKey == "" {
		return firstNonEmpty(record.RegionCode, record.Region)
	}
	return region.ToDisplayCode(record.RegionKey)
}

// Table builds the on-screen view.
func Table(built Report) (view TableView) {
	view = TableView{
		Title:           built.Kind.Title,
		Kind:            built.Kind.Name,
		DateLabel:       built.DateLabel,
		Columns:         built.Kind.ColumnTitles(),
		GrandTotalLabel: built.GrandTotalLabel(),
		GrandTotal:      built.Kind.Values(built.Totals),
		RowCount:        built.RowCount(),
		Regions:         []TableRegion{},
	}

	for _, group := range built.Groups {
		tableRegion := TableRegion{
			Key:         group.Key,
			DisplayCode: group.DisplayCode,
			Subtotal:    built.Kind.Values(ComputeRegionTotals(group, built.Kind)),
		}
		for index, record := range group.Records {
			row := built.Row(record)
			row.RegionCode = group.DisplayCode
			if !built.MergeRegions() {
				row.RegionStart = true
				row.RegionSpan = 1
			} else if index == 0 {
				row.RegionStart = true
				row.RegionSpan = len(group.Records)
			}
			tableRegion.Rows = append(tableRegion.Rows, row)
		}
		view.Regions = append(view.Regions, tableRegion)
	}

	for _, record := range built.Unregistered {
		view.Unregistered = append(view.Unregistered, built.Row(record))
	}
	return view
}
