package report

import (
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/region"
)

/*
Report is the single aggregation result consumed by the on-screen table, the
spreadsheet and the paginated document.

Totals covers the grouped rows only, so it always equals the sum of region
totals. OverallTotals also counts unregistered records.
*/
type Report struct {
	Kind          Kind               `json:"-"`
	KindName      string             `json:"kind"`
	Criteria      FilterCriteria     `json:"criteria"`
	DateType      DateType           `json:"dateType"`
	DateLabel     string             `json:"dateLabel"`
	Groups        []RegionGroup      `json:"groups"`
	Totals        Totals             `json:"totals"`
	Unregistered  []AggregatedRecord `json:"unregistered,omitempty"`
	OverallTotals Totals             `json:"overallTotals"`
	GeneratedAt   time.Time          `json:"generatedAt"`
}

/*
Build runs the whole pipeline: aggregate, group by region, total.
*/
func Build(dataset Dataset, criteria FilterCriteria, kind Kind, resolver region.Resolver) (built Report) {
	records := Engine{Resolver: resolver}.Aggregate(dataset, criteria)
	groups, unregistered := GroupByRegion(records, resolver)

	built = Report{
		Kind:          kind,
		KindName:      kind.Name,
		Criteria:      criteria,
		DateType:      criteria.Mode(),
		DateLabel:     criteria.DateLabel(),
		Groups:        groups,
		Totals:        ComputeTotals(Flatten(groups), kind),
		Unregistered:  unregistered,
		OverallTotals: ComputeTotals(records, kind),
		GeneratedAt:   time.Now().UTC(),
	}

	tl.Log(
		tl.Info1, palette.Green, "Built '%s' report for '%s': '%v' regions, '%v' rows, '%v' unregistered",
		kind.Name, built.DateLabel, len(groups), built.RowCount(), len(unregistered),
	)
	return built
}

// RowCount is the number of grouped data rows (unregistered excluded).
func (built Report) RowCount() int {
	count := 0
	for _, group := range built.Groups {
		count += len(group.Records)
	}
	return count
}

// MergeRegions reports whether region cells span their block (Month/Year) or repeat (Day).
func (built Report) MergeRegions() bool {
	return built.DateType != DateTypeDay
}

// GrandTotalLabel is the caption of the final totals row.
func (built Report) GrandTotalLabel() string {
	return "GRAND TOTAL FOR " + built.DateLabel
}

/*
LocalityLabel is the locality cell text. Day mode appends the record's month so
rows of the same locality stay distinguishable.
*/
func (built Report) LocalityLabel(record AggregatedRecord) string {
	if built.DateType == DateTypeDay && record.Month() != "" {
		return record.LGU + " (" + record.Month() + ")"
	}
	return record.LGU
}
