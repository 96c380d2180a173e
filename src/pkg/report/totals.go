package report

// Totals is the per-field sum over a set of records, for one Kind.
type Totals struct {
	Counters Counters `json:"counters"`
	Records  int      `json:"records"`
}

// Count implements Counter, so Kind columns read totals the same way as rows.
func (totals Totals) Count(name string) int64 {
	return totals.Counters.Get(name)
}

/*
ComputeTotals sums each of the kind's fields over records through the shared
accessor, so residual-only records still contribute.
*/
func ComputeTotals(records []AggregatedRecord, kind Kind) Totals {
	totals := Totals{Counters: make(Counters, len(kind.Fields)), Records: len(records)}
	for _, field := range kind.Fields {
		totals.Counters[field] = 0
	}
	for _, record := range records {
		for _, field := range kind.Fields {
			totals.Counters[field] += record.Count(field)
		}
	}
	return totals
}

// ComputeRegionTotals is ComputeTotals over one region block.
func ComputeRegionTotals(group RegionGroup, kind Kind) Totals {
	return ComputeTotals(group.Records, kind)
}
