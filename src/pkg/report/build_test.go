package report

import (
	"reflect"
	"strings"
	"testing"

	"permit-report/src/pkg/region"
)

func permitDataset() Dataset {
	return Dataset{Results: []LocalityRecord{
		{
			LGU: "Quezon City, Metro Manila", Region: "NCR",
			MonthlyResults: []MonthlyRecord{
				{Month: "2024-01", Counters: Counters{"newPaid": 2, "newPending": 1, "newEgovPaid": 1, "renewalPaid": 3}},
			},
		},
		{
			LGU: "Lipa, Batangas", RegionCode: "IV-A",
			MonthlyResults: []MonthlyRecord{
				{Month: "2024-01", Counters: Counters{"newPaid": 5, "renewalEgovPaid": 2, "renewalPending": 4}},
			},
		},
		{
			LGU: "Makati, Metro Manila", Region: "NCR",
			MonthlyResults: []MonthlyRecord{
				{Month: "2024-01", Counters: Counters{"newMale": 1, "newFemale": 2}},
			},
		},
		{
			LGU: "Unknown Town",
			MonthlyResults: []MonthlyRecord{
				{Month: "2024-01", Counters: Counters{"newPaid": 100}},
			},
		},
	}}
}

func TestBuildGroupsInFirstSeenOrder(t *testing.T) {
	kind, _ := KindByName(KindBusinessPermit)
	built := Build(permitDataset(), FilterCriteria{}, kind, region.Resolver{})

	var keys []string
	for _, group := range built.Groups {
		keys = append(keys, group.Key)
	}
	if !reflect.DeepEqual(keys, []string{"NCR", "region4a"}) {
		t.Fatalf("group keys = %v", keys)
	}
	if len(built.Groups[0].Records) != 2 {
		t.Errorf("NCR rows = %d, want 2", len(built.Groups[0].Records))
	}
	if len(built.Unregistered) != 1 || built.Unregistered[0].LGU != "Unknown Town" {
		t.Errorf("unregistered = %+v", built.Unregistered)
	}
	if built.RowCount() != 3 {
		t.Errorf("row count = %d, want 3", built.RowCount())
	}
}

func TestBuildTotalsDecompose(t *testing.T) {
	kind, _ := KindByName(KindBusinessPermit)
	built := Build(permitDataset(), FilterCriteria{}, kind, region.Resolver{})

	sum := make(Counters)
	for _, group := range built.Groups {
		for name, value := range ComputeRegionTotals(group, kind).Counters {
			sum[name] += value
		}
	}
	for _, field := range kind.Fields {
		if sum.Get(field) != built.Totals.Count(field) {
			t.Errorf("%s: region sum %d != grand %d", field, sum.Get(field), built.Totals.Count(field))
		}
	}
	if built.OverallTotals.Count("newPaid") != built.Totals.Count("newPaid")+100 {
		t.Errorf("overall totals must include unregistered rows")
	}
}

func TestPermitDerivedColumns(t *testing.T) {
	kind, _ := KindByName(KindWorkingPermit)
	if kind.ColumnCount() != 16 {
		t.Fatalf("column count = %d, want 16", kind.ColumnCount())
	}

	record := AggregatedRecord{Counters: Counters{
		"newPaid": 2, "newPending": 1, "newEgovPaid": 1,
		"renewalPaid": 3, "renewalPending": 4, "renewalEgovPaid": 2,
	}}
	values := kind.Values(record)
	titles := kind.ColumnTitles()[2:]
	byTitle := make(map[string]int64)
	for index, title := range titles {
		byTitle[title] = values[index]
	}

	want := map[string]int64{
		"New Subtotal":       4,
		"Renewal Subtotal":   9,
		"Total Paid":         8,
		"Total Transactions": 13,
		"New Male":           0,
	}
	for title, value := range want {
		if byTitle[title] != value {
			t.Errorf("%s = %d, want %d", title, byTitle[title], value)
		}
	}
}

func TestKindCapacities(t *testing.T) {
	tests := []struct {
		name    string
		want    Capacity
		columns int
	}{
		{name: KindClearance, want: Capacity{First: 15, Next: 18}, columns: 3},
		{name: KindBusinessPermit, want: Capacity{First: 10, Next: 13}, columns: 16},
		{name: "Working-Permit", want: Capacity{First: 10, Next: 13}, columns: 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := KindByName(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if kind.Capacity != tt.want || kind.ColumnCount() != tt.columns {
				t.Errorf("got %+v / %d columns", kind.Capacity, kind.ColumnCount())
			}
		})
	}

	if _, err := KindByName("fishing-license"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTableDayModeRepeatsRegionAndLabelsMonth(t *testing.T) {
	kind, _ := KindByName(KindClearance)
	criteria := FilterCriteria{SelectedDateType: DateTypeDay}
	built := Build(twoLocalityDataset(), criteria, kind, region.Resolver{})
	view := Table(built)

	if view.RowCount != 6 {
		t.Fatalf("row count = %d, want 6", view.RowCount)
	}
	for _, tableRegion := range view.Regions {
		for _, row := range tableRegion.Rows {
			if !row.RegionStart || row.RegionSpan != 1 {
				t.Errorf("day rows repeat the region cell, got %+v", row)
			}
			if !strings.Contains(row.Locality, "(2024-0") {
				t.Errorf("locality %q lacks month", row.Locality)
			}
		}
	}
	if view.GrandTotal[0] != 77 {
		t.Errorf("grand total = %v, want 77", view.GrandTotal)
	}
}

func TestTableMonthModeSpansRegion(t *testing.T) {
	kind, _ := KindByName(KindBusinessPermit)
	view := Table(Build(permitDataset(), FilterCriteria{}, kind, region.Resolver{}))

	rows := view.Regions[0].Rows
	if !rows[0].RegionStart || rows[0].RegionSpan != 2 || rows[1].RegionStart {
		t.Errorf("unexpected spans: %+v", rows)
	}
	if rows[0].RegionCode != "NCR" || view.Regions[1].DisplayCode != "R4A" {
		t.Errorf("display codes: %s / %s", rows[0].RegionCode, view.Regions[1].DisplayCode)
	}
	if view.GrandTotalLabel != "GRAND TOTAL FOR All Dates" {
		t.Errorf("grand total label = %q", view.GrandTotalLabel)
	}
	if len(view.Unregistered) != 1 {
		t.Errorf("unregistered rows = %d", len(view.Unregistered))
	}
}
