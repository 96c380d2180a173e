package report

import (
	"reflect"
	"testing"

	"permit-report/src/pkg/region"
)

func clearanceMonth(month string, total int64) MonthlyRecord {
	return MonthlyRecord{Month: month, Counters: Counters{"totalCount": total}}
}

func twoLocalityDataset() Dataset {
	return Dataset{Results: []LocalityRecord{
		{
			LGU: "Batangas City, Batangas", RegionCode: "IV-A",
			MonthlyResults: []MonthlyRecord{
				clearanceMonth("2024-01", 1),
				clearanceMonth("2024-02", 2),
				clearanceMonth("2024-03", 4),
			},
		},
		{
			LGU: "Cebu City, Cebu", Region: "region7",
			MonthlyResults: []MonthlyRecord{
				clearanceMonth("2024-01", 10),
				clearanceMonth("2024-02", 20),
				clearanceMonth("2024-03", 40),
			},
		},
	}}
}

func clearanceKind(t *testing.T) Kind {
	t.Helper()
	kind, err := KindByName(KindClearance)
	if err != nil {
		t.Fatalf("KindByName: %v", err)
	}
	return kind
}

func TestAggregateMonthWindowSumsOnlyInWindowMonths(t *testing.T) {
	criteria := FilterCriteria{DateRange: DateRange{Start: "2024-02", End: "2024-03"}}
	records := Engine{}.Aggregate(twoLocalityDataset(), criteria)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	want := map[string]int64{"Batangas City, Batangas": 6, "Cebu City, Cebu": 60}
	for _, record := range records {
		if got := record.Count("totalCount"); got != want[record.LGU] {
			t.Errorf("%s totalCount = %d, want %d", record.LGU, got, want[record.LGU])
		}
		if !reflect.DeepEqual(record.Months, []string{"2024-02", "2024-03"}) {
			t.Errorf("%s months = %v", record.LGU, record.Months)
		}
	}

	totals := ComputeTotals(records, clearanceKind(t))
	if got := totals.Count("totalCount"); got != 66 {
		t.Errorf("grand total = %d, want 66", got)
	}
}

func TestAggregateDayModeKeepsRecordsUnsummed(t *testing.T) {
	criteria := FilterCriteria{
		DateRange:        DateRange{Start: "2024-02", End: "2024-02"},
		SelectedDateType: DateTypeDay,
	}
	records := Engine{}.Aggregate(twoLocalityDataset(), criteria)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Count("totalCount") != 2 || records[1].Count("totalCount") != 20 {
		t.Errorf("unexpected day counts: %d, %d", records[0].Count("totalCount"), records[1].Count("totalCount"))
	}
	for _, record := range records {
		if !reflect.DeepEqual(record.Months, []string{"2024-02"}) {
			t.Errorf("%s months = %v", record.LGU, record.Months)
		}
	}
}

func TestAggregateIslandFilterUsesLookup(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{
		{LGU: "Lipa", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 3)}},
		{LGU: "Davao", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 5)}},
		{LGU: "Nowhere", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 7)}},
	}}
	resolver := region.NewResolver(map[string]string{"Lipa": "IV-A", "davao": "XI"})
	criteria := FilterCriteria{SelectedIslands: []string{"Luzon"}}

	built := Build(dataset, criteria, clearanceKind(t), resolver)

	if len(built.Groups) != 1 || built.Groups[0].Key != "region4a" {
		t.Fatalf("groups = %+v, want one region4a group", built.Groups)
	}
	if built.Groups[0].DisplayCode != "R4A" {
		t.Errorf("display code = %q, want R4A", built.Groups[0].DisplayCode)
	}
	if len(built.Unregistered) != 0 {
		t.Errorf("island filter must drop unresolvable localities, got %d unregistered", len(built.Unregistered))
	}
}

func TestAggregateRegionCodeWithoutRegionField(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{
		{LGU: "Calamba", RegionCode: "IV-A", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 3)}},
	}}
	criteria := FilterCriteria{SelectedIslands: []string{"luzon"}}
	records := Engine{Resolver: region.NewResolver(map[string]string{"calamba": "region4a"})}.Aggregate(dataset, criteria)

	if len(records) != 1 || records[0].RegionKey != "region4a" {
		t.Fatalf("records = %+v", records)
	}
}

func TestAggregateLocationFilters(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{
		{LGU: "Quezon City, Metro Manila", Region: "NCR", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 1)}},
		{LGU: "Makati, Metro Manila", Region: "NCR", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 2)}},
		{LGU: "Cebu City, Cebu", Region: "VII", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 4)}},
	}}

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{name: "no filters", criteria: FilterCriteria{}, want: []string{"Quezon City, Metro Manila", "Makati, Metro Manila", "Cebu City, Cebu"}},
		{name: "region display code", criteria: FilterCriteria{SelectedRegions: []string{"R7"}}, want: []string{"Cebu City, Cebu"}},
		{name: "province", criteria: FilterCriteria{SelectedProvinces: []string{" metro manila "}}, want: []string{"Quezon City, Metro Manila", "Makati, Metro Manila"}},
		{name: "city", criteria: FilterCriteria{SelectedCities: []string{"MAKATI"}}, want: []string{"Makati, Metro Manila"}},
		{name: "islands win over regions", criteria: FilterCriteria{SelectedIslands: []string{"Visayas"}, SelectedRegions: []string{"NCR"}}, want: []string{"Cebu City, Cebu"}},
		{name: "unknown island falls back to regions", criteria: FilterCriteria{SelectedIslands: []string{"Atlantis"}, SelectedRegions: []string{"NCR"}}, want: []string{"Quezon City, Metro Manila", "Makati, Metro Manila"}},
		{name: "nothing matches", criteria: FilterCriteria{SelectedCities: []string{"Davao"}}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, record := range (Engine{}).Aggregate(dataset, tt.criteria) {
				got = append(got, record.LGU)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateMergesDuplicateLocalities(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{
		{LGU: "Iloilo City, Iloilo", Region: "VI", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-02", 1)}},
		{LGU: "Bacolod, Negros Occidental", Region: "NIR", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 9)}},
		{LGU: "iloilo city, Iloilo", Region: "VI", MonthlyResults: []MonthlyRecord{clearanceMonth("2024-01", 2), clearanceMonth("2024-02", 4)}},
	}}
	records := Engine{}.Aggregate(dataset, FilterCriteria{})

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].LGU != "Iloilo City, Iloilo" || records[0].Count("totalCount") != 7 {
		t.Errorf("first record = %s/%d", records[0].LGU, records[0].Count("totalCount"))
	}
	if !reflect.DeepEqual(records[0].Months, []string{"2024-01", "2024-02"}) {
		t.Errorf("months = %v", records[0].Months)
	}
}

func TestAggregateDropsLocalitiesWithoutInWindowMonths(t *testing.T) {
	criteria := FilterCriteria{DateRange: DateRange{Start: "2025-01", End: "2025-12"}}
	if records := (Engine{}).Aggregate(twoLocalityDataset(), criteria); len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	if records := (Engine{}).Aggregate(Dataset{}, FilterCriteria{}); len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestAggregateWindowExclusivity(t *testing.T) {
	criteria := FilterCriteria{DateRange: DateRange{Start: "2024-02-15", End: "2024-02-20"}}
	records := Engine{}.Aggregate(twoLocalityDataset(), criteria)
	for _, record := range records {
		for _, month := range record.Months {
			if month != "2024-02" {
				t.Errorf("%s contributed month %s outside the window", record.LGU, month)
			}
		}
	}
}

func TestAggregateYearModeCoversWholeYear(t *testing.T) {
	criteria := FilterCriteria{DateRange: DateRange{Start: "2024", End: "2024"}, SelectedDateType: DateTypeYear}
	records := Engine{}.Aggregate(twoLocalityDataset(), criteria)
	if len(records) != 2 || records[0].Count("totalCount") != 7 {
		t.Fatalf("records = %+v", records)
	}
	if got := criteria.DateLabel(); got != "2024" {
		t.Errorf("label = %q, want 2024", got)
	}
}

func TestAggregateYearModeKeepsMonthBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end any
		wantMonths []string
		wantTotals []int64
	}{
		{
			name: "mid-year months", start: "2024-02", end: "2024-03",
			wantMonths: []string{"2024-02", "2024-03"}, wantTotals: []int64{6, 60},
		},
		{
			name: "bare year end widens to december", start: "2024-02", end: "2024",
			wantMonths: []string{"2024-02", "2024-03"}, wantTotals: []int64{6, 60},
		},
		{
			name: "day bounds stay within their months", start: "2024-01-20", end: "2024-02-05",
			wantMonths: []string{"2024-01", "2024-02"}, wantTotals: []int64{3, 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := FilterCriteria{DateRange: DateRange{Start: tt.start, End: tt.end}, SelectedDateType: DateTypeYear}
			records := Engine{}.Aggregate(twoLocalityDataset(), criteria)
			if len(records) != len(tt.wantTotals) {
				t.Fatalf("got %d records, want %d", len(records), len(tt.wantTotals))
			}
			for index, record := range records {
				if !reflect.DeepEqual(record.Months, tt.wantMonths) {
					t.Errorf("%s months = %v, want %v", record.LGU, record.Months, tt.wantMonths)
				}
				if got := record.Count("totalCount"); got != tt.wantTotals[index] {
					t.Errorf("%s total = %d, want %d", record.LGU, got, tt.wantTotals[index])
				}
			}
		})
	}
}

func TestAggregateDayModeRegionOverrideRespectsFilter(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{
		{
			LGU: "Manila", RegionCode: "NCR",
			MonthlyResults: []MonthlyRecord{
				clearanceMonth("2024-01", 1),
				{Month: "2024-02", RegionCode: "VII", Counters: Counters{"totalCount": 2}},
				{Month: "2024-03", RegionCode: "NCR", Counters: Counters{"totalCount": 4}},
			},
		},
	}}
	tests := []struct {
		name     string
		criteria FilterCriteria
		wantKeys []string
	}{
		{
			name:     "region filter",
			criteria: FilterCriteria{SelectedRegions: []string{"NCR"}, SelectedDateType: DateTypeDay},
			wantKeys: []string{"NCR", "NCR"},
		},
		{
			name:     "island filter",
			criteria: FilterCriteria{SelectedIslands: []string{"Luzon"}, SelectedDateType: DateTypeDay},
			wantKeys: []string{"NCR", "NCR"},
		},
		{
			name:     "no filter keeps the override",
			criteria: FilterCriteria{SelectedDateType: DateTypeDay},
			wantKeys: []string{"NCR", "region7", "NCR"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, record := range (Engine{}).Aggregate(dataset, tt.criteria) {
				keys = append(keys, record.RegionKey)
			}
			if !reflect.DeepEqual(keys, tt.wantKeys) {
				t.Errorf("region keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

func TestAggregateResidualFallback(t *testing.T) {
	dataset := Dataset{Results: []LocalityRecord{{
		LGU: "Tacloban", Region: "VIII",
		MonthlyResults: []MonthlyRecord{
			{Month: "2024-01", Residual: []Counters{{"totalCount": 3}, {"totalCount": 4}}},
			{Month: "2024-02", Counters: Counters{"totalCount": 5}, Residual: []Counters{{"totalCount": 100}}},
		},
	}}}
	records := Engine{}.Aggregate(dataset, FilterCriteria{})
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
	if got := records[0].Count("totalCount"); got != 12 {
		t.Errorf("totalCount = %d, want 12", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	criteria := FilterCriteria{DateRange: DateRange{Start: "2024-01", End: "2024-03"}}
	first := Engine{}.Aggregate(twoLocalityDataset(), criteria)

	again := Dataset{}
	for _, record := range first {
		again.Results = append(again.Results, LocalityRecord{
			LGU: record.LGU, Region: record.RegionKey,
			MonthlyResults: []MonthlyRecord{{Month: record.Months[0], Counters: record.Counters}},
		})
	}
	second := Engine{}.Aggregate(again, criteria)

	kind := clearanceKind(t)
	if ComputeTotals(first, kind).Count("totalCount") != ComputeTotals(second, kind).Count("totalCount") {
		t.Errorf("re-aggregation changed totals")
	}
}
