package report

import (
	"sort"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/datewindow"
	"permit-report/src/pkg/locality"
	"permit-report/src/pkg/region"
)

/*
AggregatedRecord is one output row of the engine.

In Day mode it is a single monthly record tagged with its locality; in
Month/Year mode it is the sum of one locality's in-window months.
*/
type AggregatedRecord struct {
	LGU        string     `json:"lgu"`
	Province   string     `json:"province"`
	City       string     `json:"city"`
	Region     string     `json:"region,omitempty"`
	RegionCode string     `json:"regionCode,omitempty"`
	RegionKey  string     `json:"regionKey,omitempty"`
	Months     []string   `json:"months"`
	Counters   Counters   `json:"counters"`
	Residual   []Counters `json:"residual,omitempty"`
}

// Count implements Counter with the residual fallback.
func (record AggregatedRecord) Count(name string) int64 {
	return countWithFallback(record.Counters, record.Residual, name)
}

// Month is the single month of a Day-mode record, or the first month otherwise.
func (record AggregatedRecord) Month() string {
	if len(record.Months) == 0 {
		return ""
	}
	return record.Months[0]
}

// Engine filters and merges a Dataset. Resolver maps localities to regions.
type Engine struct {
	Resolver region.Resolver
}

// scoped is a locality that survived the location filters.
type scoped struct {
	record    LocalityRecord
	regionKey string
	province  string
	city      string
}

/*
Aggregate filters the dataset by location and date and merges it according to
criteria's date type. It never fails: an empty dataset or a filter that
matches nothing yields an empty slice.
*/
func (engine Engine) Aggregate(dataset Dataset, criteria FilterCriteria) (records []AggregatedRecord) {
	allowed := allowedRegions(criteria)
	localities := engine.filterLocalities(dataset.Results, criteria, allowed)
	window := criteria.Window()

	if criteria.Mode() == DateTypeDay {
		records = engine.aggregateDays(localities, window, allowed)
	} else {
		records = aggregateMonths(localities, window)
	}

	tl.Log(
		tl.Verbose, palette.CyanDim, "Aggregated '%v' of '%v' localities into '%v' records (mode '%s')",
		len(localities), len(dataset.Results), len(records), criteria.Mode(),
	)
	return records
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

/*
localityRegion picks the locality's region fields, falling back to the first
monthly record that carries them.
*/
func localityRegion(record LocalityRecord) (regionField string, regionCode string) {
	regionField, regionCode = record.Region, record.RegionCode
	for _, monthly := range record.MonthlyResults {
		regionField = firstNonEmpty(regionField, monthly.Region)
		regionCode = firstNonEmpty(regionCode, monthly.RegionCode)
	}
	return regionField, regionCode
}

/*
allowedRegions returns the internal keys the criteria allow, or nil when
every region is allowed.
*/
func allowedRegions(criteria FilterCriteria) map[string]bool {
	if len(criteria.SelectedIslands) > 0 {
		keys := region.KeysForIslands(criteria.SelectedIslands)
		if len(keys) > 0 {
			return keys
		}
		tl.Log(tl.Warning, palette.Yellow, "No known island in '%v', falling back to region selection", criteria.SelectedIslands)
	}

	if len(criteria.SelectedRegions) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(criteria.SelectedRegions))
	for _, selected := range criteria.SelectedRegions {
		key, ok := region.ToInternalKey(selected)
		if !ok {
			tl.Log(tl.Warning, palette.Yellow, "Selected region '%s' is not a known region code", selected)
			continue
		}
		allowed[key] = true
	}
	return allowed
}

func (engine Engine) filterLocalities(results []LocalityRecord, criteria FilterCriteria, allowed map[string]bool) (kept []scoped) {
	for _, record := range results {
		regionField, regionCode := localityRegion(record)
		key, resolved := engine.Resolver.Resolve(regionField, regionCode, record.LGU)
		if allowed != nil && (!resolved || !allowed[key]) {
			continue
		}

		province := locality.Province(record.Province, record.LGU)
		city := locality.City(record.City, record.LGU)
		if !locality.Matches(province, criteria.SelectedProvinces) {
			continue
		}
		if !locality.Matches(city, criteria.SelectedCities) {
			continue
		}

		kept = append(kept, scoped{record: record, regionKey: key, province: province, city: city})
	}
	return kept
}

/*
aggregateDays emits one record per in-window monthly entry. A monthly entry's
own location fields override the locality's; an entry whose own region falls
outside allowed is skipped.
*/
func (engine Engine) aggregateDays(localities []scoped, window datewindow.Window, allowed map[string]bool) (records []AggregatedRecord) {
	for _, scope := range localities {
		for _, monthly := range scope.record.MonthlyResults {
			if !window.ContainsDay(monthly.Month) {
				continue
			}

			regionField := firstNonEmpty(monthly.Region, scope.record.Region)
			regionCode := firstNonEmpty(monthly.RegionCode, scope.record.RegionCode)
			regionKey := scope.regionKey
			if monthly.Region != "" || monthly.RegionCode != "" {
				if key, ok := engine.Resolver.Resolve(regionField, regionCode, scope.record.LGU); ok {
					regionKey = key
				}
			}
			if allowed != nil && !allowed[regionKey] {
				tl.Log(
					tl.Verbose, palette.CyanDim, "Skipping '%s' month '%s': its region '%s' is not selected",
					scope.record.LGU, monthly.Month, regionKey,
				)
				continue
			}

			residual := make([]Counters, 0, len(monthly.Residual))
			for _, nested := range monthly.Residual {
				residual = append(residual, nested.Clone())
			}

			records = append(records, AggregatedRecord{
				LGU:        firstNonEmpty(monthly.LGU, scope.record.LGU),
				Province:   firstNonEmpty(monthly.Province, scope.province),
				City:       firstNonEmpty(monthly.City, scope.city),
				Region:     regionField,
				RegionCode: regionCode,
				RegionKey:  regionKey,
				Months:     []string{monthly.Month},
				Counters:   monthly.Counters.Clone(),
				Residual:   residual,
			})
		}
	}
	return records
}

func localityIdentity(lgu string, province string) string {
	return strings.ToLower(strings.TrimSpace(lgu)) + "\x00" + strings.ToLower(strings.TrimSpace(province))
}

/*
aggregateMonths merges every in-window month of each (lgu, province) into one
record. Duplicate locality entries are merged into the first one seen, and
localities with no in-window month are dropped.
*/
func aggregateMonths(localities []scoped, window datewindow.Window) (records []AggregatedRecord) {
	order := []string{}
	merged := make(map[string]*AggregatedRecord)
	months := make(map[string]map[string]bool)

	for _, scope := range localities {
		identity := localityIdentity(scope.record.LGU, scope.province)
		record, exists := merged[identity]
		if !exists {
			regionField, regionCode := localityRegion(scope.record)
			record = &AggregatedRecord{
				LGU:        scope.record.LGU,
				Province:   scope.province,
				City:       scope.city,
				Region:     regionField,
				RegionCode: regionCode,
				RegionKey:  scope.regionKey,
				Counters:   make(Counters),
			}
			merged[identity] = record
			months[identity] = make(map[string]bool)
			order = append(order, identity)
		}

		for _, monthly := range scope.record.MonthlyResults {
			if !window.ContainsMonth(monthly.Month) {
				continue
			}
			months[identity][monthly.Month] = true
			for _, name := range counterNames(monthly.Counters, monthly.Residual) {
				record.Counters[name] += monthly.Count(name)
			}
		}
	}

	for _, identity := range order {
		if len(months[identity]) == 0 {
			continue
		}
		record := merged[identity]
		for month := range months[identity] {
			record.Months = append(record.Months, month)
		}
		sort.Strings(record.Months)
		records = append(records, *record)
	}
	return records
}
