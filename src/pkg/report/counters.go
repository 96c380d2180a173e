package report

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

/*
Counters holds the named numeric fields of one record ("newPaid",
"renewalPending", "totalCount", ...). A missing name reads as 0 through Get;
nothing else in the engine indexes the map directly.
*/
type Counters map[string]int64

// Get returns the named counter, or 0 when it is absent.
func (counters Counters) Get(name string) int64 {
	if counters == nil {
		return 0
	}
	return counters[name]
}

// Has reports whether the counter is present at all.
func (counters Counters) Has(name string) bool {
	if counters == nil {
		return false
	}
	_, exists := counters[name]
	return exists
}

// Clone returns an independent copy.
func (counters Counters) Clone() Counters {
	cloned := make(Counters, len(counters))
	for name, value := range counters {
		cloned[name] = value
	}
	return cloned
}

// Names returns the counter names sorted alphabetically.
func (counters Counters) Names() []string {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/*
Counter is anything that exposes counters by name with the missing-is-zero
rule: aggregated records, totals and monthly records.
*/
type Counter interface {
	Count(name string) int64
}

/*
sumResidual adds the named counter across residual sub-objects. It backs the
fallback used when a record carries its totals only in nested per-month objects.
*/
func sumResidual(residual []Counters, name string) int64 {
	sum := int64(0)
	for _, counters := range residual {
		sum += counters.Get(name)
	}
	return sum
}

/*
countWithFallback is the shared accessor: the direct counter wins; otherwise the
residual sub-objects are summed; otherwise 0.
*/
func countWithFallback(counters Counters, residual []Counters, name string) int64 {
	if counters.Has(name) {
		return counters.Get(name)
	}
	return sumResidual(residual, name)
}

/*
counterNames lists every name readable from counters and residual, sorted.
*/
func counterNames(counters Counters, residual []Counters) []string {
	seen := make(map[string]bool)
	for name := range counters {
		seen[name] = true
	}
	for _, nested := range residual {
		for name := range nested {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/*
parseCount reads a JSON value as a counter. Numbers and numeric strings are
accepted; fractional values are rounded. Anything else reports ok=false.
*/
func parseCount(raw json.RawMessage) (value int64, ok bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		trimmed = strings.TrimSpace(text)
		if trimmed == "" {
			return 0, false
		}
	}

	if intValue, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intValue, true
	}
	floatValue, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(floatValue) || math.IsInf(floatValue, 0) {
		return 0, false
	}
	return int64(math.Round(floatValue)), true
}
