package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
MonthlyRecord is one locality's counts for one calendar month.

Every numeric JSON field lands in Counters; nested objects with numeric fields
are kept in Residual (the clearance feed sometimes nests totals per sub-month).
*/
type MonthlyRecord struct {
	Month      string     `json:"month"`
	LGU        string     `json:"lgu,omitempty"`
	Province   string     `json:"province,omitempty"`
	City       string     `json:"city,omitempty"`
	Region     string     `json:"region,omitempty"`
	RegionCode string     `json:"regionCode,omitempty"`
	Counters   Counters   `json:"counters,omitempty"`
	Residual   []Counters `json:"residual,omitempty"`
}

var monthlyTextFields = map[string]bool{
	"month":      true,
	"lgu":        true,
	"province":   true,
	"city":       true,
	"region":     true,
	"regionCode": true,
}

// Count implements Counter with the residual fallback.
func (record MonthlyRecord) Count(name string) int64 {
	return countWithFallback(record.Counters, record.Residual, name)
}

/*
UnmarshalJSON accepts the flat wire shape
{"month": "2024-01", "newPaid": 4, "renewalPending": "2", ...}.
Malformed counters are skipped instead of failing the record.
*/
func (record *MonthlyRecord) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decoded := MonthlyRecord{Counters: make(Counters)}
	text := map[string]*string{
		"month":      &decoded.Month,
		"lgu":        &decoded.LGU,
		"province":   &decoded.Province,
		"city":       &decoded.City,
		"region":     &decoded.Region,
		"regionCode": &decoded.RegionCode,
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := fields[name]
		if monthlyTextFields[name] {
			err := json.Unmarshal(raw, text[name])
			if err != nil {
				tl.Log(tl.Verbose, palette.CyanDim, "Ignoring monthly field '%s': %s is not text", name, string(raw))
			}
			continue
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			nested := decodeNestedCounters(trimmed)
			if len(nested) > 0 {
				decoded.Residual = append(decoded.Residual, nested)
			}
			continue
		}

		if value, ok := parseCount(raw); ok {
			decoded.Counters[name] = value
		}
	}

	*record = decoded
	return nil
}

/*
MarshalJSON writes the same flat shape UnmarshalJSON reads, so a record
survives a round trip through the export queue.
*/
func (record MonthlyRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(record.Counters)+len(record.Residual)+6)
	for name, value := range map[string]string{
		"month":      record.Month,
		"lgu":        record.LGU,
		"province":   record.Province,
		"city":       record.City,
		"region":     record.Region,
		"regionCode": record.RegionCode,
	} {
		if value != "" {
			flat[name] = value
		}
	}
	for name, value := range record.Counters {
		flat[name] = value
	}
	for index, nested := range record.Residual {
		flat[fmt.Sprintf("residual%d", index)] = nested
	}
	return json.Marshal(flat)
}

func decodeNestedCounters(raw []byte) Counters {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	nested := make(Counters)
	for name, value := range fields {
		if count, ok := parseCount(value); ok {
			nested[name] = count
		}
	}
	return nested
}

/*
LocalityRecord is a locality (LGU) and its monthly records, in feed order.
Identity is (lgu, province).
*/
type LocalityRecord struct {
	LGU            string          `json:"lgu"`
	Province       string          `json:"province,omitempty"`
	City           string          `json:"city,omitempty"`
	Region         string          `json:"region,omitempty"`
	RegionCode     string          `json:"regionCode,omitempty"`
	MonthlyResults []MonthlyRecord `json:"monthlyResults"`
}

// Dataset is the raw feed: {"results": [...]}.
type Dataset struct {
	Results []LocalityRecord `json:"results"`
}

/*
DecodeDataset reads a dataset from JSON.

The caller decides what a decode failure means; the engine itself treats an
empty Dataset as a valid, empty report.
*/
func DecodeDataset(reader io.Reader) (dataset Dataset, e *xerr.Error) {
	decoder := json.NewDecoder(reader)
	decodeErr := decoder.Decode(&dataset)
	if decodeErr != nil {
		e = xerr.NewError(decodeErr, "decode dataset JSON", "results")
		return Dataset{}, e
	}

	monthCount := 0
	for _, locality := range dataset.Results {
		monthCount += len(locality.MonthlyResults)
	}
	tl.Log(
		tl.Info1, palette.Cyan, "Decoded dataset with '%v' localities and '%v' monthly records",
		len(dataset.Results), monthCount,
	)

	return dataset, e
}
