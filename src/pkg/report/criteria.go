package report

import (
	"strings"
	"time"

	"permit-report/src/pkg/datewindow"
)

// DateType selects how monthly records are compared with the window and merged.
type DateType string

const (
	DateTypeDay   DateType = "Day"
	DateTypeMonth DateType = "Month"
	DateTypeYear  DateType = "Year"
)

// ParseDateType accepts any casing; unknown or empty values mean Month.
func ParseDateType(raw string) DateType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day":
		return DateTypeDay
	case "year":
		return DateTypeYear
	default:
		return DateTypeMonth
	}
}

// DateRange bounds are left raw; they go through datewindow.Normalize.
type DateRange struct {
	Start any `json:"start,omitempty"`
	End   any `json:"end,omitempty"`
}

/*
FilterCriteria is the user's filter state. Any empty list means "match all".
Islands, when they name a known island, replace SelectedRegions.
*/
type FilterCriteria struct {
	SelectedRegions   []string  `json:"selectedRegions,omitempty"`
	SelectedProvinces []string  `json:"selectedProvinces,omitempty"`
	SelectedCities    []string  `json:"selectedCities,omitempty"`
	SelectedIslands   []string  `json:"selectedIslands,omitempty"`
	DateRange         DateRange `json:"dateRange"`
	SelectedDateType  DateType  `json:"selectedDateType,omitempty"`
}

// Mode is the effective date type; empty means Month.
func (criteria FilterCriteria) Mode() DateType {
	return ParseDateType(string(criteria.SelectedDateType))
}

/*
Window normalizes the date range. In Year mode a bare "YYYY" bound covers its
whole calendar year, so ("2024", "2024") spans January to December; any
finer bound is kept as given.
*/
func (criteria FilterCriteria) Window() datewindow.Window {
	window := datewindow.NewWindow(criteria.DateRange.Start, criteria.DateRange.End)
	if criteria.Mode() != DateTypeYear {
		return window
	}

	if window.Start != nil && datewindow.YearOnly(criteria.DateRange.Start) {
		start := time.Date(window.Start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		window.Start = &start
	}
	if window.End != nil && datewindow.YearOnly(criteria.DateRange.End) {
		end := time.Date(window.End.Year(), time.December, 1, 0, 0, 0, 0, time.UTC)
		window.End = &end
	}
	return window
}

// DateLabel is the header text shared by the table and both exports.
func (criteria FilterCriteria) DateLabel() string {
	return datewindow.Label(criteria.Window(), string(criteria.Mode()))
}
