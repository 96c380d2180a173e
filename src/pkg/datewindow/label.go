package datewindow

import (
	"fmt"
	"strings"
)

// AllDates labels a window with no bounds.
const AllDates = "All Dates"

// MonthLabel renders the window as "January 2024 - March 2024".
func (window Window) MonthLabel() string {
	return window.label("January 2006")
}

// DayLabel renders the window as "Feb 01, 2024 - Feb 29, 2024".
func (window Window) DayLabel() string {
	return window.label("Jan 02, 2006")
}

// YearLabel renders the window as "2023 - 2024".
func (window Window) YearLabel() string {
	return window.label("2006")
}

// Label picks the label style for a granularity: "Day", "Year", anything else is Month.
func Label(window Window, granularity string) string {
	switch strings.ToLower(granularity) {
	case "day":
		return window.DayLabel()
	case "year":
		return window.YearLabel()
	default:
		return window.MonthLabel()
	}
}

func (window Window) label(layout string) string {
	switch {
	case window.Start != nil && window.End != nil:
		startText := window.Start.Format(layout)
		endText := window.End.Format(layout)
		if startText == endText {
			return startText
		}
		return fmt.Sprintf("%s - %s", startText, endText)
	case window.Start != nil:
		return "From " + window.Start.Format(layout)
	case window.End != nil:
		return "Until " + window.End.Format(layout)
	default:
		return AllDates
	}
}

// MonthsBetween counts calendar months covered by a closed window, or 0 when open.
func (window Window) MonthsBetween() int {
	if window.Start == nil || window.End == nil {
		return 0
	}
	start := MonthStart(*window.Start)
	end := MonthStart(*window.End)
	if end.Before(start) {
		return 0
	}
	return (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
}
