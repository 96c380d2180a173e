/*
Package datewindow normalizes the date values a report filter can carry and
answers whether a record's month falls inside the selected range.

Two comparisons exist on purpose:
  - ContainsMonth works on whole calendar months (Month and Year reports).
  - ContainsDay works on calendar days (Day reports).
*/
package datewindow

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ISO 8601 basic date, tried before digit-only text is read as Unix millis
const basicDateLayout = "20060102"

var textLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	"01/02/2006",
	"2006/01/02",
}

/*
Normalize turns a date-like value into a UTC time.

Accepted: time.Time, *time.Time, text in any of textLayouts, and Unix
millisecond timestamps (numbers, json.Number, or digit-only text longer than a
year). Anything else, including zero times and blank text, returns ok=false.
*/
func Normalize(value any) (parsed time.Time, ok bool) {
	switch typed := value.(type) {
	case nil:
		return parsed, false
	case time.Time:
		if typed.IsZero() {
			return parsed, false
		}
		return typed.UTC(), true
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return parsed, false
		}
		return typed.UTC(), true
	case string:
		return parseText(typed)
	case json.Number:
		millis, err := typed.Int64()
		if err != nil {
			floatValue, floatErr := typed.Float64()
			if floatErr != nil {
				return parsed, false
			}
			millis = int64(floatValue)
		}
		return fromMillis(millis)
	case int:
		return fromMillis(int64(typed))
	case int64:
		return fromMillis(typed)
	case float64:
		return fromMillis(int64(typed))
	default:
		return parsed, false
	}
}

// YearOnly reports whether value is a bare "YYYY" string.
func YearOnly(value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(text)
	return len(trimmed) == 4 && isDigits(trimmed)
}

func parseText(raw string) (parsed time.Time, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return parsed, false
	}

	if len(trimmed) == 8 && isDigits(trimmed) {
		value, parseErr := time.Parse(basicDateLayout, trimmed)
		if parseErr == nil {
			return value.UTC(), true
		}
	}

	if len(trimmed) > 4 && isDigits(trimmed) {
		millis, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return parsed, false
		}
		return fromMillis(millis)
	}

	for _, layout := range textLayouts {
		value, parseErr := time.Parse(layout, trimmed)
		if parseErr == nil {
			return value.UTC(), true
		}
	}
	return parsed, false
}

func fromMillis(millis int64) (parsed time.Time, ok bool) {
	if millis <= 0 {
		return parsed, false
	}
	return time.UnixMilli(millis).UTC(), true
}

func isDigits(text string) bool {
	for _, character := range text {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

/*
Window is an inclusive date range. A nil bound is open on that side.
*/
type Window struct {
	Start *time.Time
	End   *time.Time
}

/*
NewWindow builds a Window from raw filter values. Bounds that fail to
normalize are left open rather than rejected.
*/
func NewWindow(start any, end any) Window {
	window := Window{}
	if parsed, ok := Normalize(start); ok {
		window.Start = &parsed
	}
	if parsed, ok := Normalize(end); ok {
		window.End = &parsed
	}
	return window
}

// Unbounded reports whether neither bound is set.
func (window Window) Unbounded() bool {
	return window.Start == nil && window.End == nil
}

/*
ContainsMonth compares on calendar-month boundaries: the month's first day must
not precede the start month's first day, and must not pass the end month's last
day. A day component in either value is ignored.
*/
func (window Window) ContainsMonth(month string) bool {
	if window.Unbounded() {
		return true
	}
	parsed, ok := Normalize(month)
	if !ok {
		return false
	}

	first := MonthStart(parsed)
	if window.Start != nil && first.Before(MonthStart(*window.Start)) {
		return false
	}
	if window.End != nil && first.After(MonthEnd(*window.End)) {
		return false
	}
	return true
}

/*
ContainsDay compares on calendar days, both bounds inclusive. A "YYYY-MM"
value counts as the first day of that month.
*/
func (window Window) ContainsDay(date string) bool {
	if window.Unbounded() {
		return true
	}
	parsed, ok := Normalize(date)
	if !ok {
		return false
	}

	day := DayStart(parsed)
	if window.Start != nil && day.Before(DayStart(*window.Start)) {
		return false
	}
	if window.End != nil && day.After(DayStart(*window.End)) {
		return false
	}
	return true
}

// MonthStart is the first instant of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd is the last instant of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// DayStart is midnight of t's day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
