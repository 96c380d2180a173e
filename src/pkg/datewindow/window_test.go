package datewindow

import (
	"encoding/json"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	feb := date(2024, time.February, 1)
	tests := []struct {
		name   string
		value  any
		want   time.Time
		wantOK bool
	}{
		{"nil", nil, time.Time{}, false},
		{"blank text", "  ", time.Time{}, false},
		{"garbage text", "next tuesday", time.Time{}, false},
		{"month text", "2024-02", feb, true},
		{"day text", "2024-02-15", date(2024, time.February, 15), true},
		{"rfc3339", "2024-02-15T10:00:00Z", time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC), true},
		{"us text", "02/15/2024", date(2024, time.February, 15), true},
		{"year text", "2024", date(2024, time.January, 1), true},
		{"time value", feb, feb, true},
		{"time pointer", &feb, feb, true},
		{"nil pointer", (*time.Time)(nil), time.Time{}, false},
		{"zero time", time.Time{}, time.Time{}, false},
		{"millis int64", feb.UnixMilli(), feb, true},
		{"millis float", float64(feb.UnixMilli()), feb, true},
		{"millis json number", json.Number("1706745600000"), feb, true},
		{"millis text", "1706745600000", feb, true},
		{"basic date text", "20240215", date(2024, time.February, 15), true},
		{"eight digit millis", "12345678", time.UnixMilli(12345678).UTC(), true},
		{"negative millis", int64(-5), time.Time{}, false},
		{"unsupported type", []int{1}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestYearOnly(t *testing.T) {
	tests := map[any]bool{
		"2024":     true,
		" 2024 ":   true,
		"2024-02":  false,
		"202":      false,
		"20240215": false,
		2024:       false,
	}
	for value, want := range tests {
		if got := YearOnly(value); got != want {
			t.Errorf("YearOnly(%#v) = %v, want %v", value, got, want)
		}
	}
}

func TestContainsMonthUsesCalendarMonths(t *testing.T) {
	window := NewWindow("2024-02-20", "2024-03-05")

	tests := map[string]bool{
		"2024-01":    false,
		"2024-02":    true,
		"2024-02-01": true,
		"2024-03":    true,
		"2024-03-31": true,
		"2024-04":    false,
		"garbage":    false,
	}
	for month, want := range tests {
		if got := window.ContainsMonth(month); got != want {
			t.Errorf("ContainsMonth(%q) = %v, want %v", month, got, want)
		}
	}
}

func TestContainsMonthOpenBounds(t *testing.T) {
	all := NewWindow(nil, "not a date")
	if !all.Unbounded() {
		t.Fatal("unparseable bounds should leave the window open")
	}
	if !all.ContainsMonth("1999-12") || !all.ContainsMonth("garbage") {
		t.Error("an unbounded window matches every month")
	}

	startOnly := NewWindow("2024-03", nil)
	if startOnly.ContainsMonth("2024-02") {
		t.Error("start-only window must exclude earlier months")
	}
	if !startOnly.ContainsMonth("2030-01") {
		t.Error("start-only window must include later months")
	}

	endOnly := NewWindow("", "2024-03")
	if !endOnly.ContainsMonth("2001-01") {
		t.Error("end-only window must include earlier months")
	}
	if endOnly.ContainsMonth("2024-04") {
		t.Error("end-only window must exclude later months")
	}
}

func TestContainsDayUsesCalendarDays(t *testing.T) {
	window := NewWindow("2024-02-10", "2024-02-20")

	tests := map[string]bool{
		"2024-02-09": false,
		"2024-02-10": true,
		"2024-02-20": true,
		"2024-02-21": false,
		"2024-02":    false,
	}
	for day, want := range tests {
		if got := window.ContainsDay(day); got != want {
			t.Errorf("ContainsDay(%q) = %v, want %v", day, got, want)
		}
	}
}

func TestLabels(t *testing.T) {
	window := NewWindow("2024-01-05", "2024-03-09")
	if got := window.MonthLabel(); got != "January 2024 - March 2024" {
		t.Errorf("MonthLabel = %q", got)
	}
	if got := window.DayLabel(); got != "Jan 05, 2024 - Mar 09, 2024" {
		t.Errorf("DayLabel = %q", got)
	}
	if got := window.YearLabel(); got != "2024" {
		t.Errorf("YearLabel = %q", got)
	}
	if got := NewWindow("2024-02", nil).MonthLabel(); got != "From February 2024" {
		t.Errorf("start-only MonthLabel = %q", got)
	}
	if got := Label(window, "Day"); got != window.DayLabel() {
		t.Errorf("Label(Day) = %q", got)
	}
	if got := Label(window, ""); got != window.MonthLabel() {
		t.Errorf("Label('') = %q", got)
	}
	if got := (Window{}).MonthLabel(); got != AllDates {
		t.Errorf("empty MonthLabel = %q", got)
	}
	if got := window.MonthsBetween(); got != 3 {
		t.Errorf("MonthsBetween = %d, want 3", got)
	}
}
