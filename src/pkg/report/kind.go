package report

import (
	"fmt"
	"sort"
	"strings"
)

/*
Column is one numeric output column. Direct columns read a single counter;
derived columns sum several.
*/
type Column struct {
	Title  string
	Group  string
	Fields []string
}

// Value reads the column from any counter source.
func (column Column) Value(source Counter) int64 {
	sum := int64(0)
	for _, field := range column.Fields {
		sum += source.Count(field)
	}
	return sum
}

// Derived reports whether the column sums more than one counter.
func (column Column) Derived() bool {
	return len(column.Fields) > 1
}

/*
Capacity is the number of data rows per document page. The first page holds
fewer rows because it carries the logo and report heading.
*/
type Capacity struct {
	First int
	Next  int
}

/*
Kind is the capability descriptor of a report family: which counters it sums,
how they are laid out as columns and how many rows fit on a page.
*/
type Kind struct {
	Name     string
	Title    string
	Fields   []string
	Columns  []Column
	Capacity Capacity
}

const (
	KindBusinessPermit = "business-permit"
	KindWorkingPermit  = "working-permit"
	KindClearance      = "clearance"
)

// Titles of the two leading text columns of every layout.
const (
	RegionColumnTitle   = "Region"
	LocalityColumnTitle = "LGU"
)

func permitColumns() (fields []string, columns []Column) {
	for _, category := range []struct {
		prefix string
		title  string
	}{
		{prefix: "new", title: "New"},
		{prefix: "renewal", title: "Renewal"},
	} {
		paid := category.prefix + "Paid"
		pending := category.prefix + "Pending"
		egovPaid := category.prefix + "EgovPaid"
		male := category.prefix + "Male"
		female := category.prefix + "Female"
		fields = append(fields, paid, pending, egovPaid, male, female)

		columns = append(columns,
			Column{Title: "Paid", Group: category.title, Fields: []string{paid}},
			Column{Title: "Pending", Group: category.title, Fields: []string{pending}},
			Column{Title: "eGov Paid", Group: category.title, Fields: []string{egovPaid}},
			Column{Title: "Male", Group: category.title, Fields: []string{male}},
			Column{Title: "Female", Group: category.title, Fields: []string{female}},
			Column{Title: "Subtotal", Group: category.title, Fields: []string{paid, pending, egovPaid}},
		)
	}

	columns = append(columns,
		Column{
			Title:  "Total Paid",
			Fields: []string{"newPaid", "newEgovPaid", "renewalPaid", "renewalEgovPaid"},
		},
		Column{
			Title: "Total Transactions",
			Fields: []string{
				"newPaid", "newPending", "newEgovPaid",
				"renewalPaid", "renewalPending", "renewalEgovPaid",
			},
		},
	)
	return fields, columns
}

func permitKind(name string, title string) Kind {
	fields, columns := permitColumns()
	return Kind{
		Name:     name,
		Title:    title,
		Fields:   fields,
		Columns:  columns,
		Capacity: Capacity{First: 10, Next: 13},
	}
}

var kinds = map[string]Kind{
	KindBusinessPermit: permitKind(KindBusinessPermit, "Business Permit Transactions"),
	KindWorkingPermit:  permitKind(KindWorkingPermit, "Working Permit Transactions"),
	KindClearance: {
		Name:     KindClearance,
		Title:    "Clearance Transactions",
		Fields:   []string{"totalCount"},
		Columns:  []Column{{Title: "Total", Fields: []string{"totalCount"}}},
		Capacity: Capacity{First: 15, Next: 18},
	},
}

// KindByName looks up a report kind, case-insensitively.
func KindByName(name string) (kind Kind, err error) {
	kind, exists := kinds[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return Kind{}, fmt.Errorf("unknown report kind '%s', expected one of %v", name, KindNames())
	}
	return kind, nil
}

// KindNames lists the registered kinds in alphabetical order.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnCount is the total number of spreadsheet columns, text columns included.
func (kind Kind) ColumnCount() int {
	return 2 + len(kind.Columns)
}

// ColumnTitles returns every column title in output order.
func (kind Kind) ColumnTitles() []string {
	titles := []string{RegionColumnTitle, LocalityColumnTitle}
	for _, column := range kind.Columns {
		if column.Group != "" {
			titles = append(titles, column.Group+" "+column.Title)
			continue
		}
		titles = append(titles, column.Title)
	}
	return titles
}

// Values reads every numeric column of the kind from source.
func (kind Kind) Values(source Counter) []int64 {
	values := make([]int64, len(kind.Columns))
	for index, column := range kind.Columns {
		values[index] = column.Value(source)
	}
	return values
}
