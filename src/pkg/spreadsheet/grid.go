package spreadsheet

import (
	"permit-report/src/pkg/report"
)

// Role decides the style a cell gets in the workbook.
type Role int

const (
	RoleEmpty Role = iota
	RoleDateLabel
	RoleColumnTitle
	RoleRegion
	RoleLocality
	RoleNumber
	RoleTotalLabel
	RoleTotalNumber
)

// Cell is one grid position. Value is a string, an int64 or nil.
type Cell struct {
	Value any
	Role  Role
}

// Merge is an inclusive, zero-based rectangle of cells.
type Merge struct {
	FirstRow    int
	FirstColumn int
	LastRow     int
	LastColumn  int
}

/*
Grid is the workbook content before it touches excelize: a rectangular cell
matrix plus merge ranges. Keeping it pure lets the layout be tested without
reading a file back.
*/
type Grid struct {
	Cells         [][]Cell
	Merges        []Merge
	Columns       int
	GrandTotalRow int
}

func (grid *Grid) appendRow(row []Cell) int {
	grid.Cells = append(grid.Cells, row)
	return len(grid.Cells) - 1
}

func (grid *Grid) blankRow(role Role) []Cell {
	row := make([]Cell, grid.Columns)
	for index := range row {
		row[index] = Cell{Role: role}
	}
	return row
}

/*
BuildGrid lays a report out as: the date label merged across the first row,
column titles on the second, one block per region and a final grand-total row
whose caption spans the region and locality columns. The region cell of a
multi-row block is merged vertically in every date mode.
*/
func BuildGrid(built report.Report) (grid Grid) {
	view := report.Table(built)
	grid.Columns = len(view.Columns)

	labelRow := grid.blankRow(RoleDateLabel)
	labelRow[0].Value = view.DateLabel
	rowIndex := grid.appendRow(labelRow)
	grid.Merges = append(grid.Merges, Merge{FirstRow: rowIndex, LastRow: rowIndex, LastColumn: grid.Columns - 1})

	titleRow := grid.blankRow(RoleColumnTitle)
	for index, title := range view.Columns {
		titleRow[index].Value = title
	}
	grid.appendRow(titleRow)

	for _, tableRegion := range view.Regions {
		blockStart := len(grid.Cells)
		for index, tableRow := range tableRegion.Rows {
			row := grid.blankRow(RoleNumber)
			row[0] = Cell{Role: RoleRegion}
			if index == 0 {
				row[0].Value = tableRow.RegionCode
			}
			row[1] = Cell{Value: tableRow.Locality, Role: RoleLocality}
			for column, value := range tableRow.Values {
				row[2+column].Value = value
			}
			grid.appendRow(row)
		}

		blockEnd := len(grid.Cells) - 1
		if blockEnd > blockStart {
			grid.Merges = append(grid.Merges, Merge{FirstRow: blockStart, LastRow: blockEnd})
		}
	}

	totalRow := grid.blankRow(RoleTotalNumber)
	totalRow[0] = Cell{Value: view.GrandTotalLabel, Role: RoleTotalLabel}
	totalRow[1] = Cell{Role: RoleTotalLabel}
	for index, value := range view.GrandTotal {
		totalRow[2+index].Value = value
	}
	grid.GrandTotalRow = grid.appendRow(totalRow)
	grid.Merges = append(grid.Merges, Merge{FirstRow: grid.GrandTotalRow, LastRow: grid.GrandTotalRow, LastColumn: 1})

	return grid
}
