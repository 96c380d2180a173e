package spreadsheet

import (
	"bytes"
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"github.com/xuri/excelize/v2"

	"permit-report/src/pkg/report"
)

// SheetName is the only sheet of an exported workbook.
const SheetName = "Report"

// ContentType is the MIME type of the workbook bytes.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func cellName(row int, column int) (name string, e *xerr.Error) {
	name, err := excelize.CoordinatesToCellName(column+1, row+1)
	if err != nil {
		e = xerr.NewError(err, "convert grid coordinates to cell name", fmt.Sprintf("row %d column %d", row, column))
		return "", e
	}
	return name, e
}

/*
Render writes the report into a new workbook. Either every cell, merge and
style is applied or an error is returned and the file is discarded.
*/
func Render(built report.Report) (file *excelize.File, e *xerr.Error) {
	grid := BuildGrid(built)
	file = excelize.NewFile()

	err := file.SetSheetName("Sheet1", SheetName)
	if err != nil {
		e = xerr.NewError(err, "rename default sheet", SheetName)
		return nil, e
	}

	styleIDs, e := registerStyles(file)
	if e != nil {
		return nil, e
	}

	for rowIndex, row := range grid.Cells {
		for columnIndex, cell := range row {
			name, e := cellName(rowIndex, columnIndex)
			if e != nil {
				return nil, e
			}
			if cell.Value != nil {
				err = file.SetCellValue(SheetName, name, cell.Value)
				if err != nil {
					e = xerr.NewError(err, "set cell value", name)
					return nil, e
				}
			}
			if styleID, exists := styleIDs[cell.Role]; exists {
				err = file.SetCellStyle(SheetName, name, name, styleID)
				if err != nil {
					e = xerr.NewError(err, "set cell style", name)
					return nil, e
				}
			}
		}
	}

	for _, merge := range grid.Merges {
		topLeft, e := cellName(merge.FirstRow, merge.FirstColumn)
		if e != nil {
			return nil, e
		}
		bottomRight, e := cellName(merge.LastRow, merge.LastColumn)
		if e != nil {
			return nil, e
		}
		err = file.MergeCell(SheetName, topLeft, bottomRight)
		if err != nil {
			e = xerr.NewError(err, "merge cells", topLeft+":"+bottomRight)
			return nil, e
		}
	}

	e = setColumnWidths(file, grid.Columns)
	if e != nil {
		return nil, e
	}

	tl.Log(
		tl.Info1, palette.Green, "Rendered workbook with '%v' rows, '%v' columns and '%v' merges",
		len(grid.Cells), grid.Columns, len(grid.Merges),
	)
	return file, e
}

func setColumnWidths(file *excelize.File, columns int) (e *xerr.Error) {
	widths := map[string]float64{"A": 12, "B": 38}
	for name, width := range widths {
		err := file.SetColWidth(SheetName, name, name, width)
		if err != nil {
			e = xerr.NewError(err, "set column width", name)
			return e
		}
	}
	if columns <= 2 {
		return e
	}

	lastName, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		e = xerr.NewError(err, "convert column number to name", fmt.Sprintf("%d", columns))
		return e
	}
	err = file.SetColWidth(SheetName, "C", lastName, 14)
	if err != nil {
		e = xerr.NewError(err, "set column width", "C:"+lastName)
		return e
	}
	return e
}

/*
RenderBytes renders the report and serializes the workbook.
*/
func RenderBytes(built report.Report) (content []byte, e *xerr.Error) {
	file, e := Render(built)
	if e != nil {
		return nil, e
	}
	defer file.Close()

	buffer, err := file.WriteToBuffer()
	if err != nil {
		e = xerr.NewError(err, "serialize workbook", SheetName)
		return nil, e
	}
	return bytes.Clone(buffer.Bytes()), e
}
