package spreadsheet

import (
	"fmt"

	"github.com/tuumbleweed/xerr"
	"github.com/xuri/excelize/v2"
)

const thousandsFormat = 3 // "#,##0"

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "9E9E9E", Style: 1},
		{Type: "top", Color: "9E9E9E", Style: 1},
		{Type: "right", Color: "9E9E9E", Style: 1},
		{Type: "bottom", Color: "9E9E9E", Style: 1},
	}
}

func roleStyle(role Role) excelize.Style {
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	switch role {
	case RoleDateLabel:
		return excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14},
			Alignment: centered,
		}
	case RoleColumnTitle:
		return excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
			Alignment: centered,
			Border:    borders(),
		}
	case RoleRegion:
		return excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: centered,
			Border:    borders(),
		}
	case RoleLocality:
		return excelize.Style{
			Alignment: &excelize.Alignment{Vertical: "center"},
			Border:    borders(),
		}
	case RoleNumber:
		return excelize.Style{
			NumFmt:    thousandsFormat,
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    borders(),
		}
	case RoleTotalLabel:
		return excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
			Alignment: centered,
			Border:    borders(),
		}
	case RoleTotalNumber:
		return excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
			NumFmt:    thousandsFormat,
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    borders(),
		}
	default:
		return excelize.Style{}
	}
}

/*
registerStyles creates one excelize style per role and returns their IDs.
*/
func registerStyles(file *excelize.File) (styleIDs map[Role]int, e *xerr.Error) {
	styleIDs = make(map[Role]int)
	roles := []Role{
		RoleDateLabel, RoleColumnTitle, RoleRegion, RoleLocality,
		RoleNumber, RoleTotalLabel, RoleTotalNumber,
	}
	for _, role := range roles {
		style := roleStyle(role)
		styleID, err := file.NewStyle(&style)
		if err != nil {
			e = xerr.NewError(err, "create workbook cell style", fmt.Sprintf("role %d", role))
			return nil, e
		}
		styleIDs[role] = styleID
	}
	return styleIDs, e
}
