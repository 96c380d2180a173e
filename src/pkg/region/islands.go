package region

import (
	"strings"
)

// Island group names as they arrive from the filter UI.
const (
	Luzon    = "Luzon"
	Visayas  = "Visayas"
	Mindanao = "Mindanao"
)

var islandRegions = map[string][]string{
	Luzon:    {"I", "II", "III", "IV-A", "IV-B", "V", "CAR", "NCR"},
	Visayas:  {"VI", "VII", "VIII", "NIR"},
	Mindanao: {"IX", "X", "XI", "XII", "XIII", "BARMM1", "BARMM2"},
}

var islandOrder = []string{Luzon, Visayas, Mindanao}

/*
RegionsForIslands expands island names into their Roman region codes.

Names are matched case-insensitively; unknown names contribute nothing.
The result follows Luzon, Visayas, Mindanao order with no duplicates.
*/
func RegionsForIslands(islands []string) []string {
	selected := make(map[string]bool)
	for _, island := range islands {
		for _, known := range islandOrder {
			if strings.EqualFold(strings.TrimSpace(island), known) {
				selected[known] = true
			}
		}
	}

	codes := make([]string, 0)
	for _, island := range islandOrder {
		if !selected[island] {
			continue
		}
		codes = append(codes, islandRegions[island]...)
	}
	return codes
}

/*
KeysForIslands is RegionsForIslands translated to internal keys, returned as a
set for membership checks.
*/
func KeysForIslands(islands []string) map[string]bool {
	keys := make(map[string]bool)
	for _, code := range RegionsForIslands(islands) {
		key, ok := ToInternalKey(code)
		if ok {
			keys[key] = true
		}
	}
	return keys
}
