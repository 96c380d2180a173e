/*
Package region maps between the codes people type ("IV-A", "R4A", "BARMM I")
and the internal region keys the datasets are keyed by ("region4a", "BARMM1").

The table is fixed. Lookups never fail loudly: an unknown display key comes
back unchanged and an unknown code reports ok=false.
*/
package region

import (
	"strings"
)

type entry struct {
	Key     string // internal storage key
	Display string // code printed in exports
	Roman   string // code used by island membership and regionCode fields
}

var table = []entry{
	{Key: "region1", Display: "R1", Roman: "I"},
	{Key: "region2", Display: "R2", Roman: "II"},
	{Key: "region3", Display: "R3", Roman: "III"},
	{Key: "region4", Display: "R4", Roman: "IV"},
	{Key: "region4a", Display: "R4A", Roman: "IV-A"},
	{Key: "region4b", Display: "R4B", Roman: "IV-B"},
	{Key: "region5", Display: "R5", Roman: "V"},
	{Key: "region6", Display: "R6", Roman: "VI"},
	{Key: "region7", Display: "R7", Roman: "VII"},
	{Key: "region8", Display: "R8", Roman: "VIII"},
	{Key: "region9", Display: "R9", Roman: "IX"},
	{Key: "region10", Display: "R10", Roman: "X"},
	{Key: "region11", Display: "R11", Roman: "XI"},
	{Key: "region12", Display: "R12", Roman: "XII"},
	{Key: "region13", Display: "R13", Roman: "XIII"},
	{Key: "CAR", Display: "CAR", Roman: "CAR"},
	{Key: "NCR", Display: "NCR", Roman: "NCR"},
	{Key: "NIR", Display: "NIR", Roman: "NIR"},
	{Key: "BARMM1", Display: "BARMM I", Roman: "BARMM1"},
	{Key: "BARMM2", Display: "BARMM II", Roman: "BARMM2"},
}

var (
	keyByAlias   = make(map[string]string)
	entryByKey   = make(map[string]entry)
	entryByRoman = make(map[string]entry)
)

func init() {
	for _, regionEntry := range table {
		entryByKey[regionEntry.Key] = regionEntry
		entryByRoman[regionEntry.Roman] = regionEntry

		aliases := []string{
			regionEntry.Key,
			regionEntry.Display,
			regionEntry.Roman,
			"region " + regionEntry.Roman,
		}
		for _, alias := range aliases {
			keyByAlias[normalizeCode(alias)] = regionEntry.Key
		}
	}
}

/*
normalizeCode folds case and drops spaces, dashes and underscores so that
"IV-A", "iv a", "R4A" and "region4a" each land on a single alias form.
*/
func normalizeCode(code string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "", ".", "")
	return replacer.Replace(strings.ToUpper(strings.TrimSpace(code)))
}

/*
ToInternalKey resolves any known spelling of a region to its internal key.

Accepted spellings: internal keys ("region4a"), display codes ("R4A"),
Roman codes ("IV-A") and "Region IV-A". Unknown or empty input returns ok=false.
*/
func ToInternalKey(code string) (key string, ok bool) {
	normalized := normalizeCode(code)
	if normalized == "" {
		return "", false
	}
	key, ok = keyByAlias[normalized]
	return key, ok
}

/*
ToDisplayCode returns the export code for an internal key ("region4a" -> "R4A").
Keys outside the table are returned as given.
*/
func ToDisplayCode(key string) string {
	regionEntry, exists := entryByKey[key]
	if !exists {
		return key
	}
	return regionEntry.Display
}

// ToRomanCode returns the Roman code of an internal key, or the key itself.
func ToRomanCode(key string) string {
	regionEntry, exists := entryByKey[key]
	if !exists {
		return key
	}
	return regionEntry.Roman
}

// Keys lists every internal key in table order.
func Keys() []string {
	keys := make([]string, 0, len(table))
	for _, regionEntry := range table {
		keys = append(keys, regionEntry.Key)
	}
	return keys
}
