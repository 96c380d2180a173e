/*
Package locality pulls city and province out of a locality string.

The data source writes combined localities as "City, Province". The first
comma-separated segment is the city; whatever follows the last comma is the
province. Explicit fields always win over parsed ones.
*/
package locality

import (
	"strings"
)

/*
Split parses a combined locality string.

	"Quezon City, Metro Manila"      -> ("Quezon City", "Metro Manila")
	"Poblacion, Taytay, Rizal"       -> ("Poblacion", "Rizal")
	"Makati"                         -> ("Makati", "")
*/
func Split(lgu string) (city string, province string) {
	trimmed := strings.TrimSpace(lgu)
	if trimmed == "" {
		return "", ""
	}

	firstComma := strings.Index(trimmed, ",")
	if firstComma < 0 {
		return trimmed, ""
	}

	lastComma := strings.LastIndex(trimmed, ",")
	city = strings.TrimSpace(trimmed[:firstComma])
	province = strings.TrimSpace(trimmed[lastComma+1:])
	return city, province
}

// City returns the explicit city when present, otherwise the parsed one.
func City(explicit string, lgu string) string {
	if value := strings.TrimSpace(explicit); value != "" {
		return value
	}
	city, _ := Split(lgu)
	return city
}

// Province returns the explicit province when present, otherwise the parsed one.
func Province(explicit string, lgu string) string {
	if value := strings.TrimSpace(explicit); value != "" {
		return value
	}
	_, province := Split(lgu)
	return province
}

/*
Matches reports whether value equals one of the selected names after trimming
and case folding. An empty selection matches everything.
*/
func Matches(value string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	normalized := strings.TrimSpace(value)
	for _, candidate := range selected {
		if strings.EqualFold(normalized, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
