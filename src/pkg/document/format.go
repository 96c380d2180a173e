package document

import (
	"strconv"
	"strings"
)

/*
groupThousands inserts sep between every group of three digits, counting from
the right. raw must be digits only.
*/
func groupThousands(raw string, sep string) string {
	if len(raw) <= 3 {
		return raw
	}

	var builder strings.Builder
	firstGroupLen := len(raw) % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}

	builder.WriteString(raw[:firstGroupLen])

	for index := firstGroupLen; index < len(raw); index += 3 {
		builder.WriteString(sep)
		builder.WriteString(raw[index : index+3])
	}

	return builder.String()
}

// formatCount prints a counter with comma separators ("-1,234").
func formatCount(value int64) string {
	if value < 0 {
		return "-" + groupThousands(strconv.FormatInt(-value, 10), ",")
	}
	return groupThousands(strconv.FormatInt(value, 10), ",")
}
