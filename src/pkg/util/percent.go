package util

import "math"

// Percent is round(done/total*100), clamped to [0, 100]. A zero total reads as done.
func Percent(done int, total int) int {
	if total <= 0 {
		return 100
	}
	value := int(math.Round(float64(done) * 100 / float64(total)))
	return Clamp(value, 0, 100)
}
