package utils

import "math"

// RoundPercent returns round(part/total*100) with half-away-from-zero rounding,
// or 0 when total is zero.
func RoundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// RoundTo rounds v to the given number of decimals, half away from zero.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
