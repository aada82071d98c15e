package shared

import "math"

// RoundCredits rounds a currency amount to whole cents
func RoundCredits(amount float64) float64 {
	return math.Round(amount*100) / 100
}
