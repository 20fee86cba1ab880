package stats

import (
	"math"
	"strconv"
)

// round rounds v to places decimals. Formatting the exact binary value
// rounds half to even, so 2.675 becomes 2.67 and 0.125 becomes 0.12.
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return 0
	}
	return r
}

// mean returns sum/n, or 0 when n is zero.
func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
