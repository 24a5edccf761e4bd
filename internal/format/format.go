// Package format renders figures for display.
package format

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Currency abbreviates v to billions, millions or thousands with two
// decimals. Smaller amounts are whole dollars. Zero and NaN render as "$0".
func Currency(v float64) string {
	if math.IsNaN(v) || v == 0 {
		return "$0"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case math.IsInf(v, 0):
		return sign + "$∞"
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.2fK", sign, v/1e3)
	default:
		return sign + "$" + humanize.Comma(int64(math.Round(v)))
	}
}

// Number rounds v and inserts thousands separators.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return humanize.Comma(int64(math.Round(v)))
}
