// Package symbols holds the ticker universe offered to users and the
// default baskets queried when none is given.
package symbols

import (
	"strings"
	"unicode"
)

// DefaultBasket is queried when a symbol fetch names no ticker.
var DefaultBasket = []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA", "META", "NVDA", "IONQ", "LEU"}

// DefaultMulti is used by a multi-symbol fetch with no symbols.
var DefaultMulti = []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA"}

// Available lists the companies offered for selection.
var Available = []string{
	"AAPL", "MSFT", "GOOG", "AMZN", "TSLA", "META", "NVDA", "NFLX", "CRM",
	"VZ", "PFE", "PEP", "WMT", "CVX", "INTC", "MA", "HD", "MRK", "JNJ",
	"BAC", "FB", "COST", "TMO", "ABBV", "MCD", "ACN", "T", "PYPL", "PG",
	"XOM", "ABT", "AMGN", "UNH", "DIS", "CSCO", "KO", "ADBE", "V", "JPM",
	"IONQ", "LEU",
}

// Clean upper-cases s, drops non-letters and truncates to five characters.
func Clean(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// Valid reports whether s is 1-5 upper-case ASCII letters.
func Valid(s string) bool {
	if len(s) < 1 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// Split parses a comma or space separated list, cleaning each entry and
// dropping empties and duplicates.
func Split(s string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
		sym := Clean(f)
		if sym != "" && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	return out
}
