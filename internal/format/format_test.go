package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{math.NaN(), "$0"},
		{950, "$950"},
		{949.6, "$950"},
		{7890, "$7.89K"},
		{4_560_000, "$4.56M"},
		{1_230_000_000, "$1.23B"},
		{-2500, "-$2.50K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "0", Number(math.NaN()))
	assert.Equal(t, "999", Number(999))
	assert.Equal(t, "1,234,567", Number(1234567.4))
	assert.Equal(t, "-10,000", Number(-10000))
}
