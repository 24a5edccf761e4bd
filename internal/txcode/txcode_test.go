package txcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bighogz/insider-tracker/internal/models"
)

func TestBase(t *testing.T) {
	tests := []struct {
		code string
		want models.TradeType
	}{
		{"P", models.Buy},
		{"p", models.Buy},
		{" S ", models.Sell},
		{"A", models.AwardExercise},
		{"M", models.AwardExercise},
		{"C", models.ConversionExercise},
		{"X", models.ConversionExercise},
		{"G", models.Gift},
		{"F", models.Other},
		{"Z", models.Other},
		{"", models.Unknown},
		{"Q", models.Unknown},
		{"PS", models.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Base(tt.code))
		})
	}
}

func TestMapCorrection(t *testing.T) {
	tests := []struct {
		name       string
		code, flag string
		want       models.TradeType
	}{
		{"purchase disposed flips to sell", "P", "D", models.Sell},
		{"sale acquired flips to buy", "S", "A", models.Buy},
		{"gift disposed stays gift", "G", "D", models.Gift},
		{"award disposed stays award", "A", "D", models.AwardExercise},
		{"purchase acquired stays buy", "P", "A", models.Buy},
		{"sale disposed stays sell", "S", "D", models.Sell},
		{"lowercase flag", "p", "d", models.Sell},
		{"empty flag", "S", "", models.Sell},
		{"unknown code", "?", "A", models.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Map(tt.code, tt.flag))
		})
	}
}

func TestMapAlwaysInEnum(t *testing.T) {
	for c := 0; c < 128; c++ {
		for _, flag := range []string{"", "A", "D", "x"} {
			assert.True(t, Map(string(rune(c)), flag).Valid())
		}
	}
}
