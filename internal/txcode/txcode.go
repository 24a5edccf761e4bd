// Package txcode maps Form 4 transaction codes to trade categories.
package txcode

import (
	"strings"

	"github.com/bighogz/insider-tracker/internal/models"
)

var base = map[string]models.TradeType{
	"P": models.Buy,
	"S": models.Sell,
	"A": models.AwardExercise,
	"M": models.AwardExercise,
	"C": models.ConversionExercise,
	"X": models.ConversionExercise,
	"G": models.Gift,
	"D": models.Other,
	"F": models.Other,
	"H": models.Other,
	"I": models.Other,
	"J": models.Other,
	"L": models.Other,
	"O": models.Other,
	"U": models.Other,
	"W": models.Other,
	"Z": models.Other,
}

// Base maps a code without looking at the acquired/disposed flag.
func Base(code string) models.TradeType {
	if tt, ok := base[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return tt
	}
	return models.Unknown
}

// Map returns the trade category for code, using the acquired/disposed flag
// to correct the direction of Buy and Sell. Other categories never flip.
func Map(code, acquiredDisposed string) models.TradeType {
	tt := Base(code)
	switch strings.ToUpper(strings.TrimSpace(acquiredDisposed)) {
	case "D":
		if tt == models.Buy {
			return models.Sell
		}
	case "A":
		if tt == models.Sell {
			return models.Buy
		}
	}
	return tt
}
