package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "AAPL", Clean(" aapl "))
	assert.Equal(t, "BRKB", Clean("BRK.B"))
	assert.Equal(t, "ABCDE", Clean("abcdefg"))
	assert.Equal(t, "", Clean("123"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("T"))
	assert.True(t, Valid("GOOGL"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("aapl"))
	assert.False(t, Valid("TOOLONG"))
	assert.False(t, Valid("BRK.B"))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, Split("aapl, msft goog,,AAPL"))
	assert.Empty(t, Split(" , "))
}

func TestListsAreValid(t *testing.T) {
	for _, list := range [][]string{DefaultBasket, DefaultMulti, Available} {
		for _, s := range list {
			assert.True(t, Valid(s), s)
		}
	}
}
