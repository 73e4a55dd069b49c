package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWastageFactor(t *testing.T) {
	assert.True(t, WastageFactor(decimal.NewFromInt(10)).Equal(MustDecimal("1.1")))
	assert.True(t, WastageFactor(decimal.Zero).Equal(decimal.NewFromInt(1)))
}

func TestPercent_ZeroWhole(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.True(t, Percent(decimal.NewFromInt(95), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(95)))
}

func TestSafeDivAndSum(t *testing.T) {
	assert.True(t, SafeDiv(decimal.NewFromInt(1), decimal.Zero).IsZero())
	assert.True(t, Sum(MustDecimal("1.5"), MustDecimal("2.5")).Equal(decimal.NewFromInt(4)))
}
