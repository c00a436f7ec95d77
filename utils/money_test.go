package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		// 0.125 is exactly representable, so the half rounds away from zero.
		{0.125, 0.13},
		{-0.125, -0.13},
		{1.004, 1.0},
		{1.006, 1.01},
		{-1.004, -1.0},
		{-1.006, -1.01},
		{0, 0},
		{107.0, 107.0},
		{1070.004999, 1070.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Round2(tc.in), 1e-9, "Round2(%v)", tc.in)
	}
}

func TestLineTotal(t *testing.T) {
	assert.InDelta(t, 540.0, LineTotal(12, 45), 1e-9)
	assert.InDelta(t, 0.1, LineTotal(3, 0.0333333), 1e-9)
	assert.InDelta(t, 0.0, LineTotal(0, 99.99), 1e-9)
}

func TestQuoteTotals(t *testing.T) {
	// 12h labour at $45 + 4 lots of materials at $95 + one $150 callout.
	subtotal, tax, total := QuoteTotals([]float64{540, 380, 150}, 0.10)
	assert.InDelta(t, 1070.00, subtotal, 1e-9)
	assert.InDelta(t, 107.00, tax, 1e-9)
	assert.InDelta(t, 1177.00, total, 1e-9)
}

func TestQuoteTotalsEmpty(t *testing.T) {
	subtotal, tax, total := QuoteTotals(nil, 0.10)
	assert.Zero(t, subtotal)
	assert.Zero(t, tax)
	assert.Zero(t, total)
}

func TestQuoteTotalsRoundsEachStage(t *testing.T) {
	// Tax and total are rounded independently of the subtotal.
	subtotal, tax, total := QuoteTotals([]float64{33.33, 33.33, 33.33}, 0.10)
	assert.InDelta(t, 99.99, subtotal, 1e-9)
	assert.InDelta(t, 10.00, tax, 1e-9)
	assert.InDelta(t, 109.99, total, 1e-9)
}
