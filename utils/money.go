// utils/money.go
package utils

import "math"

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal computes the total for a line priced at unitPrice per unit.
func LineTotal(quantity, unitPrice float64) float64 {
	return Round2(quantity * unitPrice)
}

// QuoteTotals derives the quote-level money fields from line totals. Each
// figure is rounded independently, not chained.
func QuoteTotals(lineTotals []float64, taxRate float64) (subtotal, tax, total float64) {
	var sum float64
	for _, t := range lineTotals {
		sum += t
	}
	subtotal = Round2(sum)
	tax = Round2(subtotal * taxRate)
	total = Round2(subtotal + tax)
	return
}
