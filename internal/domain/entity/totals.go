package entity

import (
	"math"

	"github.com/shopspring/decimal"
)

// Totals is the derived money view of an invoice. It is recomputed on every
// read and never persisted.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CalcTotals computes the derived totals of an invoice. Pure: same input,
// same output, no mutation of the invoice. Stored numbers are coerced at
// read time — a non-finite quantity, price, rate or discount counts as zero
// but the stored value is left untouched.
//
// The discount is applied to the subtotal before tax and can never drive the
// taxable base below zero.
func CalcTotals(inv Invoice) Totals {
	subtotal := decimal.Zero
	for _, it := range inv.Items {
		qty := num(it.Quantity)
		unit := num(it.UnitPrice)
		subtotal = subtotal.Add(qty.Mul(unit))
	}

	discount := num(inv.Discount)
	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	taxRate := num(inv.TaxRate)
	tax := discounted.Mul(taxRate).Div(decimal.NewFromInt(100))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    discounted.Add(tax),
	}
}

// num converts a stored float to a decimal, coercing NaN and ±Inf to zero.
func num(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
