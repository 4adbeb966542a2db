package core

import "github.com/shopspring/decimal"

// PaymentStatus summarizes how much of an invoice has been paid.
type PaymentStatus string

const (
	PaymentOpen     PaymentStatus = "open"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverpaid PaymentStatus = "overpaid"
)

// Outstanding returns total minus all payments (openstaand bedrag).
func Outstanding(total decimal.Decimal, payments ...decimal.Decimal) decimal.Decimal {
	out := total
	for _, p := range payments {
		out = out.Sub(p)
	}
	return out
}

// PaymentStatusFor classifies an invoice from its total and outstanding amount.
// Amounts are compared at cent precision.
func PaymentStatusFor(total, outstanding decimal.Decimal) PaymentStatus {
	t := total.Round(2)
	o := outstanding.Round(2)
	switch {
	case o.IsNegative():
		return PaymentOverpaid
	case o.IsZero():
		return PaymentPaid
	case o.GreaterThanOrEqual(t):
		return PaymentOpen
	}
	return PaymentPartial
}
