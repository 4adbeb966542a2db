package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ComputeLine derives subtotal, VAT and total for a single line.
// Nothing is rounded here; rounding happens only when formatting.
func ComputeLine(line InvoiceLine) LineAmounts {
	if line.IsTextLine {
		return LineAmounts{Subtotal: decimal.Zero, VATAmount: decimal.Zero, Total: decimal.Zero}
	}
	subtotal := line.Quantity.Mul(line.UnitPrice)
	// Shift(-2) divides by 100 without precision loss.
	vat := subtotal.Mul(line.VATPercentage.Shift(-2))
	return LineAmounts{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}
}

// AggregateInvoice sums all line amounts into document totals.
func AggregateInvoice(lines []InvoiceLine) InvoiceTotals {
	subtotal := decimal.Zero
	vatTotal := decimal.Zero
	for _, line := range lines {
		amounts := ComputeLine(line)
		subtotal = subtotal.Add(amounts.Subtotal)
		vatTotal = vatTotal.Add(amounts.VATAmount)
	}
	return InvoiceTotals{
		Subtotal: subtotal,
		VATTotal: vatTotal,
		Total:    subtotal.Add(vatTotal),
	}
}

// AggregateVAT groups non-text lines by exact VAT percentage and sums base and
// VAT per group. Buckets are returned in ascending percentage order.
func AggregateVAT(lines []InvoiceLine) []VATBucket {
	index := make(map[string]int)
	buckets := make([]VATBucket, 0)

	for _, line := range lines {
		if line.IsTextLine {
			continue
		}
		amounts := ComputeLine(line)
		// String() drops trailing zeros, so 10 and 10.00 share a key.
		key := line.VATPercentage.String()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, VATBucket{
				Percentage: line.VATPercentage,
				BaseAmount: decimal.Zero,
				VATAmount:  decimal.Zero,
			})
		}
		buckets[i].BaseAmount = buckets[i].BaseAmount.Add(amounts.Subtotal)
		buckets[i].VATAmount = buckets[i].VATAmount.Add(amounts.VATAmount)
	}

	sort.Slice(buckets, func(a, b int) bool {
		return buckets[a].Percentage.LessThan(buckets[b].Percentage)
	})
	return buckets
}

// Summarize computes everything an invoice screen needs in one pass.
func Summarize(inv Invoice) InvoiceSummary {
	cur := inv.Currency
	if cur == "" {
		cur = BaseCurrency
	}

	lines := make([]LineAmounts, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = ComputeLine(line)
	}
	totals := AggregateInvoice(inv.Lines)
	buckets := AggregateVAT(inv.Lines)

	formattedVAT := make(map[string]string, len(buckets))
	for _, b := range buckets {
		formattedVAT[b.Percentage.String()] = FormatMoney(b.VATAmount, cur)
	}

	return InvoiceSummary{
		Currency: cur,
		Lines:    lines,
		Totals:   totals,
		VAT:      buckets,
		Formatted: FormattedSummary{
			Subtotal: FormatMoney(totals.Subtotal, cur),
			VATTotal: FormatMoney(totals.VATTotal, cur),
			Total:    FormatMoney(totals.Total, cur),
			VAT:      formattedVAT,
		},
	}
}
