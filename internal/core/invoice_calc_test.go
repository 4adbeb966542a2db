package core_test

import (
	"math/rand"
	"testing"

	"facturatie/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func line(qty, price, pct string) core.InvoiceLine {
	return core.InvoiceLine{Quantity: d(qty), UnitPrice: d(price), VATPercentage: d(pct)}
}

func TestComputeLine_SingleLine(t *testing.T) {
	got := core.ComputeLine(line("2", "100", "10"))

	assertDecimal(t, "200", got.Subtotal)
	assertDecimal(t, "20", got.VATAmount)
	assertDecimal(t, "220", got.Total)
}

func TestComputeLine_TextLineIsNeutral(t *testing.T) {
	l := line("5", "99.99", "25")
	l.IsTextLine = true
	l.Description = "Levering week 42"

	got := core.ComputeLine(l)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.VATAmount.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestComputeLine_CreditLinePropagatesSign(t *testing.T) {
	got := core.ComputeLine(line("-1", "50", "10"))

	assertDecimal(t, "-50", got.Subtotal)
	assertDecimal(t, "-5", got.VATAmount)
	assertDecimal(t, "-55", got.Total)
}

func TestComputeLine_NoIntermediateRounding(t *testing.T) {
	got := core.ComputeLine(line("3", "0.333", "10"))

	assertDecimal(t, "0.999", got.Subtotal)
	assertDecimal(t, "0.0999", got.VATAmount)
	assertDecimal(t, "1.0989", got.Total)
}

func TestAggregateInvoice_Empty(t *testing.T) {
	got := core.AggregateInvoice(nil)

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.VATTotal.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestAggregateInvoice_TwoRates(t *testing.T) {
	lines := []core.InvoiceLine{
		line("2", "100", "10"),
		line("1", "80", "25"),
	}

	got := core.AggregateInvoice(lines)
	assertDecimal(t, "280", got.Subtotal)
	assertDecimal(t, "40", got.VATTotal)
	assertDecimal(t, "320", got.Total)

	buckets := core.AggregateVAT(lines)
	require.Len(t, buckets, 2)
	assertDecimal(t, "10", buckets[0].Percentage)
	assertDecimal(t, "200", buckets[0].BaseAmount)
	assertDecimal(t, "20", buckets[0].VATAmount)
	assertDecimal(t, "25", buckets[1].Percentage)
	assertDecimal(t, "80", buckets[1].BaseAmount)
	assertDecimal(t, "20", buckets[1].VATAmount)
}

func TestAggregateVAT_OrderingAndGrouping(t *testing.T) {
	text := line("1", "1000", "10")
	text.IsTextLine = true

	lines := []core.InvoiceLine{
		line("1", "10", "25"),
		line("1", "10", "0"),
		line("2", "10", "10.0"),
		text,
		line("1", "5", "10"),
	}

	buckets := core.AggregateVAT(lines)
	require.Len(t, buckets, 3)
	assertDecimal(t, "0", buckets[0].Percentage)
	assertDecimal(t, "10", buckets[1].Percentage)
	assertDecimal(t, "25", buckets[2].Percentage)

	assertDecimal(t, "25", buckets[1].BaseAmount)
	assertDecimal(t, "2.5", buckets[1].VATAmount)
}

func TestAggregateVAT_EmptyInput(t *testing.T) {
	buckets := core.AggregateVAT([]core.InvoiceLine{})
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestInvariants_RandomInvoices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rates := []string{"0", "10", "25", "8.5"}
	tolerance := d("0.000000001")

	for i := 0; i < 200; i++ {
		n := rng.Intn(12)
		lines := make([]core.InvoiceLine, n)
		for j := range lines {
			lines[j] = core.InvoiceLine{
				Quantity:      decimal.NewFromInt(int64(rng.Intn(21) - 5)),
				UnitPrice:     decimal.New(int64(rng.Intn(1000000)), -3),
				VATPercentage: d(rates[rng.Intn(len(rates))]),
				IsTextLine:    rng.Intn(6) == 0,
			}
		}

		totals := core.AggregateInvoice(lines)

		lineSum := decimal.Zero
		for _, l := range lines {
			amounts := core.ComputeLine(l)
			lineSum = lineSum.Add(amounts.Total)
			if l.IsTextLine {
				require.True(t, amounts.Total.IsZero())
			}
		}
		require.True(t, totals.Total.Sub(lineSum).Abs().LessThanOrEqual(tolerance), "total consistency, case %d", i)
		require.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.VATTotal)), "total = subtotal + vat, case %d", i)

		bucketVAT := decimal.Zero
		for _, b := range core.AggregateVAT(lines) {
			bucketVAT = bucketVAT.Add(b.VATAmount)
		}
		require.True(t, bucketVAT.Sub(totals.VATTotal).Abs().LessThanOrEqual(tolerance), "bucket conservation, case %d", i)

		again := core.AggregateInvoice(lines)
		require.True(t, again.Total.Equal(totals.Total), "idempotence, case %d", i)
	}
}

func TestSummarize_FormatsInInvoiceCurrency(t *testing.T) {
	inv := core.Invoice{
		Currency: core.EUR,
		Lines: []core.InvoiceLine{
			line("10", "123.45", "10"),
		},
	}

	got := core.Summarize(inv)
	assert.Equal(t, core.EUR, got.Currency)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "€ 1.234,50", got.Formatted.Subtotal)
	assert.Equal(t, "€ 123,45", got.Formatted.VATTotal)
	assert.Equal(t, "€ 1.357,95", got.Formatted.Total)
	assert.Equal(t, "€ 123,45", got.Formatted.VAT["10"])
}

func TestSummarize_DefaultsToSRD(t *testing.T) {
	got := core.Summarize(core.Invoice{})
	assert.Equal(t, core.SRD, got.Currency)
	assert.Equal(t, "SRD 0,00", got.Formatted.Total)
	assert.Empty(t, got.VAT)
}
