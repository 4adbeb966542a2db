package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO currency code accepted on invoices and cash counts.
type Currency string

const (
	SRD Currency = "SRD"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// BaseCurrency is the currency cash totals and journal base amounts are expressed in.
const BaseCurrency = SRD

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{SRD, EUR, USD}
}

// ParseCurrency normalizes a currency code. Empty input defaults to the base currency.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	switch c {
	case "":
		return BaseCurrency, nil
	case SRD, USD, EUR:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
}

// Prefix returns the display prefix including the trailing space.
func (c Currency) Prefix() string {
	switch c {
	case SRD:
		return "SRD "
	case USD:
		return "$ "
	case EUR:
		return "€ "
	}
	return string(c) + " "
}

// FormatMoney renders amount using nl-NL grouping ("." thousands, "," decimals)
// with exactly two fraction digits. The sign precedes the currency prefix:
// -1234.5 SRD renders as "-SRD 1.234,50".
func FormatMoney(amount decimal.Decimal, cur Currency) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() && fixed != "0.00" {
		b.WriteByte('-')
	}
	b.WriteString(cur.Prefix())
	b.WriteString(groupThousands(intPart, '.'))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatNullMoney formats a nullable amount; a missing value renders as zero.
func FormatNullMoney(amount decimal.NullDecimal, cur Currency) string {
	if !amount.Valid {
		return FormatMoney(decimal.Zero, cur)
	}
	return FormatMoney(amount.Decimal, cur)
}

func groupThousands(digits string, sep byte) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
