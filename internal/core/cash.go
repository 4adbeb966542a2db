package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeCount       = errors.New("note count cannot be negative")
	ErrUnknownDenomination = errors.New("unknown denomination")
)

var denominations = map[Currency][]int{
	SRD: {5, 10, 20, 50, 100, 200, 500},
	EUR: {5, 10, 20, 50, 100, 200},
	USD: {1, 5, 10, 20, 50, 100},
}

// Denominations returns the banknote face values counted for cur, ascending.
func Denominations(cur Currency) []int {
	faces := denominations[cur]
	out := make([]int, len(faces))
	copy(out, faces)
	return out
}

func isDenomination(cur Currency, face int) bool {
	for _, f := range denominations[cur] {
		if f == face {
			return true
		}
	}
	return false
}

// DenominationCount maps currency → face value → number of notes counted.
type DenominationCount map[Currency]map[int]int

// NewDenominationCount returns a zero-filled count sheet for every supported currency.
func NewDenominationCount() DenominationCount {
	counts := make(DenominationCount, len(denominations))
	for cur, faces := range denominations {
		sheet := make(map[int]int, len(faces))
		for _, f := range faces {
			sheet[f] = 0
		}
		counts[cur] = sheet
	}
	return counts
}

// Validate checks that every currency, face value and count is acceptable.
func (c DenominationCount) Validate() error {
	for cur, sheet := range c {
		if _, ok := denominations[cur]; !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, cur)
		}
		for face, n := range sheet {
			if !isDenomination(cur, face) {
				return fmt.Errorf("%w: %s %d", ErrUnknownDenomination, cur, face)
			}
			if n < 0 {
				return fmt.Errorf("%w: %s %d has %d", ErrNegativeCount, cur, face, n)
			}
		}
	}
	return nil
}

// Total returns Σ face × count for one currency.
func (c DenominationCount) Total(cur Currency) decimal.Decimal {
	total := decimal.Zero
	for face, n := range c[cur] {
		total = total.Add(decimal.NewFromInt(int64(face) * int64(n)))
	}
	return total
}

// ExchangeRateSet converts foreign cash into SRD.
type ExchangeRateSet struct {
	EURToSRD decimal.Decimal `json:"eur_to_srd" yaml:"eur_to_srd"`
	USDToSRD decimal.Decimal `json:"usd_to_srd" yaml:"usd_to_srd"`
}

// Rate returns the SRD rate for cur; SRD itself is 1.
func (r ExchangeRateSet) Rate(cur Currency) (decimal.Decimal, error) {
	switch cur {
	case SRD:
		return decimal.NewFromInt(1), nil
	case EUR:
		return r.EURToSRD, nil
	case USD:
		return r.USDToSRD, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, cur)
}

// Valid reports whether both rates are strictly positive.
func (r ExchangeRateSet) Valid() bool {
	return r.EURToSRD.IsPositive() && r.USDToSRD.IsPositive()
}

// CashTotals is the result of a cash count ("dagstaat").
type CashTotals struct {
	SRDTotal   decimal.Decimal `json:"srd_total"`
	EURTotal   decimal.Decimal `json:"eur_total"`
	USDTotal   decimal.Decimal `json:"usd_total"`
	TotalInSRD decimal.Decimal `json:"total_in_srd"`
	Rates      ExchangeRateSet `json:"rates"`
}

// AggregateCash totals each currency and converts everything into SRD.
// No rounding is applied; format the result for display.
func AggregateCash(counts DenominationCount, rates ExchangeRateSet) (CashTotals, error) {
	if err := counts.Validate(); err != nil {
		return CashTotals{}, err
	}

	srd := counts.Total(SRD)
	eur := counts.Total(EUR)
	usd := counts.Total(USD)

	return CashTotals{
		SRDTotal:   srd,
		EURTotal:   eur,
		USDTotal:   usd,
		TotalInSRD: srd.Add(eur.Mul(rates.EURToSRD)).Add(usd.Mul(rates.USDToSRD)),
		Rates:      rates,
	}, nil
}
