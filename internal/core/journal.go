package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PostingAccounts are the ledger accounts an invoice is booked against.
type PostingAccounts struct {
	Receivable string `json:"receivable" yaml:"receivable"`
	Revenue    string `json:"revenue" yaml:"revenue"`
	VATPayable string `json:"vat_payable" yaml:"vat_payable"`
}

// DefaultPostingAccounts follows a Dutch-style chart: debiteuren, omzet, af te dragen BTW.
func DefaultPostingAccounts() PostingAccounts {
	return PostingAccounts{Receivable: "1300", Revenue: "8000", VATPayable: "1600"}
}

// JournalLine is one debit or credit of a journal proposal.
// Amount is always positive and in the transaction currency.
type JournalLine struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description"`
	IsDebit     bool            `json:"is_debit"`
	Amount      decimal.Decimal `json:"amount"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
}

// JournalProposal is the double-entry booking an invoice would produce.
// Currency and ExchangeRate are header-level: every line shares them.
type JournalProposal struct {
	Currency     Currency        `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Summary      string          `json:"summary"`
	Lines        []JournalLine   `json:"lines"`
}

// BuildInvoiceJournal books an invoice: receivable for the total against revenue
// and VAT payable per VAT bucket. Negative amounts (credit notes) switch side.
// Zero amounts are left out.
func BuildInvoiceJournal(lines []InvoiceLine, cur Currency, rate decimal.Decimal, accounts PostingAccounts) (JournalProposal, error) {
	if cur == "" {
		cur = BaseCurrency
	}
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	p := JournalProposal{
		Currency:     cur,
		ExchangeRate: rate,
		Summary:      "Verkoopfactuur",
	}

	add := func(account, description string, debit bool, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		if amount.IsNegative() {
			debit = !debit
			amount = amount.Neg()
		}
		p.Lines = append(p.Lines, JournalLine{
			AccountCode: account,
			Description: description,
			IsDebit:     debit,
			Amount:      amount,
			BaseAmount:  amount.Mul(rate),
		})
	}

	totals := AggregateInvoice(lines)
	add(accounts.Receivable, "Debiteuren", true, totals.Total)
	for _, b := range AggregateVAT(lines) {
		pct := b.Percentage.String() + "%"
		add(accounts.Revenue, "Omzet BTW "+pct, false, b.BaseAmount)
		add(accounts.VATPayable, "Af te dragen BTW "+pct, false, b.VATAmount)
	}

	if err := p.Validate(); err != nil {
		return JournalProposal{}, err
	}
	return p, nil
}

// Validate enforces double-entry rules on the proposal.
func (p *JournalProposal) Validate() error {
	if p.Currency == "" {
		return errors.New("proposal must specify a transaction currency")
	}
	if !p.ExchangeRate.IsPositive() {
		return fmt.Errorf("exchange rate must be > 0, got %s", p.ExchangeRate)
	}
	if len(p.Lines) < 2 {
		return errors.New("transaction must have at least 2 lines")
	}

	totalDebitBase := decimal.Zero
	totalCreditBase := decimal.Zero

	for _, line := range p.Lines {
		if line.AccountCode == "" {
			return errors.New("every line must specify an account code")
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("amount must be > 0 for account %s", line.AccountCode)
		}

		baseAmt := line.Amount.Mul(p.ExchangeRate)
		if line.IsDebit {
			totalDebitBase = totalDebitBase.Add(baseAmt)
		} else {
			totalCreditBase = totalCreditBase.Add(baseAmt)
		}
	}

	if !totalDebitBase.Equal(totalCreditBase) {
		return fmt.Errorf("base currency imbalance: debits %s != credits %s", totalDebitBase, totalCreditBase)
	}
	return nil
}
