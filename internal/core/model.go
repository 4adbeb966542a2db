package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLine is one row on a sales or purchase invoice.
// Text lines are annotations only and never contribute to any total.
type InvoiceLine struct {
	Description   string          `json:"description" jsonschema_description:"Free text shown on the invoice"`
	Quantity      decimal.Decimal `json:"quantity" jsonschema_description:"Quantity; negative values are allowed for credit lines"`
	UnitPrice     decimal.Decimal `json:"unit_price" jsonschema_description:"Price per unit excluding VAT"`
	VATPercentage decimal.Decimal `json:"vat_percentage" jsonschema_description:"BTW percentage, e.g. 0, 10 or 25"`
	IsTextLine    bool            `json:"is_text_line" jsonschema_description:"True for annotation-only lines"`
}

// LineAmounts holds the unrounded amounts derived from a single line.
type LineAmounts struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceTotals holds the document-level aggregate of all lines.
type InvoiceTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VATTotal decimal.Decimal `json:"vat_total"`
	Total    decimal.Decimal `json:"total"`
}

// VATBucket is the per-percentage breakdown required on tax reports.
type VATBucket struct {
	Percentage decimal.Decimal `json:"percentage"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
}

// Invoice is the in-memory document the calculators operate on.
type Invoice struct {
	Lines    []InvoiceLine `json:"lines"`
	Currency Currency      `json:"currency"`
	Date     time.Time     `json:"date"`
	DueDate  time.Time     `json:"due_date"`
}

// InvoiceSummary bundles totals, the VAT breakdown and their display strings.
type InvoiceSummary struct {
	Currency  Currency         `json:"currency"`
	Lines     []LineAmounts    `json:"lines"`
	Totals    InvoiceTotals    `json:"totals"`
	VAT       []VATBucket      `json:"vat_buckets"`
	Formatted FormattedSummary `json:"formatted"`
}

// FormattedSummary carries the rendered money strings of an InvoiceSummary.
type FormattedSummary struct {
	Subtotal string            `json:"subtotal"`
	VATTotal string            `json:"vat_total"`
	Total    string            `json:"total"`
	VAT      map[string]string `json:"vat_buckets"`
}
