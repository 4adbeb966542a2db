package backend

import (
	"facturatie/internal/core"

	"github.com/shopspring/decimal"
)

// InvoiceLine is one regel of a sales invoice as the backend stores it.
type InvoiceLine struct {
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	VATPercentage decimal.Decimal `json:"btw_percentage"`
	IsTextLine    bool            `json:"is_text_line,omitempty"`
}

// LinesFromCore converts calculator lines to backend regels. Text lines carry
// only their description and the text flag.
func LinesFromCore(lines []core.InvoiceLine) []InvoiceLine {
	out := make([]InvoiceLine, 0, len(lines))
	for _, l := range lines {
		r := InvoiceLine{Description: l.Description, IsTextLine: l.IsTextLine}
		if !l.IsTextLine {
			r.Quantity, r.UnitPrice, r.VATPercentage = l.Quantity, l.UnitPrice, l.VATPercentage
		}
		out = append(out, r)
	}
	return out
}

// CoreLines converts backend regels to calculator lines.
func CoreLines(lines []InvoiceLine) []core.InvoiceLine {
	out := make([]core.InvoiceLine, 0, len(lines))
	for _, r := range lines {
		out = append(out, core.InvoiceLine{
			Description:   r.Description,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPrice,
			VATPercentage: r.VATPercentage,
			IsTextLine:    r.IsTextLine,
		})
	}
	return out
}

// CreateSalesInvoiceRequest is the body of POST /api/boekhouding/verkoopfacturen.
type CreateSalesInvoiceRequest struct {
	CustomerID  string        `json:"customer_id"`
	InvoiceDate string        `json:"invoice_date"`
	DueDate     string        `json:"due_date"`
	Currency    core.Currency `json:"currency"`
	Notes       string        `json:"notes,omitempty"`
	Lines       []InvoiceLine `json:"regels"`
}

// SalesInvoice is a verkoopfactuur as returned by the backend.
// Outstanding is invalid when the backend left openstaand_bedrag out.
type SalesInvoice struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"factuurnummer,omitempty"`
	CustomerID    string              `json:"customer_id"`
	InvoiceDate   string              `json:"invoice_date"`
	DueDate       string              `json:"due_date"`
	Currency      core.Currency       `json:"currency"`
	Status        string              `json:"status,omitempty"`
	Lines         []InvoiceLine       `json:"regels"`
	TotalInclVAT  decimal.Decimal     `json:"totaal_incl_btw"`
	Outstanding   decimal.NullDecimal `json:"openstaand_bedrag"`
}

// PaymentRequest is the body of POST .../verkoopfacturen/{id}/betaling.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"bedrag"`
	Date      string          `json:"datum"`
	Method    string          `json:"betaalmethode"`
	Reference string          `json:"referentie,omitempty"`
}
