package app

import (
	"encoding/json"

	"facturatie/internal/core"
)

// DateLayout is the calendar-date format used by every request and the backend.
const DateLayout = "2006-01-02"

// CalculateLineRequest is the input for CalculateLine.
type CalculateLineRequest struct {
	Currency string         `json:"currency,omitempty" jsonschema:"enum=SRD,enum=USD,enum=EUR"`
	Line     core.LineInput `json:"line"`
}

// CalculateInvoiceRequest is the input for CalculateInvoice and PreviewJournal.
// Lines is kept raw so a non-array payload can be told apart from bad numbers.
type CalculateInvoiceRequest struct {
	Currency     string          `json:"currency,omitempty" jsonschema:"enum=SRD,enum=USD,enum=EUR"`
	Lines        json.RawMessage `json:"lines" jsonschema_description:"array of invoice lines"`
	ExchangeRate core.Number     `json:"exchange_rate,omitempty" jsonschema_description:"rate to SRD; looked up when omitted"`
}

// CountCashRequest is the input for CountCash. Rates are looked up when omitted.
type CountCashRequest struct {
	Counts core.DenominationCount `json:"counts"`
	Rates  *core.ExchangeRateSet  `json:"rates,omitempty"`
}

// ReminderStageRequest is the input for ReminderStage. Dates are YYYY-MM-DD;
// Today defaults to the current date and Thresholds to the configured policy.
type ReminderStageRequest struct {
	DueDate    string                   `json:"due_date"`
	Today      string                   `json:"today,omitempty"`
	Thresholds *core.ReminderThresholds `json:"thresholds,omitempty"`
}

// ReminderInvoiceInput is one invoice offered to PlanReminders.
type ReminderInvoiceInput struct {
	InvoiceID   string      `json:"invoice_id"`
	CustomerID  string      `json:"customer_id,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	DueDate     string      `json:"due_date"`
	Outstanding core.Number `json:"outstanding"`
}

// PlanRemindersRequest is the input for PlanReminders.
type PlanRemindersRequest struct {
	Today    string                 `json:"today,omitempty"`
	Invoices []ReminderInvoiceInput `json:"invoices"`
}

// CreateSalesInvoiceRequest is the input for CreateSalesInvoice.
type CreateSalesInvoiceRequest struct {
	CustomerID  string          `json:"customer_id"`
	InvoiceDate string          `json:"invoice_date"`
	DueDate     string          `json:"due_date"`
	Currency    string          `json:"currency,omitempty" jsonschema:"enum=SRD,enum=USD,enum=EUR"`
	Notes       string          `json:"notes,omitempty"`
	Lines       json.RawMessage `json:"lines" jsonschema_description:"array of invoice lines"`
}

// AddPaymentRequest is the input for AddPayment.
type AddPaymentRequest struct {
	Amount    core.Number `json:"amount"`
	Date      string      `json:"date"`
	Method    string      `json:"method" jsonschema:"example=bank,example=kas"`
	Reference string      `json:"reference,omitempty"`
}

// SetPreferenceRequest is the body of a preference update.
type SetPreferenceRequest struct {
	Value any `json:"value"`
}
