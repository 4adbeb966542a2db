package app

import (
	"context"

	"facturatie/internal/prefs"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations contain no
// display logic beyond the money strings the calculator itself produces.
//
// token is the caller's bearer token; it is forwarded to the backend and may be
// empty for purely local calculations.
type ApplicationService interface {
	// CalculateLine computes subtotal, VAT and total of a single line.
	CalculateLine(ctx context.Context, req CalculateLineRequest) (*LineResult, error)

	// CalculateInvoice computes totals and VAT buckets for a set of lines.
	CalculateInvoice(ctx context.Context, req CalculateInvoiceRequest) (*InvoiceResult, error)

	// PreviewJournal returns the balanced double-entry booking the invoice would produce.
	// Foreign-currency invoices without an explicit rate use the current exchange rate.
	PreviewJournal(ctx context.Context, token string, req CalculateInvoiceRequest) (*JournalResult, error)

	// CountCash totals a cash count sheet and converts it to SRD.
	CountCash(ctx context.Context, token string, req CountCashRequest) (*CashResult, error)

	// ReminderStage returns the escalation stage of one invoice.
	ReminderStage(ctx context.Context, req ReminderStageRequest) (*ReminderStageResult, error)

	// PlanReminders returns the reminders due for a batch of invoices.
	PlanReminders(ctx context.Context, req PlanRemindersRequest) (*PlanResult, error)

	// MarkReminderSent records a sent reminder. Recorded is false when it was already recorded.
	MarkReminderSent(ctx context.Context, action reminder.Action) (*MarkSentResult, error)

	// ExchangeRates returns the current EUR/USD to SRD quote. Backend and cache
	// failures fall back to the configured rates; it only fails when no provider is configured.
	ExchangeRates(ctx context.Context, token string) (*rates.Quote, error)

	GetPreference(ctx context.Context, scope prefs.Scope, key string) (*prefs.Entry, error)
	SetPreference(ctx context.Context, scope prefs.Scope, key string, value any) (*prefs.Entry, error)
	DeletePreference(ctx context.Context, scope prefs.Scope, key string) error

	// CreateSalesInvoice validates and totals the invoice locally, then creates it in the backend.
	CreateSalesInvoice(ctx context.Context, token string, req CreateSalesInvoiceRequest) (*SalesInvoiceResult, error)

	// GetSalesInvoice fetches an invoice and annotates it with a local summary and payment status.
	GetSalesInvoice(ctx context.Context, token, id string) (*SalesInvoiceResult, error)

	// AddPayment registers a payment against an invoice.
	AddPayment(ctx context.Context, token, id string, req AddPaymentRequest) (*SalesInvoiceResult, error)

	// DownloadInvoicePDF returns the backend-rendered PDF.
	DownloadInvoicePDF(ctx context.Context, token, id string) ([]byte, error)

	// CreateCustomer creates a customer from a record with English field names.
	CreateCustomer(ctx context.Context, token string, customer map[string]any) (map[string]any, error)
}
