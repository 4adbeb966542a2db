package app

import (
	"facturatie/internal/backend"
	"facturatie/internal/core"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"
)

// FormattedAmounts are display strings for a set of amounts.
type FormattedAmounts struct {
	Subtotal string `json:"subtotal"`
	VAT      string `json:"vat"`
	Total    string `json:"total"`
}

// LineResult is returned by CalculateLine.
type LineResult struct {
	Line      core.InvoiceLine  `json:"line"`
	Amounts   core.LineAmounts  `json:"amounts"`
	Formatted FormattedAmounts  `json:"formatted"`
	Issues    []core.InputIssue `json:"issues,omitempty"`
}

// InvoiceResult is returned by CalculateInvoice.
type InvoiceResult struct {
	Summary core.InvoiceSummary `json:"summary"`
	Issues  []core.InputIssue   `json:"issues,omitempty"`
}

// JournalResult is returned by PreviewJournal.
type JournalResult struct {
	Proposal   core.JournalProposal `json:"proposal"`
	RateSource rates.Source         `json:"rate_source,omitempty"`
	Issues     []core.InputIssue    `json:"issues,omitempty"`
}

// CashResult is returned by CountCash.
type CashResult struct {
	Totals     core.CashTotals `json:"totals"`
	RateSource rates.Source    `json:"rate_source"`
	Formatted  struct {
		SRD        string `json:"srd"`
		EUR        string `json:"eur"`
		USD        string `json:"usd"`
		TotalInSRD string `json:"total_in_srd"`
	} `json:"formatted"`
}

// ReminderStageResult is returned by ReminderStage.
type ReminderStageResult struct {
	Stage       core.ReminderStage `json:"stage"`
	Kind        string             `json:"kind,omitempty"`
	DaysOverdue int                `json:"days_overdue"`
}

// PlanResult is returned by PlanReminders.
type PlanResult struct {
	Today   string            `json:"today"`
	Actions []reminder.Action `json:"actions"`
}

// MarkSentResult is returned by MarkReminderSent.
type MarkSentResult struct {
	Recorded bool `json:"recorded"`
}

// SalesInvoiceResult wraps a backend invoice with its locally computed summary.
type SalesInvoiceResult struct {
	Invoice       *backend.SalesInvoice `json:"invoice"`
	Summary       core.InvoiceSummary   `json:"summary"`
	PaymentStatus core.PaymentStatus    `json:"payment_status"`
	Outstanding   string                `json:"outstanding_formatted"`
}
