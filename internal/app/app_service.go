package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facturatie/internal/backend"
	"facturatie/internal/core"
	"facturatie/internal/prefs"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"
)

var (
	// ErrValidation marks requests rejected before any computation or backend call.
	ErrValidation = errors.New("validation failed")
	// ErrNotConfigured is returned when the service was built without the collaborator an operation needs.
	ErrNotConfigured = errors.New("not configured")
)

// Backend is the part of the boekhouding API the service forwards to.
type Backend interface {
	CreateSalesInvoice(ctx context.Context, token string, req backend.CreateSalesInvoiceRequest) (*backend.SalesInvoice, error)
	GetSalesInvoice(ctx context.Context, token, id string) (*backend.SalesInvoice, error)
	AddPayment(ctx context.Context, token, id string, req backend.PaymentRequest) (*backend.SalesInvoice, error)
	DownloadInvoicePDF(ctx context.Context, token, id string) ([]byte, error)
	CreateCustomer(ctx context.Context, token string, customer map[string]any) (map[string]any, error)
}

// Deps are the collaborators of the application service.
type Deps struct {
	Backend   Backend
	Rates     *rates.Provider
	Reminders *reminder.Planner
	Prefs     *prefs.Service
	Accounts  core.PostingAccounts
	// StrictInput rejects requests whose numbers had to be coerced to zero.
	StrictInput bool
	Now         func() time.Time
}

type appService struct {
	backend   Backend
	rates     *rates.Provider
	reminders *reminder.Planner
	prefs     *prefs.Service
	accounts  core.PostingAccounts
	strict    bool
	now       func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(d Deps) ApplicationService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Accounts == (core.PostingAccounts{}) {
		d.Accounts = core.DefaultPostingAccounts()
	}
	return &appService{
		backend:   d.Backend,
		rates:     d.Rates,
		reminders: d.Reminders,
		prefs:     d.Prefs,
		accounts:  d.Accounts,
		strict:    d.StrictInput,
		now:       d.Now,
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// checkIssues fails in strict mode when any number was coerced.
func (s *appService) checkIssues(issues []core.InputIssue) error {
	if s.strict {
		return core.IssuesError(issues)
	}
	return nil
}

func parseCurrency(raw string) (core.Currency, error) {
	cur, err := core.ParseCurrency(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return cur, nil
}

func (s *appService) parseDate(raw, field string, required bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return time.Time{}, validationError("%s is required", field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, validationError("%s must be YYYY-MM-DD, got %q", field, raw)
	}
	return t, nil
}

func (s *appService) today(raw string) (time.Time, error) {
	t, err := s.parseDate(raw, "today", false)
	if err != nil || !t.IsZero() {
		return t, err
	}
	return s.now(), nil
}

func formatAmounts(a core.LineAmounts, cur core.Currency) FormattedAmounts {
	return FormattedAmounts{
		Subtotal: core.FormatMoney(a.Subtotal, cur),
		VAT:      core.FormatMoney(a.VATAmount, cur),
		Total:    core.FormatMoney(a.Total, cur),
	}
}

// CalculateLine computes one line.
func (s *appService) CalculateLine(ctx context.Context, req CalculateLineRequest) (*LineResult, error) {
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	line, issues := req.Line.Line(0)
	if err := s.checkIssues(issues); err != nil {
		return nil, err
	}
	amounts := core.ComputeLine(line)
	return &LineResult{
		Line:      line,
		Amounts:   amounts,
		Formatted: formatAmounts(amounts, cur),
		Issues:    issues,
	}, nil
}

func (s *appService) decodeInvoice(req CalculateInvoiceRequest) (core.Currency, []core.InvoiceLine, []core.InputIssue, error) {
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return "", nil, nil, err
	}
	lines, issues, err := core.DecodeLines(req.Lines)
	if err != nil {
		return "", nil, nil, err
	}
	if err := s.checkIssues(issues); err != nil {
		return "", nil, nil, err
	}
	return cur, lines, issues, nil
}

// CalculateInvoice computes invoice totals and VAT buckets.
func (s *appService) CalculateInvoice(ctx context.Context, req CalculateInvoiceRequest) (*InvoiceResult, error) {
	cur, lines, issues, err := s.decodeInvoice(req)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{
		Summary: core.Summarize(core.Invoice{Lines: lines, Currency: cur}),
		Issues:  issues,
	}, nil
}

// PreviewJournal books the invoice against the configured accounts.
func (s *appService) PreviewJournal(ctx context.Context, token string, req CalculateInvoiceRequest) (*JournalResult, error) {
	cur, lines, issues, err := s.decodeInvoice(req)
	if err != nil {
		return nil, err
	}
	if req.ExchangeRate.Invalid {
		return nil, fmt.Errorf("%w: exchange_rate: %q", core.ErrInvalidNumber, req.ExchangeRate.Raw)
	}

	res := &JournalResult{Issues: issues}
	rate := req.ExchangeRate.Value
	if rate.IsZero() && cur != core.BaseCurrency {
		if s.rates == nil {
			return nil, validationError("exchange_rate is required for %s invoices", cur)
		}
		q := s.rates.Current(ctx, token)
		if rate, err = q.Rates.Rate(cur); err != nil {
			return nil, err
		}
		if !rate.IsPositive() {
			return nil, validationError("no usable %s exchange rate available", cur)
		}
		res.RateSource = q.Source
	}

	p, err := core.BuildInvoiceJournal(lines, cur, rate, s.accounts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	res.Proposal = p
	return res, nil
}

// CountCash totals a cash count.
func (s *appService) CountCash(ctx context.Context, token string, req CountCashRequest) (*CashResult, error) {
	res := &CashResult{}
	var set core.ExchangeRateSet
	switch {
	case req.Rates != nil:
		if !req.Rates.Valid() {
			return nil, validationError("rates must be positive")
		}
		set = *req.Rates
		res.RateSource = rates.SourceRequest
	case s.rates != nil:
		q := s.rates.Current(ctx, token)
		set, res.RateSource = q.Rates, q.Source
	default:
		return nil, validationError("no exchange rates available")
	}

	totals, err := core.AggregateCash(req.Counts, set)
	if err != nil {
		return nil, err
	}
	res.Totals = totals
	res.Formatted.SRD = core.FormatMoney(totals.SRDTotal, core.SRD)
	res.Formatted.EUR = core.FormatMoney(totals.EURTotal, core.EUR)
	res.Formatted.USD = core.FormatMoney(totals.USDTotal, core.USD)
	res.Formatted.TotalInSRD = core.FormatMoney(totals.TotalInSRD, core.SRD)
	return res, nil
}

// ReminderStage classifies one invoice.
func (s *appService) ReminderStage(ctx context.Context, req ReminderStageRequest) (*ReminderStageResult, error) {
	due, err := s.parseDate(req.DueDate, "due_date", false)
	if err != nil {
		return nil, err
	}
	today, err := s.today(req.Today)
	if err != nil {
		return nil, err
	}

	th := core.DefaultReminderThresholds()
	if s.reminders != nil {
		th = s.reminders.Thresholds()
	}
	if req.Thresholds != nil {
		th = *req.Thresholds
	}

	stage := core.EscalationStage(due, today, th)
	res := &ReminderStageResult{Stage: stage, Kind: stage.Kind()}
	if !due.IsZero() {
		res.DaysOverdue = core.DaysOverdue(due, today)
	}
	return res, nil
}

// PlanReminders plans reminders for a batch of invoices.
func (s *appService) PlanReminders(ctx context.Context, req PlanRemindersRequest) (*PlanResult, error) {
	if s.reminders == nil {
		return nil, fmt.Errorf("%w: reminder planning", ErrNotConfigured)
	}
	today, err := s.today(req.Today)
	if err != nil {
		return nil, err
	}

	candidates := make([]reminder.Candidate, 0, len(req.Invoices))
	for i, in := range req.Invoices {
		if in.InvoiceID == "" {
			return nil, validationError("invoices[%d]: invoice_id is required", i)
		}
		if in.Outstanding.Invalid {
			return nil, fmt.Errorf("%w: invoices[%d].outstanding: %q", core.ErrInvalidNumber, i, in.Outstanding.Raw)
		}
		cur, err := parseCurrency(in.Currency)
		if err != nil {
			return nil, err
		}
		due, err := s.parseDate(in.DueDate, fmt.Sprintf("invoices[%d].due_date", i), false)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, reminder.Candidate{
			InvoiceID:   in.InvoiceID,
			CustomerID:  in.CustomerID,
			Currency:    cur,
			DueDate:     due,
			Outstanding: in.Outstanding.Value,
		})
	}

	actions, err := s.reminders.Plan(ctx, candidates, today)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Today: today.Format(DateLayout), Actions: actions}, nil
}

// MarkReminderSent records a sent reminder.
func (s *appService) MarkReminderSent(ctx context.Context, action reminder.Action) (*MarkSentResult, error) {
	if s.reminders == nil {
		return nil, fmt.Errorf("%w: reminder planning", ErrNotConfigured)
	}
	ok, err := s.reminders.MarkSent(ctx, action)
	if err != nil {
		return nil, err
	}
	return &MarkSentResult{Recorded: ok}, nil
}

// ExchangeRates returns the current quote.
func (s *appService) ExchangeRates(ctx context.Context, token string) (*rates.Quote, error) {
	if s.rates == nil {
		return nil, fmt.Errorf("%w: exchange rates", ErrNotConfigured)
	}
	q := s.rates.Current(ctx, token)
	return &q, nil
}

func (s *appService) GetPreference(ctx context.Context, scope prefs.Scope, key string) (*prefs.Entry, error) {
	e, err := s.prefs.Get(ctx, scope, key)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *appService) SetPreference(ctx context.Context, scope prefs.Scope, key string, value any) (*prefs.Entry, error) {
	e, err := s.prefs.Set(ctx, scope, key, value)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *appService) DeletePreference(ctx context.Context, scope prefs.Scope, key string) error {
	return s.prefs.Delete(ctx, scope, key)
}

func (s *appService) describe(inv *backend.SalesInvoice) *SalesInvoiceResult {
	cur := inv.Currency
	if cur == "" {
		cur = core.BaseCurrency
	}
	total := inv.TotalInclVAT
	summary := core.Summarize(core.Invoice{Lines: backend.CoreLines(inv.Lines), Currency: cur})
	if total.IsZero() && len(inv.Lines) > 0 {
		total = summary.Totals.Total
	}
	// Without openstaand_bedrag nothing is known to be paid yet.
	outstanding := total
	if inv.Outstanding.Valid {
		outstanding = inv.Outstanding.Decimal
	}
	return &SalesInvoiceResult{
		Invoice:       inv,
		Summary:       summary,
		PaymentStatus: core.PaymentStatusFor(total, outstanding),
		Outstanding:   core.FormatMoney(outstanding, cur),
	}
}

// CreateSalesInvoice validates locally and forwards the invoice to the backend.
// Coerced numbers are always rejected here, whatever the strict setting.
func (s *appService) CreateSalesInvoice(ctx context.Context, token string, req CreateSalesInvoiceRequest) (*SalesInvoiceResult, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, validationError("customer_id is required")
	}
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	invoiceDate, err := s.parseDate(req.InvoiceDate, "invoice_date", true)
	if err != nil {
		return nil, err
	}
	dueDate, err := s.parseDate(req.DueDate, "due_date", true)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(invoiceDate) {
		return nil, validationError("due_date %s is before invoice_date %s", req.DueDate, req.InvoiceDate)
	}

	lines, issues, err := core.DecodeLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if err := core.IssuesError(issues); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validationError("an invoice needs at least one line")
	}

	inv, err := s.backend.CreateSalesInvoice(ctx, token, backend.CreateSalesInvoiceRequest{
		CustomerID:  req.CustomerID,
		InvoiceDate: invoiceDate.Format(DateLayout),
		DueDate:     dueDate.Format(DateLayout),
		Currency:    cur,
		Notes:       req.Notes,
		Lines:       backend.LinesFromCore(lines),
	})
	if err != nil {
		return nil, err
	}
	if inv.Currency == "" {
		inv.Currency = cur
	}
	return s.describe(inv), nil
}

func (s *appService) GetSalesInvoice(ctx context.Context, token, id string) (*SalesInvoiceResult, error) {
	inv, err := s.backend.GetSalesInvoice(ctx, token, id)
	if err != nil {
		return nil, err
	}
	return s.describe(inv), nil
}

func (s *appService) AddPayment(ctx context.Context, token, id string, req AddPaymentRequest) (*SalesInvoiceResult, error) {
	if req.Amount.Invalid {
		return nil, fmt.Errorf("%w: amount: %q", core.ErrInvalidNumber, req.Amount.Raw)
	}
	if !req.Amount.Value.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}
	if strings.TrimSpace(req.Method) == "" {
		return nil, validationError("method is required")
	}
	date, err := s.today(req.Date)
	if err != nil {
		return nil, err
	}

	inv, err := s.backend.AddPayment(ctx, token, id, backend.PaymentRequest{
		Amount:    req.Amount.Value.Round(2),
		Date:      date.Format(DateLayout),
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return nil, err
	}
	return s.describe(inv), nil
}

func (s *appService) DownloadInvoicePDF(ctx context.Context, token, id string) ([]byte, error) {
	return s.backend.DownloadInvoicePDF(ctx, token, id)
}

func (s *appService) CreateCustomer(ctx context.Context, token string, customer map[string]any) (map[string]any, error) {
	name, _ := customer["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, validationError("name is required")
	}
	return s.backend.CreateCustomer(ctx, token, customer)
}
