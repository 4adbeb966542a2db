package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"facturatie/internal/app"
	"facturatie/internal/backend"
	"facturatie/internal/core"
	"facturatie/internal/prefs"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CreateSalesInvoice(ctx context.Context, token string, req backend.CreateSalesInvoiceRequest) (*backend.SalesInvoice, error) {
	args := m.Called(ctx, token, req)
	inv, _ := args.Get(0).(*backend.SalesInvoice)
	return inv, args.Error(1)
}

func (m *mockBackend) GetSalesInvoice(ctx context.Context, token, id string) (*backend.SalesInvoice, error) {
	args := m.Called(ctx, token, id)
	inv, _ := args.Get(0).(*backend.SalesInvoice)
	return inv, args.Error(1)
}

func (m *mockBackend) AddPayment(ctx context.Context, token, id string, req backend.PaymentRequest) (*backend.SalesInvoice, error) {
	args := m.Called(ctx, token, id, req)
	inv, _ := args.Get(0).(*backend.SalesInvoice)
	return inv, args.Error(1)
}

func (m *mockBackend) DownloadInvoicePDF(ctx context.Context, token, id string) ([]byte, error) {
	args := m.Called(ctx, token, id)
	pdf, _ := args.Get(0).([]byte)
	return pdf, args.Error(1)
}

func (m *mockBackend) CreateCustomer(ctx context.Context, token string, customer map[string]any) (map[string]any, error) {
	args := m.Called(ctx, token, customer)
	c, _ := args.Get(0).(map[string]any)
	return c, args.Error(1)
}

type staticRates struct{ set core.ExchangeRateSet }

func (s staticRates) GetExchangeRates(context.Context, string) (core.ExchangeRateSet, error) {
	return s.set, nil
}

var (
	fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	fallback = core.ExchangeRateSet{EURToSRD: dec("38.5"), USDToSRD: dec("35.5")}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T, be app.Backend, strict bool) app.ApplicationService {
	t.Helper()
	now := func() time.Time { return fixedNow }
	return app.NewAppService(app.Deps{
		Backend:     be,
		Rates:       rates.NewProvider(staticRates{set: core.ExchangeRateSet{EURToSRD: dec("39"), USDToSRD: dec("36")}}, nil, time.Hour, fallback),
		Reminders:   reminder.NewPlanner(core.DefaultReminderThresholds(), reminder.NewMemoryLog()),
		Prefs:       prefs.NewService(prefs.NewMemoryStore(now), now),
		StrictInput: strict,
		Now:         now,
	})
}

func TestCalculateInvoice_ScenarioB(t *testing.T) {
	svc := newService(t, nil, false)
	res, err := svc.CalculateInvoice(context.Background(), app.CalculateInvoiceRequest{
		Lines: json.RawMessage(`[
			{"description":"Consult","quantity":2,"unit_price":"100","vat_percentage":10},
			{"description":"Materiaal","quantity":"1","unit_price":"80","vat_percentage":"25"}
		]`),
	})
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, core.SRD, s.Currency)
	assert.True(t, s.Totals.VATTotal.Equal(dec("40")))
	assert.True(t, s.Totals.Total.Equal(dec("320")))
	require.Len(t, s.VAT, 2)
	assert.Equal(t, "SRD 320,00", s.Formatted.Total)
	assert.Empty(t, res.Issues)
}

func TestCalculateInvoice_LenientAndStrict(t *testing.T) {
	req := app.CalculateInvoiceRequest{
		Currency: "eur",
		Lines:    json.RawMessage(`[{"quantity":"twee","unit_price":10,"vat_percentage":10}]`),
	}

	res, err := newService(t, nil, false).CalculateInvoice(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "€ 0,00", res.Summary.Formatted.Total)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "quantity", res.Issues[0].Field)

	_, err = newService(t, nil, true).CalculateInvoice(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrInvalidNumber)
}

func TestCalculateInvoice_RejectsBadShapeAndCurrency(t *testing.T) {
	svc := newService(t, nil, false)

	_, err := svc.CalculateInvoice(context.Background(), app.CalculateInvoiceRequest{Lines: json.RawMessage(`{"quantity":1}`)})
	assert.ErrorIs(t, err, core.ErrInvalidShape)

	_, err = svc.CalculateInvoice(context.Background(), app.CalculateInvoiceRequest{Currency: "GBP", Lines: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, app.ErrValidation)
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)
}

func TestCalculateLine(t *testing.T) {
	var req app.CalculateLineRequest
	require.NoError(t, json.Unmarshal([]byte(`{"currency":"USD","line":{"quantity":2,"unit_price":100,"vat_percentage":10}}`), &req))

	res, err := newService(t, nil, false).CalculateLine(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Amounts.Total.Equal(dec("220")))
	assert.Equal(t, "$ 20,00", res.Formatted.VAT)
}

func TestPreviewJournal_LooksUpRate(t *testing.T) {
	svc := newService(t, nil, false)
	res, err := svc.PreviewJournal(context.Background(), "tok", app.CalculateInvoiceRequest{
		Currency: "USD",
		Lines:    json.RawMessage(`[{"quantity":1,"unit_price":100,"vat_percentage":10}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, rates.SourceBackend, res.RateSource)
	assert.True(t, res.Proposal.ExchangeRate.Equal(dec("36")))
	assert.True(t, res.Proposal.Lines[0].BaseAmount.Equal(dec("3960")))

	_, err = svc.PreviewJournal(context.Background(), "tok", app.CalculateInvoiceRequest{Lines: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, app.ErrValidation)
}

func TestPreviewJournal_ForeignCurrencyNeedsRate(t *testing.T) {
	svc := app.NewAppService(app.Deps{Now: func() time.Time { return fixedNow }})
	ctx := context.Background()
	lines := json.RawMessage(`[{"quantity":1,"unit_price":100,"vat_percentage":10}]`)

	_, err := svc.PreviewJournal(ctx, "tok", app.CalculateInvoiceRequest{Currency: "EUR", Lines: lines})
	assert.ErrorIs(t, err, app.ErrValidation)

	res, err := svc.PreviewJournal(ctx, "tok", app.CalculateInvoiceRequest{
		Currency:     "EUR",
		Lines:        lines,
		ExchangeRate: core.NewNumber(dec("38.5")),
	})
	require.NoError(t, err)
	assert.True(t, res.Proposal.Lines[0].BaseAmount.Equal(dec("4235")))

	res, err = svc.PreviewJournal(ctx, "tok", app.CalculateInvoiceRequest{Lines: lines})
	require.NoError(t, err)
	assert.True(t, res.Proposal.ExchangeRate.Equal(dec("1")))

	_, err = svc.ExchangeRates(ctx, "tok")
	assert.ErrorIs(t, err, app.ErrNotConfigured)
}

func TestCountCash(t *testing.T) {
	svc := newService(t, nil, false)
	counts := core.DenominationCount{core.SRD: {100: 2}, core.EUR: {50: 1}, core.USD: {20: 1}}

	res, err := svc.CountCash(context.Background(), "", app.CountCashRequest{Counts: counts})
	require.NoError(t, err)
	assert.Equal(t, rates.SourceFallback, res.RateSource)
	assert.True(t, res.Totals.TotalInSRD.Equal(dec("2835")))
	assert.Equal(t, "SRD 2.835,00", res.Formatted.TotalInSRD)

	own := core.ExchangeRateSet{EURToSRD: dec("40"), USDToSRD: dec("36")}
	res, err = svc.CountCash(context.Background(), "tok", app.CountCashRequest{Counts: counts, Rates: &own})
	require.NoError(t, err)
	assert.Equal(t, rates.SourceRequest, res.RateSource)
	assert.True(t, res.Totals.TotalInSRD.Equal(dec("2920")))

	_, err = svc.CountCash(context.Background(), "", app.CountCashRequest{Counts: core.DenominationCount{core.SRD: {3: 1}}})
	assert.ErrorIs(t, err, core.ErrUnknownDenomination)
}

func TestReminderStage(t *testing.T) {
	svc := newService(t, nil, false)

	res, err := svc.ReminderStage(context.Background(), app.ReminderStageRequest{DueDate: "2026-10-05"})
	require.NoError(t, err)
	assert.Equal(t, core.StageFirstReminder, res.Stage)
	assert.Equal(t, "herinnering", res.Kind)
	assert.Equal(t, 10, res.DaysOverdue)

	res, err = svc.ReminderStage(context.Background(), app.ReminderStageRequest{})
	require.NoError(t, err)
	assert.Equal(t, core.StageNotDue, res.Stage)

	_, err = svc.ReminderStage(context.Background(), app.ReminderStageRequest{DueDate: "05-10-2026"})
	assert.ErrorIs(t, err, app.ErrValidation)
}

func TestPlanAndMarkReminders(t *testing.T) {
	svc := newService(t, nil, false)
	ctx := context.Background()
	req := app.PlanRemindersRequest{
		Today: "2026-10-15",
		Invoices: []app.ReminderInvoiceInput{
			{InvoiceID: "vf-1", DueDate: "2026-10-01", Outstanding: core.NewNumber(dec("220"))},
			{InvoiceID: "vf-2", DueDate: "2026-10-14", Outstanding: core.NewNumber(dec("50"))},
		},
	}

	plan, err := svc.PlanReminders(ctx, req)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, core.StageSecondReminder, plan.Actions[0].Stage)

	marked, err := svc.MarkReminderSent(ctx, plan.Actions[0])
	require.NoError(t, err)
	assert.True(t, marked.Recorded)

	plan, err = svc.PlanReminders(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
}

func TestPreferences(t *testing.T) {
	svc := newService(t, nil, false)
	ctx := context.Background()
	scope := prefs.Scope{CompanyID: "co", UserID: "u1"}

	e, err := svc.SetPreference(ctx, scope, prefs.ExpiringBannerDismissed, true)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *e.ExpiresAt)

	e, err = svc.GetPreference(ctx, scope, prefs.ExpiringBannerDismissed)
	require.NoError(t, err)
	assert.Equal(t, true, e.Value)

	require.NoError(t, svc.DeletePreference(ctx, scope, prefs.ExpiringBannerDismissed))
	_, err = svc.GetPreference(ctx, scope, "nope")
	assert.ErrorIs(t, err, prefs.ErrUnknownKey)
}

func TestCreateSalesInvoice(t *testing.T) {
	be := &mockBackend{}
	svc := newService(t, be, false)
	ctx := context.Background()

	be.On("CreateSalesInvoice", ctx, "tok", mock.MatchedBy(func(req backend.CreateSalesInvoiceRequest) bool {
		return req.CustomerID == "c-1" && req.Currency == core.SRD && len(req.Lines) == 1 &&
			req.Lines[0].VATPercentage.Equal(dec("10"))
	})).Return(&backend.SalesInvoice{
		ID:           "vf-1",
		Lines:        []backend.InvoiceLine{{Quantity: dec("2"), UnitPrice: dec("100"), VATPercentage: dec("10")}},
		TotalInclVAT: dec("220"),
		Outstanding:  decimal.NewNullDecimal(dec("220")),
	}, nil).Once()

	res, err := svc.CreateSalesInvoice(ctx, "tok", app.CreateSalesInvoiceRequest{
		CustomerID:  "c-1",
		InvoiceDate: "2026-10-01",
		DueDate:     "2026-10-31",
		Lines:       json.RawMessage(`[{"description":"Consult","quantity":2,"unit_price":100,"vat_percentage":10}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, core.PaymentOpen, res.PaymentStatus)
	assert.Equal(t, core.SRD, res.Invoice.Currency)
	assert.Equal(t, "SRD 220,00", res.Outstanding)
	be.AssertExpectations(t)
}

func TestCreateSalesInvoice_WithoutOutstandingIsOpen(t *testing.T) {
	be := &mockBackend{}
	svc := newService(t, be, false)
	ctx := context.Background()

	be.On("CreateSalesInvoice", ctx, "tok", mock.Anything).Return(&backend.SalesInvoice{
		ID:           "vf-9",
		Lines:        []backend.InvoiceLine{{Quantity: dec("2"), UnitPrice: dec("100"), VATPercentage: dec("10")}},
		TotalInclVAT: dec("220"),
	}, nil).Once()
	be.On("GetSalesInvoice", ctx, "tok", "vf-9").Return(&backend.SalesInvoice{
		ID:    "vf-9",
		Lines: []backend.InvoiceLine{{Quantity: dec("1"), UnitPrice: dec("50"), VATPercentage: dec("10")}},
	}, nil).Once()

	res, err := svc.CreateSalesInvoice(ctx, "tok", app.CreateSalesInvoiceRequest{
		CustomerID:  "c-1",
		InvoiceDate: "2026-10-01",
		DueDate:     "2026-10-31",
		Lines:       json.RawMessage(`[{"quantity":2,"unit_price":100,"vat_percentage":10}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, core.PaymentOpen, res.PaymentStatus)
	assert.Equal(t, "SRD 220,00", res.Outstanding)

	res, err = svc.GetSalesInvoice(ctx, "tok", "vf-9")
	require.NoError(t, err)
	assert.Equal(t, core.PaymentOpen, res.PaymentStatus)
	assert.Equal(t, "SRD 55,00", res.Outstanding)
	be.AssertExpectations(t)
}

func TestCreateSalesInvoice_ValidatesBeforeForwarding(t *testing.T) {
	be := &mockBackend{}
	svc := newService(t, be, false)
	ctx := context.Background()
	valid := app.CreateSalesInvoiceRequest{
		CustomerID:  "c-1",
		InvoiceDate: "2026-10-01",
		DueDate:     "2026-10-31",
		Lines:       json.RawMessage(`[{"quantity":1,"unit_price":10}]`),
	}

	tests := []struct {
		name   string
		mutate func(*app.CreateSalesInvoiceRequest)
		err    error
	}{
		{"missing customer", func(r *app.CreateSalesInvoiceRequest) { r.CustomerID = "" }, app.ErrValidation},
		{"due before invoice date", func(r *app.CreateSalesInvoiceRequest) { r.DueDate = "2026-09-30" }, app.ErrValidation},
		{"bad date", func(r *app.CreateSalesInvoiceRequest) { r.InvoiceDate = "1 oktober" }, app.ErrValidation},
		{"no lines", func(r *app.CreateSalesInvoiceRequest) { r.Lines = json.RawMessage(`[]`) }, app.ErrValidation},
		{"lines not an array", func(r *app.CreateSalesInvoiceRequest) { r.Lines = json.RawMessage(`"x"`) }, core.ErrInvalidShape},
		{"coerced number", func(r *app.CreateSalesInvoiceRequest) {
			r.Lines = json.RawMessage(`[{"quantity":"veel","unit_price":10}]`)
		}, core.ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.CreateSalesInvoice(ctx, "tok", req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	be.AssertNotCalled(t, "CreateSalesInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSalesInvoiceAndPayment(t *testing.T) {
	be := &mockBackend{}
	svc := newService(t, be, false)
	ctx := context.Background()

	inv := &backend.SalesInvoice{
		ID:       "vf-1",
		Currency: core.USD,
		Lines: []backend.InvoiceLine{
			{Quantity: dec("2"), UnitPrice: dec("100"), VATPercentage: dec("10")},
		},
		TotalInclVAT: dec("220"),
		Outstanding:  decimal.NewNullDecimal(dec("120")),
	}
	be.On("GetSalesInvoice", ctx, "tok", "vf-1").Return(inv, nil)
	be.On("AddPayment", ctx, "tok", "vf-1", mock.MatchedBy(func(p backend.PaymentRequest) bool {
		return p.Amount.Equal(dec("120")) && p.Date == "2026-10-15" && p.Method == "bank"
	})).Return(&backend.SalesInvoice{ID: "vf-1", Currency: core.USD, TotalInclVAT: dec("220"), Outstanding: decimal.NewNullDecimal(decimal.Zero)}, nil)

	res, err := svc.GetSalesInvoice(ctx, "tok", "vf-1")
	require.NoError(t, err)
	assert.Equal(t, core.PaymentPartial, res.PaymentStatus)
	assert.Equal(t, "$ 120,00", res.Outstanding)
	assert.Equal(t, "$ 220,00", res.Summary.Formatted.Total)

	res, err = svc.AddPayment(ctx, "tok", "vf-1", app.AddPaymentRequest{Amount: core.NewNumber(dec("120")), Method: "bank"})
	require.NoError(t, err)
	assert.Equal(t, core.PaymentPaid, res.PaymentStatus)

	_, err = svc.AddPayment(ctx, "tok", "vf-1", app.AddPaymentRequest{Amount: core.NewNumber(dec("-5")), Method: "bank"})
	assert.ErrorIs(t, err, app.ErrValidation)

	be.AssertExpectations(t)
}

func TestCreateCustomer(t *testing.T) {
	be := &mockBackend{}
	svc := newService(t, be, false)
	ctx := context.Background()

	in := map[string]any{"name": "Bakkerij Sranan"}
	be.On("CreateCustomer", ctx, "tok", in).Return(map[string]any{"id": "c-1", "name": "Bakkerij Sranan"}, nil)

	out, err := svc.CreateCustomer(ctx, "tok", in)
	require.NoError(t, err)
	assert.Equal(t, "c-1", out["id"])

	_, err = svc.CreateCustomer(ctx, "tok", map[string]any{"city": "Paramaribo"})
	assert.ErrorIs(t, err, app.ErrValidation)
}
