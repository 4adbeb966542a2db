// Package reminder decides which overdue invoices need a payment reminder and
// remembers which reminder stages were already sent.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturatie/internal/core"
	"facturatie/internal/logger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStage     = errors.New("reminder stage must be between 1 and 3")
	ErrMissingInvoiceID = errors.New("invoice id is required")
)

// Candidate is an invoice that may need a reminder.
type Candidate struct {
	InvoiceID   string          `json:"invoice_id"`
	CustomerID  string          `json:"customer_id,omitempty"`
	Currency    core.Currency   `json:"currency"`
	DueDate     time.Time       `json:"due_date"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Action is a reminder that should go out.
type Action struct {
	InvoiceID   string             `json:"invoice_id"`
	CustomerID  string             `json:"customer_id,omitempty"`
	Stage       core.ReminderStage `json:"stage"`
	Kind        string             `json:"kind"`
	DaysOverdue int                `json:"days_overdue"`
	Outstanding string             `json:"outstanding"`
}

// SentLog records sent reminder stages per invoice.
type SentLog interface {
	// LastStage returns the highest stage recorded, or StageNotDue.
	LastStage(ctx context.Context, invoiceID string) (core.ReminderStage, error)
	// Record stores a sent stage. It reports false when the stage was already recorded.
	Record(ctx context.Context, invoiceID string, stage core.ReminderStage, sentAt time.Time) (bool, error)
}

// Planner applies the escalation policy to a batch of invoices.
type Planner struct {
	thresholds core.ReminderThresholds
	log        SentLog
	now        func() time.Time
	logger     zerolog.Logger
}

func NewPlanner(thresholds core.ReminderThresholds, log SentLog) *Planner {
	return &Planner{
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
		logger:     logger.WithComponent("reminder"),
	}
}

// Thresholds returns the policy the planner applies.
func (p *Planner) Thresholds() core.ReminderThresholds {
	return p.thresholds
}

// Plan returns one action per unpaid candidate whose stage is above the last
// recorded one. Skipped stages are not back-filled: only the current stage is emitted.
func (p *Planner) Plan(ctx context.Context, candidates []Candidate, today time.Time) ([]Action, error) {
	actions := []Action{}
	for _, c := range candidates {
		if !c.Outstanding.IsPositive() {
			continue
		}
		stage := core.EscalationStage(c.DueDate, today, p.thresholds)
		if stage == core.StageNotDue {
			continue
		}
		last, err := p.log.LastStage(ctx, c.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("last reminder stage for %s: %w", c.InvoiceID, err)
		}
		if stage <= last {
			continue
		}
		actions = append(actions, Action{
			InvoiceID:   c.InvoiceID,
			CustomerID:  c.CustomerID,
			Stage:       stage,
			Kind:        stage.Kind(),
			DaysOverdue: core.DaysOverdue(c.DueDate, today),
			Outstanding: core.FormatMoney(c.Outstanding, c.Currency),
		})
	}
	p.logger.Debug().Int("candidates", len(candidates)).Int("actions", len(actions)).Msg("reminders planned")
	return actions, nil
}

// MarkSent records that the action's reminder went out.
func (p *Planner) MarkSent(ctx context.Context, a Action) (bool, error) {
	if a.InvoiceID == "" {
		return false, ErrMissingInvoiceID
	}
	if a.Stage < core.StageFirstReminder || a.Stage > core.MaxStage {
		return false, fmt.Errorf("%w, got %d", ErrInvalidStage, a.Stage)
	}
	recorded, err := p.log.Record(ctx, a.InvoiceID, a.Stage, p.now().UTC())
	if err != nil {
		return false, fmt.Errorf("record reminder for %s: %w", a.InvoiceID, err)
	}
	if recorded {
		p.logger.Info().Str("invoice_id", a.InvoiceID).Str("kind", a.Stage.Kind()).Msg("reminder recorded")
	}
	return recorded, nil
}
