package reminder

import (
	"context"
	"sync"
	"time"

	"facturatie/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MemoryLog is a SentLog kept in process memory.
type MemoryLog struct {
	mu   sync.Mutex
	sent map[string]map[core.ReminderStage]time.Time
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{sent: make(map[string]map[core.ReminderStage]time.Time)}
}

func (l *MemoryLog) LastStage(_ context.Context, invoiceID string) (core.ReminderStage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	last := core.StageNotDue
	for stage := range l.sent[invoiceID] {
		if stage > last {
			last = stage
		}
	}
	return last, nil
}

func (l *MemoryLog) Record(_ context.Context, invoiceID string, stage core.ReminderStage, sentAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	stages, ok := l.sent[invoiceID]
	if !ok {
		stages = make(map[core.ReminderStage]time.Time)
		l.sent[invoiceID] = stages
	}
	if _, dup := stages[stage]; dup {
		return false, nil
	}
	stages[stage] = sentAt
	return true, nil
}

// PostgresLog is a SentLog backed by the reminder_log table.
type PostgresLog struct {
	pool *pgxpool.Pool
}

func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

func (l *PostgresLog) LastStage(ctx context.Context, invoiceID string) (core.ReminderStage, error) {
	var stage int
	err := l.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(stage), 0) FROM reminder_log WHERE invoice_id = $1",
		invoiceID,
	).Scan(&stage)
	if err != nil {
		return core.StageNotDue, err
	}
	return core.ReminderStage(stage), nil
}

func (l *PostgresLog) Record(ctx context.Context, invoiceID string, stage core.ReminderStage, sentAt time.Time) (bool, error) {
	tag, err := l.pool.Exec(ctx, `
		INSERT INTO reminder_log (invoice_id, stage, kind, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (invoice_id, stage) DO NOTHING`,
		invoiceID, int(stage), stage.Kind(), sentAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
