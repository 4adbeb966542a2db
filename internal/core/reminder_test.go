package core_test

import (
	"testing"
	"time"

	"facturatie/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestEscalationStage(t *testing.T) {
	today := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	weekly := core.DefaultReminderThresholds()

	tests := []struct {
		name        string
		daysOverdue int
		thresholds  core.ReminderThresholds
		want        core.ReminderStage
	}{
		{"not yet due", -3, weekly, core.StageNotDue},
		{"due today", 0, weekly, core.StageNotDue},
		{"within grace period", 6, weekly, core.StageNotDue},
		{"first threshold", 7, weekly, core.StageFirstReminder},
		{"ten days overdue", 10, weekly, core.StageFirstReminder},
		{"just before second", 13, weekly, core.StageFirstReminder},
		{"second threshold", 14, weekly, core.StageSecondReminder},
		{"final threshold", 21, weekly, core.StageFinalDemand},
		{"far overdue", 400, weekly, core.StageFinalDemand},
		{"capped at two", 30, core.ReminderThresholds{DaysUntilFirst: 7, DaysBetweenEscalations: 7, MaxReminders: 2}, core.StageSecondReminder},
		{"max below range clamps to one", 30, core.ReminderThresholds{DaysUntilFirst: 7, DaysBetweenEscalations: 7, MaxReminders: 0}, core.StageFirstReminder},
		{"max above range clamps to three", 300, core.ReminderThresholds{DaysUntilFirst: 7, DaysBetweenEscalations: 7, MaxReminders: 9}, core.StageFinalDemand},
		{"no interval jumps to cap", 8, core.ReminderThresholds{DaysUntilFirst: 7, DaysBetweenEscalations: 0, MaxReminders: 3}, core.StageFinalDemand},
		{"zero grace period", 1, core.ReminderThresholds{DaysUntilFirst: 0, DaysBetweenEscalations: 10, MaxReminders: 3}, core.StageFirstReminder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := today.AddDate(0, 0, -tt.daysOverdue)
			assert.Equal(t, tt.want, core.EscalationStage(due, today, tt.thresholds))
		})
	}
}

func TestEscalationStage_MissingDueDate(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, core.StageNotDue, core.EscalationStage(time.Time{}, today, core.DefaultReminderThresholds()))
}

func TestDaysOverdue_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, 10, 5, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 10, 6, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, core.DaysOverdue(due, today))

	assert.Equal(t, 0, core.DaysOverdue(today, today.Add(5*time.Hour)))
	assert.Equal(t, -10, core.DaysOverdue(today.AddDate(0, 0, 10), today))
}

func TestDaysOverdue_FarPastDueDate(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC)

	days := core.DaysOverdue(due, today)
	assert.Greater(t, days, 106751)
	assert.True(t, today.Equal(due.AddDate(0, 0, days)))
	assert.Equal(t, -days, core.DaysOverdue(today, due))
	assert.Equal(t, core.StageFinalDemand, core.EscalationStage(due, today, core.DefaultReminderThresholds()))
}

func TestReminderStage_Kind(t *testing.T) {
	assert.Equal(t, "", core.StageNotDue.Kind())
	assert.Equal(t, "herinnering", core.StageFirstReminder.Kind())
	assert.Equal(t, "tweede_herinnering", core.StageSecondReminder.Kind())
	assert.Equal(t, "aanmaning", core.StageFinalDemand.Kind())
}
