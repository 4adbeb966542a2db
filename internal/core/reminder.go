package core

import "time"

// ReminderStage is the escalation level of an overdue invoice.
type ReminderStage int

const (
	StageNotDue ReminderStage = iota
	StageFirstReminder
	StageSecondReminder
	StageFinalDemand
)

// MaxStage is the highest stage the policy can reach.
const MaxStage = StageFinalDemand

// Kind returns the reminder record type the backend expects for the stage.
func (s ReminderStage) Kind() string {
	switch s {
	case StageFirstReminder:
		return "herinnering"
	case StageSecondReminder:
		return "tweede_herinnering"
	case StageFinalDemand:
		return "aanmaning"
	}
	return ""
}

// ReminderThresholds mirrors the company reminder settings
// (dagen_voor_eerste_herinnering, dagen_tussen_herinneringen, max_herinneringen).
type ReminderThresholds struct {
	DaysUntilFirst         int `json:"days_until_first" yaml:"days_until_first"`
	DaysBetweenEscalations int `json:"days_between_escalations" yaml:"days_between_escalations"`
	MaxReminders           int `json:"max_reminders" yaml:"max_reminders"`
}

// DefaultReminderThresholds returns one week to the first reminder and one week between escalations.
func DefaultReminderThresholds() ReminderThresholds {
	return ReminderThresholds{DaysUntilFirst: 7, DaysBetweenEscalations: 7, MaxReminders: 3}
}

func (t ReminderThresholds) maxStage() ReminderStage {
	switch {
	case t.MaxReminders < 1:
		return StageFirstReminder
	case t.MaxReminders > int(MaxStage):
		return MaxStage
	}
	return ReminderStage(t.MaxReminders)
}

const secondsPerDay = 24 * 60 * 60

// DaysOverdue returns the number of calendar days between due and today.
// Times are reduced to their date in their own location, so the hour of day never matters.
func DaysOverdue(due, today time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int((t.Unix() - d.Unix()) / secondsPerDay)
}

// EscalationStage decides which reminder an invoice should be at. A zero due
// date counts as missing data and never escalates.
func EscalationStage(due, today time.Time, th ReminderThresholds) ReminderStage {
	if due.IsZero() {
		return StageNotDue
	}
	days := DaysOverdue(due, today)
	if days <= 0 || days < th.DaysUntilFirst {
		return StageNotDue
	}

	ceiling := th.maxStage()
	if th.DaysBetweenEscalations <= 0 {
		return ceiling
	}
	stage := StageFirstReminder + ReminderStage((days-th.DaysUntilFirst)/th.DaysBetweenEscalations)
	if stage > ceiling {
		return ceiling
	}
	return stage
}
