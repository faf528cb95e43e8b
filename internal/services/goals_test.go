package services

import (
	"testing"
	"time"

	"wealthmanager/internal/models"
)

func goalWithDeadline(target, current string, deadline time.Time) *models.FinancialGoal {
	return &models.FinancialGoal{
		Name:          "house deposit",
		TargetAmount:  dec(target),
		CurrentAmount: dec(current),
		Deadline:      &deadline,
		Status:        models.GoalStatusActive,
	}
}

func TestProjectGoal_TwelveMonthsOut_SpreadsRemainingEvenly(t *testing.T) {
	today := date(2025, 3, 1)
	goal := goalWithDeadline("120000", "30000", date(2026, 3, 1))

	progress := ProjectGoal(goal, today)

	if !progress.ProgressPercent.Equal(dec("25")) {
		t.Errorf("ProgressPercent = %s, want 25", progress.ProgressPercent)
	}
	if progress.MonthlyRequired == nil {
		t.Fatal("MonthlyRequired = nil, want value for goal with deadline")
	}
	if !progress.MonthlyRequired.Equal(dec("7500")) {
		t.Errorf("MonthlyRequired = %s, want 7500", progress.MonthlyRequired)
	}
}

func TestProjectGoal_PartialMonth_RoundsMonthsUp(t *testing.T) {
	// 1.5 months out counts as 2 months of saving.
	today := date(2025, 3, 1)
	goal := goalWithDeadline("2000", "0", date(2025, 4, 16))

	progress := ProjectGoal(goal, today)

	if !progress.MonthlyRequired.Equal(dec("1000")) {
		t.Errorf("MonthlyRequired = %s, want 1000 (2 months)", progress.MonthlyRequired)
	}
}

func TestProjectGoal_DeadlineWithinOneMonth_RequiresEverythingAtOnce(t *testing.T) {
	today := date(2025, 3, 1)
	goal := goalWithDeadline("1000", "0", date(2025, 3, 15))

	progress := ProjectGoal(goal, today)

	if !progress.MonthlyRequired.Equal(dec("1000")) {
		t.Errorf("MonthlyRequired = %s, want 1000 (minimum one month)", progress.MonthlyRequired)
	}
	if progress.DaysRemaining == nil || *progress.DaysRemaining != 14 {
		t.Errorf("DaysRemaining = %v, want 14", progress.DaysRemaining)
	}
}

func TestProjectGoal_PassedDeadline_NegativeDaysZeroRequirement(t *testing.T) {
	// Ten days overdue: the caller needs the signed count to flag the
	// goal as overdue, but there is no monthly requirement left to plan.
	today := date(2025, 3, 11)
	goal := goalWithDeadline("1000", "200", date(2025, 3, 1))

	progress := ProjectGoal(goal, today)

	if progress.DaysRemaining == nil || *progress.DaysRemaining != -10 {
		t.Errorf("DaysRemaining = %v, want -10 for passed deadline", progress.DaysRemaining)
	}
	if !progress.MonthlyRequired.IsZero() {
		t.Errorf("MonthlyRequired = %s, want 0 for passed deadline", progress.MonthlyRequired)
	}
}

func TestProjectGoal_TargetAlreadyMet_ZeroRemaining(t *testing.T) {
	today := date(2025, 3, 1)
	goal := goalWithDeadline("1000", "1500", date(2026, 3, 1))

	progress := ProjectGoal(goal, today)

	if !progress.Remaining.IsZero() {
		t.Errorf("Remaining = %s, want 0 for overshot goal", progress.Remaining)
	}
	if !progress.MonthlyRequired.IsZero() {
		t.Errorf("MonthlyRequired = %s, want 0 for met target", progress.MonthlyRequired)
	}
	if !progress.ProgressPercent.Equal(dec("150")) {
		t.Errorf("ProgressPercent = %s, want 150 (not capped)", progress.ProgressPercent)
	}
}

func TestProjectGoal_NoDeadline_NilProjectionFields(t *testing.T) {
	goal := &models.FinancialGoal{
		Name:          "rainy day",
		TargetAmount:  dec("5000"),
		CurrentAmount: dec("1000"),
	}

	progress := ProjectGoal(goal, date(2025, 3, 1))

	if progress.DaysRemaining != nil || progress.MonthlyRequired != nil {
		t.Errorf("DaysRemaining = %v MonthlyRequired = %v, want both nil without deadline",
			progress.DaysRemaining, progress.MonthlyRequired)
	}
	if !progress.ProgressPercent.Equal(dec("20")) {
		t.Errorf("ProgressPercent = %s, want 20", progress.ProgressPercent)
	}
}

func TestMonthsBetween_SameDayOfMonth_ExactMonths(t *testing.T) {
	got := monthsBetween(date(2025, 3, 1), date(2026, 3, 1))
	if got != 12 {
		t.Errorf("monthsBetween() = %d, want 12", got)
	}
}

func TestMonthsBetween_LaterDayOfMonth_RoundsUp(t *testing.T) {
	got := monthsBetween(date(2025, 3, 1), date(2025, 4, 16))
	if got != 2 {
		t.Errorf("monthsBetween() = %d, want 2", got)
	}
}

func TestMonthsBetween_NeverLessThanOne(t *testing.T) {
	got := monthsBetween(date(2025, 3, 1), date(2025, 3, 2))
	if got != 1 {
		t.Errorf("monthsBetween() = %d, want 1", got)
	}
}
