package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// NextOccurrence computes the plan's next scheduled date strictly after
// the given date. Dates are calendar days at midnight UTC.
//
// Monthly plans land on DayOfMonth, clamped to the last day of shorter
// months. Weekly plans land on DayOfWeek. Biweekly plans keep a 14-day
// cadence anchored at the plan's stored NextDate.
func NextOccurrence(plan *models.InvestmentPlan, after time.Time) time.Time {
	after = midnightUTC(after)

	switch plan.Frequency {
	case models.FrequencyDaily:
		return after.AddDate(0, 0, 1)

	case models.FrequencyWeekly:
		return nextWeekday(after, time.Weekday(plan.DayOfWeek))

	case models.FrequencyBiweekly:
		candidate := nextWeekday(after, time.Weekday(plan.DayOfWeek))
		baseline := midnightUTC(plan.NextDate)
		if int(candidate.Sub(baseline).Hours()/24)%14 != 0 {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate

	case models.FrequencyMonthly:
		year, month := after.Year(), after.Month()+1
		day := plan.DayOfMonth
		if last := lastDayOfMonth(year, month); day > last {
			day = last
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	default:
		// Unknown frequencies never fire again.
		return after.AddDate(100, 0, 0)
	}
}

// nextWeekday returns the first date strictly after the given one that
// falls on the wanted weekday.
func nextWeekday(after time.Time, weekday time.Weekday) time.Time {
	next := after.AddDate(0, 0, 1)
	for next.Weekday() != weekday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// lastDayOfMonth returns the number of days in a month. Day zero of the
// following month normalizes to the last day of this one.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ShouldRunToday reports whether a plan is due: active and scheduled
// on or before today.
func ShouldRunToday(plan *models.InvestmentPlan, today time.Time) bool {
	return plan.IsActive && !midnightUTC(today).Before(midnightUTC(plan.NextDate))
}

// PlanService manages recurring investment plans and executes the ones
// that come due.
type PlanService struct {
	planRepo     *repository.PlanRepository
	fundRepo     *repository.FundRepository
	holdings     *HoldingService
	reminderRepo *repository.ReminderRepository
}

// NewPlanService creates a new PlanService.
func NewPlanService(
	planRepo *repository.PlanRepository,
	fundRepo *repository.FundRepository,
	holdings *HoldingService,
	reminderRepo *repository.ReminderRepository,
) *PlanService {
	return &PlanService{
		planRepo:     planRepo,
		fundRepo:     fundRepo,
		holdings:     holdings,
		reminderRepo: reminderRepo,
	}
}

// Create validates a plan, computes its first scheduled date and stores
// it.
func (s *PlanService) Create(plan *models.InvestmentPlan) (*models.InvestmentPlan, error) {
	if err := s.validate(plan); err != nil {
		return nil, err
	}
	plan.IsActive = true
	plan.NextDate = NextOccurrence(plan, time.Now().UTC())
	id, err := s.planRepo.Create(plan)
	if err != nil {
		return nil, apperrors.Unavailable("saving plan", err)
	}
	plan.ID = id
	return plan, nil
}

// Update validates and stores changes to a plan, rescheduling its next
// date from today when the cadence fields changed.
func (s *PlanService) Update(userID int64, plan *models.InvestmentPlan) error {
	existing, err := s.get(userID, plan.ID)
	if err != nil {
		return err
	}
	plan.UserID = existing.UserID
	if err := s.validate(plan); err != nil {
		return err
	}
	if plan.Frequency != existing.Frequency ||
		plan.DayOfMonth != existing.DayOfMonth ||
		plan.DayOfWeek != existing.DayOfWeek {
		plan.NextDate = NextOccurrence(plan, time.Now().UTC())
	} else {
		plan.NextDate = existing.NextDate
	}
	if err := s.planRepo.Update(plan); err != nil {
		return apperrors.Unavailable("saving plan", err)
	}
	return nil
}

// SetActive pauses or resumes a plan. Resuming reschedules the next
// date from today so a long pause does not produce a backlog of runs.
func (s *PlanService) SetActive(userID, planID int64, active bool) error {
	plan, err := s.get(userID, planID)
	if err != nil {
		return err
	}
	if active && !plan.IsActive {
		next := NextOccurrence(plan, time.Now().UTC())
		if err := s.planRepo.UpdateNextDate(planID, next); err != nil {
			return apperrors.Unavailable("saving plan", err)
		}
	}
	if err := s.planRepo.SetActive(planID, active); err != nil {
		return apperrors.Unavailable("saving plan", err)
	}
	return nil
}

// Delete removes a plan.
func (s *PlanService) Delete(userID, planID int64) error {
	if _, err := s.get(userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(planID); err != nil {
		return apperrors.Unavailable("deleting plan", err)
	}
	return nil
}

// List returns every plan of the user.
func (s *PlanService) List(userID int64) ([]*models.InvestmentPlan, error) {
	plans, err := s.planRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading plans", err)
	}
	return plans, nil
}

// ExecutionResult reports what happened to one due plan during a run.
type ExecutionResult struct {
	Plan     *models.InvestmentPlan `json:"plan"`
	Executed bool                   `json:"executed"`
	Error    string                 `json:"error,omitempty"`
	NextDate time.Time              `json:"next_date"`
}

// RunDuePlans executes every active plan scheduled on or before today.
// Each execution records a buy at the fund's latest NAV, advances the
// plan past today, and leaves a reminder. A plan of a fund with no NAV
// is skipped with an error but still advanced, so one stale fund
// cannot stall the schedule.
func (s *PlanService) RunDuePlans(userID int64, today time.Time) ([]ExecutionResult, error) {
	today = midnightUTC(today)
	due, err := s.planRepo.GetDue(userID, today)
	if err != nil {
		return nil, apperrors.Unavailable("loading plans", err)
	}

	results := make([]ExecutionResult, 0, len(due))
	for _, plan := range due {
		result := ExecutionResult{Plan: plan}

		if execErr := s.executePlan(userID, plan, today); execErr != nil {
			result.Error = execErr.Error()
		} else {
			result.Executed = true
		}

		// Advance past today even after repeated catch-up gaps.
		next := NextOccurrence(plan, today)
		for !next.After(today) {
			next = NextOccurrence(plan, next)
		}
		if err := s.planRepo.UpdateNextDate(plan.ID, next); err != nil {
			return nil, apperrors.Unavailable("saving plan", err)
		}
		result.NextDate = next
		results = append(results, result)
	}
	return results, nil
}

func (s *PlanService) executePlan(userID int64, plan *models.InvestmentPlan, today time.Time) error {
	fund, err := s.fundRepo.GetByID(plan.FundID)
	if err != nil {
		return apperrors.Unavailable("loading fund", err)
	}
	if fund == nil {
		return apperrors.NotFound("fund")
	}
	if fund.NAV == nil || !fund.NAV.IsPositive() {
		return apperrors.Validation("fund has no usable NAV for automatic purchase")
	}

	shares := plan.Amount.Div(*fund.NAV).Round(4)
	_, err = s.holdings.RecordTransaction(userID, &FundTransactionInput{
		FundID:          plan.FundID,
		AccountID:       plan.AccountID,
		Type:            models.FundTxBuy,
		Shares:          &shares,
		NAV:             fund.NAV,
		Amount:          plan.Amount,
		TransactionDate: today,
		Notes:           "automatic investment plan purchase",
	})
	if err != nil {
		return err
	}

	_, err = s.reminderRepo.Create(&models.Reminder{
		UserID:      userID,
		Title:       fmt.Sprintf("Invested %s in %s", plan.Amount.StringFixed(2), fund.Name),
		Description: fmt.Sprintf("Scheduled purchase of %s shares at NAV %s", shares, fund.NAV),
		RemindAt:    today,
		Type:        models.ReminderTypeInvestment,
		ReferenceID: &plan.ID,
	})
	if err != nil {
		return apperrors.Unavailable("saving reminder", err)
	}
	return nil
}

func (s *PlanService) get(userID, planID int64) (*models.InvestmentPlan, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, apperrors.Unavailable("loading plan", err)
	}
	if plan == nil || plan.UserID != userID {
		return nil, apperrors.NotFound("plan")
	}
	return plan, nil
}

func (s *PlanService) validate(plan *models.InvestmentPlan) error {
	if plan.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ValidationField("amount", "plan amount must be positive")
	}
	switch plan.Frequency {
	case models.FrequencyDaily:
	case models.FrequencyWeekly, models.FrequencyBiweekly:
		if plan.DayOfWeek < 0 || plan.DayOfWeek > 6 {
			return apperrors.ValidationField("day_of_week", "day of week must be between 0 (Sunday) and 6")
		}
	case models.FrequencyMonthly:
		if plan.DayOfMonth < 1 || plan.DayOfMonth > 31 {
			return apperrors.ValidationField("day_of_month", "day of month must be between 1 and 31")
		}
	default:
		return apperrors.ValidationField("frequency", fmt.Sprintf("unknown frequency %q", plan.Frequency))
	}

	fund, err := s.fundRepo.GetByID(plan.FundID)
	if err != nil {
		return apperrors.Unavailable("loading fund", err)
	}
	if fund == nil {
		return apperrors.NotFound("fund")
	}
	return nil
}
