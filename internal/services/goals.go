package services

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// GoalProgress is a goal annotated with projection figures. The
// deadline-derived fields are nil when the goal has no deadline.
type GoalProgress struct {
	Goal            *models.FinancialGoal `json:"goal"`
	ProgressPercent decimal.Decimal       `json:"progress_percent"`
	Remaining       decimal.Decimal       `json:"remaining"`
	DaysRemaining   *int                  `json:"days_remaining,omitempty"`
	MonthlyRequired *decimal.Decimal      `json:"monthly_required,omitempty"`
}

// ProjectGoal computes progress and, when a deadline exists, the
// monthly saving required to reach the target by the deadline. A
// negative day count means the deadline has passed; a passed deadline
// or an already-met target yields a zero requirement.
func ProjectGoal(goal *models.FinancialGoal, today time.Time) GoalProgress {
	progress := GoalProgress{
		Goal:      goal,
		Remaining: goal.TargetAmount.Sub(goal.CurrentAmount),
	}
	if progress.Remaining.IsNegative() {
		progress.Remaining = decimal.Zero
	}
	if goal.TargetAmount.IsPositive() {
		progress.ProgressPercent = goal.CurrentAmount.
			Div(goal.TargetAmount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	if goal.Deadline == nil {
		return progress
	}

	today = midnightUTC(today)
	deadline := midnightUTC(*goal.Deadline)

	days := int(deadline.Sub(today).Hours() / 24)
	progress.DaysRemaining = &days

	required := decimal.Zero
	if progress.Remaining.IsPositive() && deadline.After(today) {
		months := monthsBetween(today, deadline)
		required = progress.Remaining.Div(decimal.NewFromInt(int64(months))).Round(2)
	}
	progress.MonthlyRequired = &required
	return progress
}

// monthsBetween counts the whole months from today to the deadline,
// rounding partial months up and never returning less than one.
func monthsBetween(today, deadline time.Time) int {
	months := (deadline.Year()-today.Year())*12 + int(deadline.Month()) - int(today.Month())
	if deadline.Day() > today.Day() {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GoalService manages financial goals and their projections.
type GoalService struct {
	goalRepo *repository.GoalRepository
}

// NewGoalService creates a new GoalService.
func NewGoalService(goalRepo *repository.GoalRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo}
}

// Create validates and stores a new goal.
func (s *GoalService) Create(goal *models.FinancialGoal) (*models.FinancialGoal, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	if goal.Status == "" {
		goal.Status = models.GoalStatusActive
	}
	id, err := s.goalRepo.Create(goal)
	if err != nil {
		return nil, apperrors.Unavailable("saving goal", err)
	}
	goal.ID = id
	return goal, nil
}

// Update validates and stores changes to an existing goal.
func (s *GoalService) Update(userID int64, goal *models.FinancialGoal) error {
	existing, err := s.get(userID, goal.ID)
	if err != nil {
		return err
	}
	goal.UserID = existing.UserID
	if err := validateGoal(goal); err != nil {
		return err
	}
	if err := s.goalRepo.Update(goal); err != nil {
		return apperrors.Unavailable("saving goal", err)
	}
	return nil
}

// UpdateProgress replaces the goal's saved amount. The amount is an
// absolute value, not an increment, and must not be negative.
func (s *GoalService) UpdateProgress(userID, goalID int64, amount decimal.Decimal) (*models.FinancialGoal, error) {
	if amount.IsNegative() {
		return nil, apperrors.ValidationField("current_amount", "saved amount cannot be negative")
	}
	goal, err := s.get(userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.goalRepo.UpdateCurrentAmount(goalID, amount); err != nil {
		return nil, apperrors.Unavailable("saving goal", err)
	}
	goal.CurrentAmount = amount
	return goal, nil
}

// Complete marks a goal as completed regardless of the saved amount.
func (s *GoalService) Complete(userID, goalID int64) error {
	if _, err := s.get(userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.UpdateStatus(goalID, models.GoalStatusCompleted); err != nil {
		return apperrors.Unavailable("saving goal", err)
	}
	return nil
}

// Cancel marks a goal as cancelled.
func (s *GoalService) Cancel(userID, goalID int64) error {
	if _, err := s.get(userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.UpdateStatus(goalID, models.GoalStatusCancelled); err != nil {
		return apperrors.Unavailable("saving goal", err)
	}
	return nil
}

// Delete removes a goal.
func (s *GoalService) Delete(userID, goalID int64) error {
	if _, err := s.get(userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.Delete(goalID); err != nil {
		return apperrors.Unavailable("deleting goal", err)
	}
	return nil
}

// Progress projects every goal of the user.
func (s *GoalService) Progress(userID int64) ([]GoalProgress, error) {
	goals, err := s.goalRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading goals", err)
	}

	today := time.Now().UTC()
	progresses := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		progresses = append(progresses, ProjectGoal(goal, today))
	}
	return progresses, nil
}

// Get returns one goal of the user.
func (s *GoalService) Get(userID, goalID int64) (*models.FinancialGoal, error) {
	return s.get(userID, goalID)
}

func (s *GoalService) get(userID, goalID int64) (*models.FinancialGoal, error) {
	goal, err := s.goalRepo.GetByID(goalID)
	if err != nil {
		return nil, apperrors.Unavailable("loading goal", err)
	}
	if goal == nil || goal.UserID != userID {
		return nil, apperrors.NotFound("goal")
	}
	return goal, nil
}

func validateGoal(goal *models.FinancialGoal) error {
	if goal.Name == "" {
		return apperrors.ValidationField("name", "goal name is required")
	}
	if goal.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ValidationField("target_amount", "target amount must be positive")
	}
	if goal.CurrentAmount.IsNegative() {
		return apperrors.ValidationField("current_amount", "saved amount cannot be negative")
	}
	if goal.Priority < 1 || goal.Priority > 5 {
		return apperrors.ValidationField("priority", "priority must be between 1 and 5")
	}
	return nil
}
