package services

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// BudgetStatus is the spending position of one budget for one month.
type BudgetStatus struct {
	Budget       *models.Budget  `json:"budget"`
	CategoryName string          `json:"category_name"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	UsagePercent decimal.Decimal `json:"usage_percent"`
	IsOver       bool            `json:"is_over"`
	IsWarning    bool            `json:"is_warning"`
}

// EvaluateBudget computes the status of one budget against the expense
// transactions of a month. A budget with a category counts only that
// category's expenses; a budget without a category counts all expenses.
// Warning means at or past the alert threshold but not yet over.
func EvaluateBudget(budget *models.Budget, transactions []*models.CashflowTransaction) BudgetStatus {
	spent := decimal.Zero
	for _, tx := range transactions {
		if tx.Type != models.CashflowExpense {
			continue
		}
		if budget.CategoryID != nil {
			if tx.CategoryID == nil || *tx.CategoryID != *budget.CategoryID {
				continue
			}
		}
		spent = spent.Add(tx.Amount)
	}

	usage := decimal.Zero
	if budget.Amount.IsPositive() {
		usage = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100))
	}
	over := spent.GreaterThan(budget.Amount)
	threshold := decimal.NewFromFloat(budget.AlertThreshold).Mul(decimal.NewFromInt(100))

	return BudgetStatus{
		Budget:       budget,
		Spent:        spent,
		Remaining:    budget.Amount.Sub(spent),
		UsagePercent: usage.Round(2),
		IsOver:       over,
		IsWarning:    !over && usage.GreaterThanOrEqual(threshold),
	}
}

// BudgetService manages budgets and evaluates them against monthly
// spending.
type BudgetService struct {
	budgetRepo   *repository.BudgetRepository
	cashflowRepo *repository.CashflowTransactionRepository
	categoryRepo *repository.CashflowCategoryRepository
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(
	budgetRepo *repository.BudgetRepository,
	cashflowRepo *repository.CashflowTransactionRepository,
	categoryRepo *repository.CashflowCategoryRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		cashflowRepo: cashflowRepo,
		categoryRepo: categoryRepo,
	}
}

// Create validates and stores a new budget.
func (s *BudgetService) Create(budget *models.Budget) (*models.Budget, error) {
	if err := s.validate(budget); err != nil {
		return nil, err
	}
	budget.Period = models.BudgetPeriodMonthly
	id, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, apperrors.Unavailable("saving budget", err)
	}
	budget.ID = id
	return budget, nil
}

// Update validates and stores changes to an existing budget.
func (s *BudgetService) Update(userID int64, budget *models.Budget) error {
	existing, err := s.get(userID, budget.ID)
	if err != nil {
		return err
	}
	budget.UserID = existing.UserID
	budget.Period = models.BudgetPeriodMonthly
	if err := s.validate(budget); err != nil {
		return err
	}
	if err := s.budgetRepo.Update(budget); err != nil {
		return apperrors.Unavailable("saving budget", err)
	}
	return nil
}

// Delete removes a budget.
func (s *BudgetService) Delete(userID, budgetID int64) error {
	if _, err := s.get(userID, budgetID); err != nil {
		return err
	}
	if err := s.budgetRepo.Delete(budgetID); err != nil {
		return apperrors.Unavailable("deleting budget", err)
	}
	return nil
}

// Statuses evaluates every budget of the user against the given month.
func (s *BudgetService) Statuses(userID int64, year int, month time.Month) ([]BudgetStatus, error) {
	budgets, err := s.budgetRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading budgets", err)
	}

	transactions, err := s.cashflowRepo.GetByUserAndMonth(userID, year, month)
	if err != nil {
		return nil, apperrors.Unavailable("loading transactions", err)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		status := EvaluateBudget(budget, transactions)
		status.CategoryName = "all expenses"
		if budget.CategoryID != nil {
			category, err := s.categoryRepo.GetByID(*budget.CategoryID)
			if err != nil {
				return nil, apperrors.Unavailable("loading category", err)
			}
			if category != nil {
				status.CategoryName = category.Name
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *BudgetService) validate(budget *models.Budget) error {
	if budget.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ValidationField("amount", "budget amount must be positive")
	}
	if budget.AlertThreshold < 0.5 || budget.AlertThreshold > 0.95 {
		return apperrors.ValidationField("alert_threshold", "alert threshold must be between 0.5 and 0.95")
	}
	if budget.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*budget.CategoryID)
		if err != nil {
			return apperrors.Unavailable("loading category", err)
		}
		if category == nil {
			return apperrors.NotFound("category")
		}
		if category.Type != models.CashflowExpense {
			return apperrors.ValidationField("category_id", "budgets apply to expense categories only")
		}
	}
	return nil
}

func (s *BudgetService) get(userID, budgetID int64) (*models.Budget, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, apperrors.Unavailable("loading budget", err)
	}
	if budget == nil || budget.UserID != userID {
		return nil, apperrors.NotFound("budget")
	}
	return budget, nil
}
