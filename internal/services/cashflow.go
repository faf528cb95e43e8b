package services

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// MonthlySummary aggregates one month of cashflow by category name.
// Transfers move money between accounts and are excluded.
type MonthlySummary struct {
	Year         int                        `json:"year"`
	Month        int                        `json:"month"`
	TotalIncome  decimal.Decimal            `json:"total_income"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
	Net          decimal.Decimal            `json:"net"`
	ByIncome     map[string]decimal.Decimal `json:"by_income"`
	ByExpense    map[string]decimal.Decimal `json:"by_expense"`
}

// TrendPoint is one month in a cashflow trend series.
type TrendPoint struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CashflowService manages income/expense transactions, categories and
// their monthly aggregations.
type CashflowService struct {
	txRepo       *repository.CashflowTransactionRepository
	categoryRepo *repository.CashflowCategoryRepository
	accountRepo  *repository.AccountRepository
}

// NewCashflowService creates a new CashflowService.
func NewCashflowService(
	txRepo *repository.CashflowTransactionRepository,
	categoryRepo *repository.CashflowCategoryRepository,
	accountRepo *repository.AccountRepository,
) *CashflowService {
	return &CashflowService{
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		accountRepo:  accountRepo,
	}
}

// Record validates and stores a new cashflow transaction.
func (s *CashflowService) Record(tx *models.CashflowTransaction) (*models.CashflowTransaction, error) {
	if err := s.validate(tx); err != nil {
		return nil, err
	}
	id, err := s.txRepo.Create(tx)
	if err != nil {
		return nil, apperrors.Unavailable("saving transaction", err)
	}
	tx.ID = id
	return tx, nil
}

// Update validates and stores changes to an existing transaction.
func (s *CashflowService) Update(userID int64, tx *models.CashflowTransaction) error {
	existing, err := s.get(userID, tx.ID)
	if err != nil {
		return err
	}
	tx.UserID = existing.UserID
	if err := s.validate(tx); err != nil {
		return err
	}
	if err := s.txRepo.Update(tx); err != nil {
		return apperrors.Unavailable("saving transaction", err)
	}
	return nil
}

// Delete removes a transaction.
func (s *CashflowService) Delete(userID, txID int64) error {
	if _, err := s.get(userID, txID); err != nil {
		return err
	}
	if err := s.txRepo.Delete(txID); err != nil {
		return apperrors.Unavailable("deleting transaction", err)
	}
	return nil
}

// List returns a page of the user's transactions plus the total count.
func (s *CashflowService) List(userID int64, filters repository.CashflowFilters, p repository.Pagination) (*repository.PaginatedResult[*models.CashflowTransaction], error) {
	transactions, err := s.txRepo.GetByUserID(userID, filters, p)
	if err != nil {
		return nil, apperrors.Unavailable("loading transactions", err)
	}
	total, err := s.txRepo.CountByUserID(userID, filters)
	if err != nil {
		return nil, apperrors.Unavailable("counting transactions", err)
	}
	result := repository.NewPaginatedResult(transactions, total, p)
	return &result, nil
}

// Summary aggregates one month's income and expenses by category name.
// Uncategorized transactions land in an "uncategorized" bucket.
func (s *CashflowService) Summary(userID int64, year int, month time.Month) (*MonthlySummary, error) {
	transactions, err := s.txRepo.GetByUserAndMonth(userID, year, month)
	if err != nil {
		return nil, apperrors.Unavailable("loading transactions", err)
	}

	names, err := s.categoryNames(userID)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummary{
		Year:      year,
		Month:     int(month),
		ByIncome:  make(map[string]decimal.Decimal),
		ByExpense: make(map[string]decimal.Decimal),
	}
	for _, tx := range transactions {
		name := "uncategorized"
		if tx.CategoryID != nil {
			if n, ok := names[*tx.CategoryID]; ok {
				name = n
			}
		}
		switch tx.Type {
		case models.CashflowIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			summary.ByIncome[name] = summary.ByIncome[name].Add(tx.Amount)
		case models.CashflowExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
			summary.ByExpense[name] = summary.ByExpense[name].Add(tx.Amount)
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

// Trend returns monthly income/expense totals for the last N months,
// oldest first, ending with the current month.
func (s *CashflowService) Trend(userID int64, months int) ([]TrendPoint, error) {
	if months <= 0 {
		months = 6
	}

	now := time.Now().UTC()
	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		at := now.AddDate(0, -i, -(now.Day() - 1))
		transactions, err := s.txRepo.GetByUserAndMonth(userID, at.Year(), at.Month())
		if err != nil {
			return nil, apperrors.Unavailable("loading transactions", err)
		}

		point := TrendPoint{Year: at.Year(), Month: int(at.Month())}
		for _, tx := range transactions {
			switch tx.Type {
			case models.CashflowIncome:
				point.Income = point.Income.Add(tx.Amount)
			case models.CashflowExpense:
				point.Expense = point.Expense.Add(tx.Amount)
			}
		}
		point.Net = point.Income.Sub(point.Expense)
		points = append(points, point)
	}
	return points, nil
}

// CreateCategory validates and stores a user-owned category.
func (s *CashflowService) CreateCategory(category *models.CashflowCategory) (*models.CashflowCategory, error) {
	if category.Name == "" {
		return nil, apperrors.ValidationField("name", "category name is required")
	}
	if category.Type != models.CashflowIncome && category.Type != models.CashflowExpense {
		return nil, apperrors.ValidationField("type", "category type must be income or expense")
	}
	if category.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(*category.ParentID)
		if err != nil {
			return nil, apperrors.Unavailable("loading category", err)
		}
		if parent == nil {
			return nil, apperrors.NotFound("parent category")
		}
		if parent.ParentID != nil {
			return nil, apperrors.ValidationField("parent_id", "categories nest at most one level deep")
		}
		if parent.Type != category.Type {
			return nil, apperrors.ValidationField("parent_id", "child category type must match its parent")
		}
	}

	id, err := s.categoryRepo.Create(category)
	if err != nil {
		return nil, apperrors.Unavailable("saving category", err)
	}
	category.ID = id
	return category, nil
}

// DeleteCategory removes a user-owned category that is not referenced
// by any transaction, budget or child category.
func (s *CashflowService) DeleteCategory(userID, categoryID int64) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return apperrors.Unavailable("loading category", err)
	}
	if category == nil || category.IsSystem || category.UserID == nil || *category.UserID != userID {
		return apperrors.NotFound("category")
	}

	inUse, err := s.categoryRepo.InUse(categoryID)
	if err != nil {
		return apperrors.Unavailable("checking category usage", err)
	}
	if inUse {
		return apperrors.Conflict("category is still referenced by transactions, budgets or subcategories")
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		return apperrors.Unavailable("deleting category", err)
	}
	return nil
}

// CategoryTree returns the user's visible categories as a one-level
// tree.
func (s *CashflowService) CategoryTree(userID int64) ([]*models.CashflowCategory, error) {
	tree, err := s.categoryRepo.GetTree(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading categories", err)
	}
	return tree, nil
}

func (s *CashflowService) categoryNames(userID int64) (map[int64]string, error) {
	categories, err := s.categoryRepo.GetVisibleToUser(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading categories", err)
	}
	names := make(map[int64]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names, nil
}

func (s *CashflowService) get(userID, txID int64) (*models.CashflowTransaction, error) {
	tx, err := s.txRepo.GetByID(txID)
	if err != nil {
		return nil, apperrors.Unavailable("loading transaction", err)
	}
	if tx == nil || tx.UserID != userID {
		return nil, apperrors.NotFound("transaction")
	}
	return tx, nil
}

func (s *CashflowService) validate(tx *models.CashflowTransaction) error {
	switch tx.Type {
	case models.CashflowIncome, models.CashflowExpense, models.CashflowTransfer:
	default:
		return apperrors.ValidationField("type", "transaction type must be income, expense or transfer")
	}
	if tx.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ValidationField("amount", "amount must be positive")
	}
	if tx.TransactionDate.IsZero() {
		return apperrors.ValidationField("transaction_date", "transaction date is required")
	}
	if tx.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*tx.CategoryID)
		if err != nil {
			return apperrors.Unavailable("loading category", err)
		}
		if category == nil {
			return apperrors.NotFound("category")
		}
		if tx.Type != models.CashflowTransfer && category.Type != tx.Type {
			return apperrors.ValidationField("category_id", "category type must match transaction type")
		}
	}
	if tx.AccountID != nil {
		account, err := s.accountRepo.GetByID(*tx.AccountID)
		if err != nil {
			return apperrors.Unavailable("loading account", err)
		}
		if account == nil || account.UserID != tx.UserID {
			return apperrors.NotFound("account")
		}
	}
	return nil
}
