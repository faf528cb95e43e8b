package repository

import (
	"database/sql"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// BudgetRepository handles budget database operations.
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a new budget and returns its ID.
func (r *BudgetRepository) Create(budget *models.Budget) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO budgets (user_id, category_id, amount, period, alert_threshold)
		VALUES (?, ?, ?, ?, ?)
	`, budget.UserID, nullInt64(budget.CategoryID), budget.Amount,
		budget.Period, budget.AlertThreshold)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a budget by ID. Returns nil if not found.
func (r *BudgetRepository) GetByID(id int64) (*models.Budget, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, category_id, amount, period, alert_threshold, created_at, updated_at
		FROM budgets
		WHERE id = ?
	`, id)

	budget, err := scanBudget(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetByUserID retrieves all budgets for a user, newest first.
func (r *BudgetRepository) GetByUserID(userID int64) ([]*models.Budget, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, category_id, amount, period, alert_threshold, created_at, updated_at
		FROM budgets
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]*models.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update updates an existing budget.
func (r *BudgetRepository) Update(budget *models.Budget) error {
	result, err := r.db.Exec(`
		UPDATE budgets
		SET category_id = ?, amount = ?, period = ?, alert_threshold = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullInt64(budget.CategoryID), budget.Amount, budget.Period,
		budget.AlertThreshold, budget.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "budget not found")
}

// Delete removes a budget by ID.
func (r *BudgetRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "budget not found")
}

func scanBudget(scan func(dest ...any) error) (*models.Budget, error) {
	budget := &models.Budget{}
	var categoryID sql.NullInt64

	err := scan(
		&budget.ID,
		&budget.UserID,
		&categoryID,
		&budget.Amount,
		&budget.Period,
		&budget.AlertThreshold,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		budget.CategoryID = &categoryID.Int64
	}
	return budget, nil
}
