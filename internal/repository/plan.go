package repository

import (
	"database/sql"
	"time"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// PlanRepository handles investment plan database operations.
type PlanRepository struct {
	db *database.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a new investment plan and returns its ID.
func (r *PlanRepository) Create(plan *models.InvestmentPlan) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO investment_plans (user_id, fund_id, account_id, amount, frequency, day_of_month, day_of_week, next_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, plan.UserID, plan.FundID, nullInt64(plan.AccountID), plan.Amount,
		plan.Frequency, plan.DayOfMonth, plan.DayOfWeek, plan.NextDate,
		boolToInt(plan.IsActive))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a plan by ID. Returns nil if not found.
func (r *PlanRepository) GetByID(id int64) (*models.InvestmentPlan, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, fund_id, account_id, amount, frequency, day_of_month, day_of_week, next_date, is_active, created_at, updated_at
		FROM investment_plans
		WHERE id = ?
	`, id)

	plan, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetByUserID retrieves all plans for a user, newest first.
func (r *PlanRepository) GetByUserID(userID int64) ([]*models.InvestmentPlan, error) {
	return r.queryPlans(`
		SELECT id, user_id, fund_id, account_id, amount, frequency, day_of_month, day_of_week, next_date, is_active, created_at, updated_at
		FROM investment_plans
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
}

// GetActiveByUserID retrieves active plans ordered by next run date.
func (r *PlanRepository) GetActiveByUserID(userID int64) ([]*models.InvestmentPlan, error) {
	return r.queryPlans(`
		SELECT id, user_id, fund_id, account_id, amount, frequency, day_of_month, day_of_week, next_date, is_active, created_at, updated_at
		FROM investment_plans
		WHERE user_id = ? AND is_active = 1
		ORDER BY next_date ASC
	`, userID)
}

// GetDue retrieves active plans whose next date is on or before today.
func (r *PlanRepository) GetDue(userID int64, today time.Time) ([]*models.InvestmentPlan, error) {
	return r.queryPlans(`
		SELECT id, user_id, fund_id, account_id, amount, frequency, day_of_month, day_of_week, next_date, is_active, created_at, updated_at
		FROM investment_plans
		WHERE user_id = ? AND is_active = 1 AND next_date <= ?
		ORDER BY next_date ASC
	`, userID, today)
}

// Update updates an existing plan.
func (r *PlanRepository) Update(plan *models.InvestmentPlan) error {
	result, err := r.db.Exec(`
		UPDATE investment_plans
		SET fund_id = ?, account_id = ?, amount = ?, frequency = ?, day_of_month = ?, day_of_week = ?, next_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, plan.FundID, nullInt64(plan.AccountID), plan.Amount, plan.Frequency,
		plan.DayOfMonth, plan.DayOfWeek, plan.NextDate, boolToInt(plan.IsActive), plan.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "investment plan not found")
}

// UpdateNextDate advances a plan's next run date.
func (r *PlanRepository) UpdateNextDate(id int64, nextDate time.Time) error {
	result, err := r.db.Exec(`
		UPDATE investment_plans
		SET next_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nextDate, id)
	if err != nil {
		return err
	}
	return requireRow(result, "investment plan not found")
}

// SetActive toggles a plan on or off. Deactivating freezes next_date.
func (r *PlanRepository) SetActive(id int64, active bool) error {
	result, err := r.db.Exec(`
		UPDATE investment_plans
		SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, boolToInt(active), id)
	if err != nil {
		return err
	}
	return requireRow(result, "investment plan not found")
}

// Delete removes a plan by ID.
func (r *PlanRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM investment_plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "investment plan not found")
}

func (r *PlanRepository) queryPlans(query string, args ...any) ([]*models.InvestmentPlan, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]*models.InvestmentPlan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func scanPlan(scan func(dest ...any) error) (*models.InvestmentPlan, error) {
	plan := &models.InvestmentPlan{}
	var accountID sql.NullInt64
	var dayOfMonth, dayOfWeek sql.NullInt64
	var isActive int

	err := scan(
		&plan.ID,
		&plan.UserID,
		&plan.FundID,
		&accountID,
		&plan.Amount,
		&plan.Frequency,
		&dayOfMonth,
		&dayOfWeek,
		&plan.NextDate,
		&isActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		plan.AccountID = &accountID.Int64
	}
	if dayOfMonth.Valid {
		plan.DayOfMonth = int(dayOfMonth.Int64)
	}
	if dayOfWeek.Valid {
		plan.DayOfWeek = int(dayOfWeek.Int64)
	}
	plan.IsActive = isActive == 1
	return plan, nil
}
