package repository

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// GoalRepository handles financial goal database operations.
type GoalRepository struct {
	db *database.DB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new goal and returns its ID.
func (r *GoalRepository) Create(goal *models.FinancialGoal) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO financial_goals (user_id, name, target_amount, current_amount, deadline, status, priority, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount,
		nullTime(goal.Deadline), goal.Status, goal.Priority, goal.Notes)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a goal by ID. Returns nil if not found.
func (r *GoalRepository) GetByID(id int64) (*models.FinancialGoal, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, status, priority, notes, created_at, updated_at
		FROM financial_goals
		WHERE id = ?
	`, id)

	goal, err := scanGoal(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// GetByUserID retrieves all goals for a user, highest priority first,
// earliest deadline breaking ties (goals without a deadline last).
func (r *GoalRepository) GetByUserID(userID int64) ([]*models.FinancialGoal, error) {
	return r.queryGoals(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, status, priority, notes, created_at, updated_at
		FROM financial_goals
		WHERE user_id = ?
		ORDER BY priority ASC, deadline IS NULL, deadline ASC
	`, userID)
}

// GetActiveByUserID retrieves only active goals for a user.
func (r *GoalRepository) GetActiveByUserID(userID int64) ([]*models.FinancialGoal, error) {
	return r.queryGoals(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, status, priority, notes, created_at, updated_at
		FROM financial_goals
		WHERE user_id = ? AND status = 'active'
		ORDER BY priority ASC, deadline IS NULL, deadline ASC
	`, userID)
}

// Update updates an existing goal.
func (r *GoalRepository) Update(goal *models.FinancialGoal) error {
	result, err := r.db.Exec(`
		UPDATE financial_goals
		SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, status = ?, priority = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, goal.Name, goal.TargetAmount, goal.CurrentAmount, nullTime(goal.Deadline),
		goal.Status, goal.Priority, goal.Notes, goal.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "goal not found")
}

// UpdateCurrentAmount replaces a goal's current amount. This is a full
// replace: accumulation is computed by the caller before calling this.
func (r *GoalRepository) UpdateCurrentAmount(id int64, amount decimal.Decimal) error {
	result, err := r.db.Exec(`
		UPDATE financial_goals
		SET current_amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, id)
	if err != nil {
		return err
	}
	return requireRow(result, "goal not found")
}

// UpdateStatus sets a goal's status.
func (r *GoalRepository) UpdateStatus(id int64, status string) error {
	result, err := r.db.Exec(`
		UPDATE financial_goals
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result, "goal not found")
}

// Delete removes a goal by ID.
func (r *GoalRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM financial_goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "goal not found")
}

func (r *GoalRepository) queryGoals(query string, args ...any) ([]*models.FinancialGoal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]*models.FinancialGoal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func scanGoal(scan func(dest ...any) error) (*models.FinancialGoal, error) {
	goal := &models.FinancialGoal{}
	var deadline sql.NullTime
	var notes sql.NullString

	err := scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&deadline,
		&goal.Status,
		&goal.Priority,
		&notes,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		goal.Deadline = &deadline.Time
	}
	if notes.Valid {
		goal.Notes = notes.String
	}
	return goal, nil
}
