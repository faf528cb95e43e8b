package repository

import (
	"database/sql"
	"errors"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// CashflowCategoryRepository handles cashflow category database operations.
type CashflowCategoryRepository struct {
	db *database.DB
}

// NewCashflowCategoryRepository creates a new CashflowCategoryRepository.
func NewCashflowCategoryRepository(db *database.DB) *CashflowCategoryRepository {
	return &CashflowCategoryRepository{db: db}
}

// Create inserts a new user category and returns its ID.
// System categories are seeded by migration, never created here.
func (r *CashflowCategoryRepository) Create(category *models.CashflowCategory) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO cashflow_categories (user_id, name, type, parent_id, is_system)
		VALUES (?, ?, ?, ?, 0)
	`, nullInt64(category.UserID), category.Name, category.Type, nullInt64(category.ParentID))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a category by ID. Returns nil if not found.
func (r *CashflowCategoryRepository) GetByID(id int64) (*models.CashflowCategory, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, parent_id, is_system, created_at
		FROM cashflow_categories
		WHERE id = ?
	`, id)

	category, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// GetVisibleToUser retrieves system categories plus the user's own,
// system first then by name.
func (r *CashflowCategoryRepository) GetVisibleToUser(userID int64) ([]*models.CashflowCategory, error) {
	return r.queryCategories(`
		SELECT id, user_id, name, type, parent_id, is_system, created_at
		FROM cashflow_categories
		WHERE is_system = 1 OR user_id = ?
		ORDER BY is_system DESC, name ASC
	`, userID)
}

// GetVisibleToUserByType retrieves visible categories of one type.
func (r *CashflowCategoryRepository) GetVisibleToUserByType(userID int64, categoryType string) ([]*models.CashflowCategory, error) {
	return r.queryCategories(`
		SELECT id, user_id, name, type, parent_id, is_system, created_at
		FROM cashflow_categories
		WHERE (is_system = 1 OR user_id = ?) AND type = ?
		ORDER BY is_system DESC, name ASC
	`, userID, categoryType)
}

// GetTree returns visible categories as a one-level tree: root
// categories with their children attached.
func (r *CashflowCategoryRepository) GetTree(userID int64) ([]*models.CashflowCategory, error) {
	categories, err := r.GetVisibleToUser(userID)
	if err != nil {
		return nil, err
	}

	childMap := make(map[int64][]*models.CashflowCategory)
	roots := make([]*models.CashflowCategory, 0)
	for _, c := range categories {
		if c.ParentID != nil {
			childMap[*c.ParentID] = append(childMap[*c.ParentID], c)
		} else {
			roots = append(roots, c)
		}
	}
	for _, root := range roots {
		root.Children = childMap[root.ID]
	}
	return roots, nil
}

// InUse reports whether any transaction or budget references the category.
func (r *CashflowCategoryRepository) InUse(id int64) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM cashflow_transactions WHERE category_id = ?) +
			(SELECT COUNT(*) FROM budgets WHERE category_id = ?) +
			(SELECT COUNT(*) FROM cashflow_categories WHERE parent_id = ?)
	`, id, id, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a user category. System categories are immutable.
func (r *CashflowCategoryRepository) Delete(id int64) error {
	result, err := r.db.Exec(`
		DELETE FROM cashflow_categories WHERE id = ? AND is_system = 0
	`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("category not found or is a system category")
	}
	return nil
}

func (r *CashflowCategoryRepository) queryCategories(query string, args ...any) ([]*models.CashflowCategory, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*models.CashflowCategory, 0)
	for rows.Next() {
		category, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func scanCategory(scan func(dest ...any) error) (*models.CashflowCategory, error) {
	category := &models.CashflowCategory{}
	var userID, parentID sql.NullInt64
	var isSystem int

	err := scan(
		&category.ID,
		&userID,
		&category.Name,
		&category.Type,
		&parentID,
		&isSystem,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		category.UserID = &userID.Int64
	}
	if parentID.Valid {
		category.ParentID = &parentID.Int64
	}
	category.IsSystem = isSystem == 1
	return category, nil
}
