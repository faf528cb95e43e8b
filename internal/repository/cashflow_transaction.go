package repository

import (
	"database/sql"
	"time"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// CashflowTransactionRepository handles cashflow transaction database operations.
type CashflowTransactionRepository struct {
	db *database.DB
}

// NewCashflowTransactionRepository creates a new CashflowTransactionRepository.
func NewCashflowTransactionRepository(db *database.DB) *CashflowTransactionRepository {
	return &CashflowTransactionRepository{db: db}
}

// CashflowFilters narrows cashflow transaction listings.
type CashflowFilters struct {
	Type       string
	CategoryID *int64
	AccountID  *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

// Create inserts a new cashflow transaction and returns its ID.
func (r *CashflowTransactionRepository) Create(tx *models.CashflowTransaction) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO cashflow_transactions (user_id, account_id, category_id, type, amount, description, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tx.UserID, nullInt64(tx.AccountID), nullInt64(tx.CategoryID), tx.Type,
		tx.Amount, tx.Description, tx.TransactionDate)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a cashflow transaction by ID. Returns nil if not found.
func (r *CashflowTransactionRepository) GetByID(id int64) (*models.CashflowTransaction, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, account_id, category_id, type, amount, description, transaction_date, created_at
		FROM cashflow_transactions
		WHERE id = ?
	`, id)

	tx, err := scanCashflowTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetByUserID retrieves cashflow transactions for a user, newest first,
// optionally narrowed by filters and paginated.
func (r *CashflowTransactionRepository) GetByUserID(userID int64, filters CashflowFilters, p Pagination) ([]*models.CashflowTransaction, error) {
	query := `
		SELECT id, user_id, account_id, category_id, type, amount, description, transaction_date, created_at
		FROM cashflow_transactions
		WHERE user_id = ?
	`
	args := []any{userID}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *filters.CategoryID)
	}
	if filters.AccountID != nil {
		query += " AND account_id = ?"
		args = append(args, *filters.AccountID)
	}
	if filters.StartDate != nil {
		query += " AND transaction_date >= ?"
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		query += " AND transaction_date <= ?"
		args = append(args, *filters.EndDate)
	}
	query += " ORDER BY transaction_date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, p.Limit, p.Offset)

	return r.queryTransactions(query, args...)
}

// GetByUserAndMonth retrieves every transaction of a user falling in the
// given year/month. This is the raw input for the budget monitor and
// the monthly summary.
func (r *CashflowTransactionRepository) GetByUserAndMonth(userID int64, year int, month time.Month) ([]*models.CashflowTransaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return r.queryTransactions(`
		SELECT id, user_id, account_id, category_id, type, amount, description, transaction_date, created_at
		FROM cashflow_transactions
		WHERE user_id = ? AND transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date ASC, id ASC
	`, userID, start, end)
}

// GetRecent retrieves the most recent transactions for a user.
func (r *CashflowTransactionRepository) GetRecent(userID int64, limit int) ([]*models.CashflowTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryTransactions(`
		SELECT id, user_id, account_id, category_id, type, amount, description, transaction_date, created_at
		FROM cashflow_transactions
		WHERE user_id = ?
		ORDER BY transaction_date DESC, id DESC
		LIMIT ?
	`, userID, limit)
}

// Update updates an existing cashflow transaction.
func (r *CashflowTransactionRepository) Update(tx *models.CashflowTransaction) error {
	result, err := r.db.Exec(`
		UPDATE cashflow_transactions
		SET account_id = ?, category_id = ?, type = ?, amount = ?, description = ?, transaction_date = ?
		WHERE id = ?
	`, nullInt64(tx.AccountID), nullInt64(tx.CategoryID), tx.Type, tx.Amount,
		tx.Description, tx.TransactionDate, tx.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "cashflow transaction not found")
}

// Delete removes a cashflow transaction by ID.
func (r *CashflowTransactionRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM cashflow_transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "cashflow transaction not found")
}

// CountByUserID returns the number of transactions matching the filters.
func (r *CashflowTransactionRepository) CountByUserID(userID int64, filters CashflowFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM cashflow_transactions WHERE user_id = ?`
	args := []any{userID}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *filters.CategoryID)
	}
	if filters.AccountID != nil {
		query += " AND account_id = ?"
		args = append(args, *filters.AccountID)
	}
	if filters.StartDate != nil {
		query += " AND transaction_date >= ?"
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		query += " AND transaction_date <= ?"
		args = append(args, *filters.EndDate)
	}

	var count int64
	err := r.db.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (r *CashflowTransactionRepository) queryTransactions(query string, args ...any) ([]*models.CashflowTransaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*models.CashflowTransaction, 0)
	for rows.Next() {
		tx, err := scanCashflowTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanCashflowTransaction(scan func(dest ...any) error) (*models.CashflowTransaction, error) {
	tx := &models.CashflowTransaction{}
	var accountID, categoryID sql.NullInt64
	var description sql.NullString

	err := scan(
		&tx.ID,
		&tx.UserID,
		&accountID,
		&categoryID,
		&tx.Type,
		&tx.Amount,
		&description,
		&tx.TransactionDate,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		tx.AccountID = &accountID.Int64
	}
	if categoryID.Valid {
		tx.CategoryID = &categoryID.Int64
	}
	if description.Valid {
		tx.Description = description.String
	}
	return tx, nil
}
