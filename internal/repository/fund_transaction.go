package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// FundTransactionRepository handles fund transaction database operations.
type FundTransactionRepository struct {
	db *database.DB
}

// NewFundTransactionRepository creates a new FundTransactionRepository.
func NewFundTransactionRepository(db *database.DB) *FundTransactionRepository {
	return &FundTransactionRepository{db: db}
}

// FundTransactionFilters narrows fund transaction listings.
type FundTransactionFilters struct {
	FundID    *int64
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
}

// Create inserts a new fund transaction and returns its ID.
func (r *FundTransactionRepository) Create(tx *models.FundTransaction) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO fund_transactions (user_id, fund_id, account_id, type, shares, nav, amount, fee, transaction_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.UserID, tx.FundID, nullInt64(tx.AccountID), tx.Type,
		nullDecimal(tx.Shares), nullDecimal(tx.NAV), tx.Amount, tx.Fee,
		tx.TransactionDate, tx.Notes)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a fund transaction by ID. Returns nil if not found.
func (r *FundTransactionRepository) GetByID(id int64) (*models.FundTransaction, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, fund_id, account_id, type, shares, nav, amount, fee, transaction_date, notes, created_at
		FROM fund_transactions
		WHERE id = ?
	`, id)

	tx, err := scanFundTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetForReplay retrieves every transaction of one fund holding lineage
// in chronological order. This is the input to the cost-basis replay:
// ascending by date, insertion order breaking ties.
func (r *FundTransactionRepository) GetForReplay(userID, fundID int64, accountID *int64) ([]*models.FundTransaction, error) {
	return r.queryTransactions(`
		SELECT id, user_id, fund_id, account_id, type, shares, nav, amount, fee, transaction_date, notes, created_at
		FROM fund_transactions
		WHERE user_id = ? AND fund_id = ? AND COALESCE(account_id, 0) = COALESCE(?, 0)
		ORDER BY transaction_date ASC, id ASC
	`, userID, fundID, nullInt64(accountID))
}

// GetByUserID retrieves fund transactions for a user, newest first,
// optionally narrowed by filters.
func (r *FundTransactionRepository) GetByUserID(userID int64, filters FundTransactionFilters) ([]*models.FundTransaction, error) {
	query := `
		SELECT id, user_id, fund_id, account_id, type, shares, nav, amount, fee, transaction_date, notes, created_at
		FROM fund_transactions
		WHERE user_id = ?
	`
	args := []any{userID}

	if filters.FundID != nil {
		query += " AND fund_id = ?"
		args = append(args, *filters.FundID)
	}
	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.StartDate != nil {
		query += " AND transaction_date >= ?"
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		query += " AND transaction_date <= ?"
		args = append(args, *filters.EndDate)
	}
	query += " ORDER BY transaction_date DESC, id DESC"

	return r.queryTransactions(query, args...)
}

// Delete removes a fund transaction by ID. The caller is responsible
// for re-running the holding replay afterwards.
func (r *FundTransactionRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM fund_transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "fund transaction not found")
}

func (r *FundTransactionRepository) queryTransactions(query string, args ...any) ([]*models.FundTransaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*models.FundTransaction, 0)
	for rows.Next() {
		tx, err := scanFundTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanFundTransaction(scan func(dest ...any) error) (*models.FundTransaction, error) {
	tx := &models.FundTransaction{}
	var accountID sql.NullInt64
	var shares, nav decimal.NullDecimal
	var notes sql.NullString

	err := scan(
		&tx.ID,
		&tx.UserID,
		&tx.FundID,
		&accountID,
		&tx.Type,
		&shares,
		&nav,
		&tx.Amount,
		&tx.Fee,
		&tx.TransactionDate,
		&notes,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		tx.AccountID = &accountID.Int64
	}
	if shares.Valid {
		tx.Shares = &shares.Decimal
	}
	if nav.Valid {
		tx.NAV = &nav.Decimal
	}
	if notes.Valid {
		tx.Notes = notes.String
	}
	return tx, nil
}
