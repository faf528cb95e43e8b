package repository

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// AccountRepository handles asset account database operations.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account and returns its ID.
func (r *AccountRepository) Create(account *models.AssetAccount) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO asset_accounts (user_id, name, type, balance, is_active, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.UserID, account.Name, account.Type, account.Balance,
		boolToInt(account.IsActive), account.Notes)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves an account by ID. Returns nil if not found.
func (r *AccountRepository) GetByID(id int64) (*models.AssetAccount, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, balance, is_active, notes, created_at, updated_at
		FROM asset_accounts
		WHERE id = ?
	`, id)

	account, err := scanAccountRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetByUserID retrieves all accounts for a user, sorted by name.
func (r *AccountRepository) GetByUserID(userID int64) ([]*models.AssetAccount, error) {
	return r.queryAccounts(`
		SELECT id, user_id, name, type, balance, is_active, notes, created_at, updated_at
		FROM asset_accounts
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
}

// GetByUserIDActiveOnly retrieves only active accounts for a user.
// Only active accounts count toward net worth.
func (r *AccountRepository) GetByUserIDActiveOnly(userID int64) ([]*models.AssetAccount, error) {
	return r.queryAccounts(`
		SELECT id, user_id, name, type, balance, is_active, notes, created_at, updated_at
		FROM asset_accounts
		WHERE user_id = ? AND is_active = 1
		ORDER BY name ASC
	`, userID)
}

// queryAccounts is a helper to query multiple accounts.
func (r *AccountRepository) queryAccounts(query string, args ...any) ([]*models.AssetAccount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*models.AssetAccount, 0)
	for rows.Next() {
		account, err := scanAccountRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccountRow(scan func(dest ...any) error) (*models.AssetAccount, error) {
	account := &models.AssetAccount{}
	var isActive int
	var notes sql.NullString

	err := scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Type,
		&account.Balance,
		&isActive,
		&notes,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.IsActive = isActive == 1
	if notes.Valid {
		account.Notes = notes.String
	}
	return account, nil
}

// Update updates an existing account.
func (r *AccountRepository) Update(account *models.AssetAccount) error {
	result, err := r.db.Exec(`
		UPDATE asset_accounts
		SET name = ?, type = ?, balance = ?, is_active = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, account.Name, account.Type, account.Balance,
		boolToInt(account.IsActive), account.Notes, account.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "account not found")
}

// UpdateBalance sets an account's balance.
func (r *AccountRepository) UpdateBalance(id int64, balance decimal.Decimal) error {
	result, err := r.db.Exec(`
		UPDATE asset_accounts
		SET balance = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, balance, id)
	if err != nil {
		return err
	}
	return requireRow(result, "account not found")
}

// Delete removes an account by ID.
func (r *AccountRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM asset_accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "account not found")
}

// requireRow returns an error if the statement affected no rows.
func requireRow(result sql.Result, msg string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New(msg)
	}
	return nil
}
