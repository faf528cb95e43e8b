package repository

import (
	"database/sql"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// HoldingRepository handles fund holding database operations.
// A holding row is the materialized output of the cost-basis replay;
// it is never mutated independently of the transaction log.
type HoldingRepository struct {
	db *database.DB
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(db *database.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Get retrieves the holding for one (user, fund, account) combination.
// Returns nil if no holding exists yet.
func (r *HoldingRepository) Get(userID, fundID int64, accountID *int64) (*models.FundHolding, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, fund_id, account_id, shares, cost_basis, created_at, updated_at
		FROM fund_holdings
		WHERE user_id = ? AND fund_id = ? AND COALESCE(account_id, 0) = COALESCE(?, 0)
	`, userID, fundID, nullInt64(accountID))

	holding, err := scanHolding(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return holding, nil
}

// GetByUserID retrieves all holdings with shares for a user.
func (r *HoldingRepository) GetByUserID(userID int64) ([]*models.FundHolding, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, fund_id, account_id, shares, cost_basis, created_at, updated_at
		FROM fund_holdings
		WHERE user_id = ? AND shares > 0
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := make([]*models.FundHolding, 0)
	for rows.Next() {
		holding, err := scanHolding(rows.Scan)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, holding)
	}
	return holdings, rows.Err()
}

// Upsert writes the replayed holding state, creating the row on first
// buy and replacing shares/cost basis on every later replay.
func (r *HoldingRepository) Upsert(holding *models.FundHolding) (int64, error) {
	existing, err := r.Get(holding.UserID, holding.FundID, holding.AccountID)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		result, err := r.db.Exec(`
			INSERT INTO fund_holdings (user_id, fund_id, account_id, shares, cost_basis)
			VALUES (?, ?, ?, ?, ?)
		`, holding.UserID, holding.FundID, nullInt64(holding.AccountID),
			holding.Shares, holding.CostBasis)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	_, err = r.db.Exec(`
		UPDATE fund_holdings
		SET shares = ?, cost_basis = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, holding.Shares, holding.CostBasis, existing.ID)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func scanHolding(scan func(dest ...any) error) (*models.FundHolding, error) {
	holding := &models.FundHolding{}
	var accountID sql.NullInt64

	err := scan(
		&holding.ID,
		&holding.UserID,
		&holding.FundID,
		&accountID,
		&holding.Shares,
		&holding.CostBasis,
		&holding.CreatedAt,
		&holding.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		holding.AccountID = &accountID.Int64
	}
	return holding, nil
}
