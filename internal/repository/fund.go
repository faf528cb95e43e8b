package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// FundRepository handles fund catalog database operations.
// Funds are global catalog entries, not owned by a user.
type FundRepository struct {
	db *database.DB
}

// NewFundRepository creates a new FundRepository.
func NewFundRepository(db *database.DB) *FundRepository {
	return &FundRepository{db: db}
}

// Create inserts a new fund and returns its ID.
func (r *FundRepository) Create(fund *models.Fund) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO funds (code, name, nav, nav_date)
		VALUES (?, ?, ?, ?)
	`, fund.Code, fund.Name, nullDecimal(fund.NAV), nullTime(fund.NAVDate))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a fund by ID. Returns nil if not found.
func (r *FundRepository) GetByID(id int64) (*models.Fund, error) {
	row := r.db.QueryRow(`
		SELECT id, code, name, nav, nav_date, created_at, updated_at
		FROM funds
		WHERE id = ?
	`, id)
	return scanFund(row.Scan)
}

// GetByCode retrieves a fund by its unique code. Returns nil if not found.
func (r *FundRepository) GetByCode(code string) (*models.Fund, error) {
	row := r.db.QueryRow(`
		SELECT id, code, name, nav, nav_date, created_at, updated_at
		FROM funds
		WHERE code = ?
	`, code)
	return scanFund(row.Scan)
}

// Search finds funds matching the keyword against code or name.
func (r *FundRepository) Search(keyword string, limit int) ([]*models.Fund, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + keyword + "%"
	rows, err := r.db.Query(`
		SELECT id, code, name, nav, nav_date, created_at, updated_at
		FROM funds
		WHERE code LIKE ? OR name LIKE ?
		ORDER BY code ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funds := make([]*models.Fund, 0)
	for rows.Next() {
		fund, err := scanFund(rows.Scan)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}
	return funds, rows.Err()
}

// UpdateNAV sets the latest known NAV and its date for a fund.
func (r *FundRepository) UpdateNAV(id int64, nav decimal.Decimal, navDate time.Time) error {
	result, err := r.db.Exec(`
		UPDATE funds
		SET nav = ?, nav_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nav, navDate, id)
	if err != nil {
		return err
	}
	return requireRow(result, "fund not found")
}

func scanFund(scan func(dest ...any) error) (*models.Fund, error) {
	fund := &models.Fund{}
	var nav decimal.NullDecimal
	var navDate sql.NullTime

	err := scan(
		&fund.ID,
		&fund.Code,
		&fund.Name,
		&nav,
		&navDate,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if nav.Valid {
		fund.NAV = &nav.Decimal
	}
	if navDate.Valid {
		fund.NAVDate = &navDate.Time
	}
	return fund, nil
}

// nullDecimal converts an optional decimal to a driver-friendly value.
func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

// nullTime converts an optional time to a driver-friendly value.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullInt64 converts an optional int64 to a driver-friendly value.
func nullInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
