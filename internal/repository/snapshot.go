package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// SnapshotRepository handles net worth snapshot database operations.
// Snapshots are append-only; there is no update or delete.
type SnapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *database.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert appends a new snapshot and returns its ID.
func (r *SnapshotRepository) Insert(snapshot *models.NetWorthSnapshot) (int64, error) {
	breakdown, err := json.Marshal(snapshot.Breakdown)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Exec(`
		INSERT INTO net_worth_snapshots (user_id, snapshot_date, total_assets, total_liabilities, net_worth, breakdown)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snapshot.UserID, snapshot.SnapshotDate, snapshot.TotalAssets,
		snapshot.TotalLiabilities, snapshot.NetWorth, string(breakdown))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetHistory retrieves snapshots for the last N months, oldest first.
func (r *SnapshotRepository) GetHistory(userID int64, months int) ([]*models.NetWorthSnapshot, error) {
	if months <= 0 {
		months = 12
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	rows, err := r.db.Query(`
		SELECT id, user_id, snapshot_date, total_assets, total_liabilities, net_worth, breakdown, created_at
		FROM net_worth_snapshots
		WHERE user_id = ? AND snapshot_date >= ?
		ORDER BY snapshot_date ASC, id ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]*models.NetWorthSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// GetLatest retrieves the most recent snapshot. Returns nil if none exists.
func (r *SnapshotRepository) GetLatest(userID int64) (*models.NetWorthSnapshot, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, snapshot_date, total_assets, total_liabilities, net_worth, breakdown, created_at
		FROM net_worth_snapshots
		WHERE user_id = ?
		ORDER BY snapshot_date DESC, id DESC
		LIMIT 1
	`, userID)

	snapshot, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func scanSnapshot(scan func(dest ...any) error) (*models.NetWorthSnapshot, error) {
	snapshot := &models.NetWorthSnapshot{}
	var breakdown sql.NullString

	err := scan(
		&snapshot.ID,
		&snapshot.UserID,
		&snapshot.SnapshotDate,
		&snapshot.TotalAssets,
		&snapshot.TotalLiabilities,
		&snapshot.NetWorth,
		&breakdown,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if breakdown.Valid && breakdown.String != "" {
		if err := json.Unmarshal([]byte(breakdown.String), &snapshot.Breakdown); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}
