package repository

import (
	"database/sql"
	"time"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

// ReminderRepository handles reminder database operations.
// Delivery is an external concern; the engine only stores and queries.
type ReminderRepository struct {
	db *database.DB
}

// NewReminderRepository creates a new ReminderRepository.
func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a new reminder and returns its ID.
func (r *ReminderRepository) Create(reminder *models.Reminder) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO reminders (user_id, title, description, remind_at, type, reference_id, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, reminder.UserID, reminder.Title, reminder.Description, reminder.RemindAt,
		reminder.Type, nullInt64(reminder.ReferenceID), boolToInt(reminder.IsRead))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a reminder by ID. Returns nil if not found.
func (r *ReminderRepository) GetByID(id int64) (*models.Reminder, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, title, description, remind_at, type, reference_id, is_read, created_at
		FROM reminders
		WHERE id = ?
	`, id)

	reminder, err := scanReminder(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// GetByUserID retrieves all reminders for a user, soonest first.
func (r *ReminderRepository) GetByUserID(userID int64) ([]*models.Reminder, error) {
	return r.queryReminders(`
		SELECT id, user_id, title, description, remind_at, type, reference_id, is_read, created_at
		FROM reminders
		WHERE user_id = ?
		ORDER BY remind_at ASC
	`, userID)
}

// GetUnread retrieves unread reminders for a user, soonest first.
func (r *ReminderRepository) GetUnread(userID int64) ([]*models.Reminder, error) {
	return r.queryReminders(`
		SELECT id, user_id, title, description, remind_at, type, reference_id, is_read, created_at
		FROM reminders
		WHERE user_id = ? AND is_read = 0
		ORDER BY remind_at ASC
	`, userID)
}

// GetUpcoming retrieves reminders due within the next N days.
func (r *ReminderRepository) GetUpcoming(userID int64, days int, now time.Time) ([]*models.Reminder, error) {
	if days <= 0 {
		days = 7
	}
	until := now.AddDate(0, 0, days)
	return r.queryReminders(`
		SELECT id, user_id, title, description, remind_at, type, reference_id, is_read, created_at
		FROM reminders
		WHERE user_id = ? AND remind_at >= ? AND remind_at <= ?
		ORDER BY remind_at ASC
	`, userID, now, until)
}

// MarkRead marks a single reminder as read.
func (r *ReminderRepository) MarkRead(id int64) error {
	result, err := r.db.Exec(`UPDATE reminders SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "reminder not found")
}

// MarkAllRead marks every unread reminder of a user as read.
func (r *ReminderRepository) MarkAllRead(userID int64) error {
	_, err := r.db.Exec(`UPDATE reminders SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	return err
}

// Delete removes a reminder by ID.
func (r *ReminderRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, "reminder not found")
}

func (r *ReminderRepository) queryReminders(query string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*models.Reminder, 0)
	for rows.Next() {
		reminder, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func scanReminder(scan func(dest ...any) error) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var description sql.NullString
	var referenceID sql.NullInt64
	var isRead int

	err := scan(
		&reminder.ID,
		&reminder.UserID,
		&reminder.Title,
		&description,
		&reminder.RemindAt,
		&reminder.Type,
		&referenceID,
		&isRead,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		reminder.Description = description.String
	}
	if referenceID.Valid {
		reminder.ReferenceID = &referenceID.Int64
	}
	reminder.IsRead = isRead == 1
	return reminder, nil
}
