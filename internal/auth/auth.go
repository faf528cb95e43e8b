// Package auth provides password hashing, session management and the
// register/login flows.
package auth

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wealthmanager/internal/database"
	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

const (
	// DefaultSessionDuration is the default session lifetime.
	DefaultSessionDuration = 7 * 24 * time.Hour // 7 days

	// BcryptCost is the bcrypt hashing cost.
	BcryptCost = 12

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SessionManager handles session persistence.
type SessionManager struct {
	db       *database.DB
	duration time.Duration
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(db *database.DB) *SessionManager {
	return &SessionManager{
		db:       db,
		duration: DefaultSessionDuration,
	}
}

// WithDuration sets a custom session duration.
func (sm *SessionManager) WithDuration(d time.Duration) *SessionManager {
	sm.duration = d
	return sm
}

// Create creates a new session for a user.
func (sm *SessionManager) Create(userID int64) (*models.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(sm.duration),
		CreatedAt: time.Now(),
	}

	_, err = sm.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

// Get retrieves a session by ID. Returns nil if not found.
func (sm *SessionManager) Get(id string) (*models.Session, error) {
	session := &models.Session{}
	err := sm.db.QueryRow(`
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

// Validate checks a session and returns the user ID it belongs to.
// Expired sessions are deleted on sight.
func (sm *SessionManager) Validate(id string) (int64, error) {
	session, err := sm.Get(id)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, apperrors.Unauthorized("session not found")
	}
	if session.IsExpired() {
		sm.Delete(id)
		return 0, apperrors.Unauthorized("session expired")
	}
	return session.UserID, nil
}

// Delete removes a session by ID.
func (sm *SessionManager) Delete(id string) error {
	_, err := sm.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (sm *SessionManager) DeleteByUserID(userID int64) error {
	_, err := sm.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}

// CleanExpired removes all expired sessions and returns the count.
func (sm *SessionManager) CleanExpired() (int64, error) {
	result, err := sm.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("cleaning expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Service ties user accounts and sessions into register/login flows.
type Service struct {
	userRepo *repository.UserRepository
	sessions *SessionManager
}

// NewService creates a new auth Service.
func NewService(userRepo *repository.UserRepository, sessions *SessionManager) *Service {
	return &Service{userRepo: userRepo, sessions: sessions}
}

// Register creates a user account and an initial session.
func (s *Service) Register(email, password, name, currency string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperrors.ValidationField("email", "invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, nil, apperrors.ValidationField("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if name == "" {
		name = email
	}
	if currency == "" {
		currency = "DKK"
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, apperrors.Unavailable("loading user", err)
	}
	if existing != nil {
		return nil, nil, apperrors.Conflict("an account with this email already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, apperrors.Internal("hashing password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Currency:     currency,
	}
	id, err := s.userRepo.Create(user)
	if err != nil {
		return nil, nil, apperrors.Unavailable("saving user", err)
	}
	user.ID = id

	session, err := s.sessions.Create(id)
	if err != nil {
		return nil, nil, apperrors.Internal("creating session", err)
	}
	return user, session, nil
}

// Login verifies credentials and opens a session. The same error is
// returned for a missing user and a wrong password.
func (s *Service) Login(email, password string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, apperrors.Unavailable("loading user", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	session, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, nil, apperrors.Internal("creating session", err)
	}
	return user, session, nil
}

// Logout closes one session.
func (s *Service) Logout(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// generateSessionID creates a cryptographically secure session ID.
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
