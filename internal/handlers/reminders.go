package handlers

import (
	"net/http"
	"time"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/repository"
)

// ReminderHandler handles reminder routes.
type ReminderHandler struct {
	reminderRepo *repository.ReminderRepository
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderRepo *repository.ReminderRepository) *ReminderHandler {
	return &ReminderHandler{reminderRepo: reminderRepo}
}

// List returns the user's reminders, newest first.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	reminders, err := h.reminderRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading reminders", err))
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// Upcoming returns reminders due within the next N days.
func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	reminders, err := h.reminderRepo.GetUpcoming(user.ID, queryInt(r, "days", 7), time.Now().UTC())
	if err != nil {
		respondError(w, apperrors.Unavailable("loading reminders", err))
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// MarkRead marks one reminder as read.
func (h *ReminderHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	reminder, err := h.reminderRepo.GetByID(id)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading reminder", err))
		return
	}
	if reminder == nil || reminder.UserID != user.ID {
		respondError(w, apperrors.NotFound("reminder"))
		return
	}

	if err := h.reminderRepo.MarkRead(id); err != nil {
		respondError(w, apperrors.Unavailable("saving reminder", err))
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// MarkAllRead marks every reminder of the user as read.
func (h *ReminderHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.reminderRepo.MarkAllRead(user.ID); err != nil {
		respondError(w, apperrors.Unavailable("saving reminders", err))
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
