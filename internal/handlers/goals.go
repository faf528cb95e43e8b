package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/models"
	"wealthmanager/internal/services"
)

// GoalHandler handles financial goal routes.
type GoalHandler struct {
	goals *services.GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type goalRequest struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline"`
	Priority      int             `json:"priority"`
	Notes         string          `json:"notes"`
}

func (req *goalRequest) toModel(userID int64) (*models.FinancialGoal, error) {
	goal := &models.FinancialGoal{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Priority:      req.Priority,
		Notes:         req.Notes,
	}
	if goal.Priority == 0 {
		goal.Priority = 3
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(dateOnly, req.Deadline)
		if err != nil {
			return nil, apperrors.ValidationField("deadline", "date must be YYYY-MM-DD")
		}
		goal.Deadline = &deadline
	}
	return goal, nil
}

// Create adds a goal.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	goal, err := req.toModel(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.goals.Create(goal)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies a goal.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	goal, err := req.toModel(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	goal.ID = id

	existing, err := h.goals.Get(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	goal.Status = existing.Status

	if err := h.goals.Update(user.ID, goal); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// UpdateProgress replaces the saved amount of a goal.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		CurrentAmount decimal.Decimal `json:"current_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	goal, err := h.goals.UpdateProgress(user.ID, id, req.CurrentAmount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// Complete marks a goal completed.
func (h *GoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, (*services.GoalService).Complete)
}

// Cancel marks a goal cancelled.
func (h *GoalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, (*services.GoalService).Cancel)
}

func (h *GoalHandler) updateStatus(w http.ResponseWriter, r *http.Request, op func(*services.GoalService, int64, int64) error) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := op(h.goals, user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Delete removes a goal.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.goals.Delete(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Progress projects every goal of the user.
func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	progresses, err := h.goals.Progress(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progresses)
}
