package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/models"
	"wealthmanager/internal/services"
)

// BudgetHandler handles budget routes.
type BudgetHandler struct {
	budgets *services.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgets *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type budgetRequest struct {
	CategoryID     *int64          `json:"category_id"`
	Amount         decimal.Decimal `json:"amount"`
	AlertThreshold float64         `json:"alert_threshold"`
}

// Create adds a monthly budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.AlertThreshold == 0 {
		req.AlertThreshold = 0.8
	}

	budget, err := h.budgets.Create(&models.Budget{
		UserID:         user.ID,
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, budget)
}

// Update modifies a budget.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	budget := &models.Budget{
		ID:             id,
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		AlertThreshold: req.AlertThreshold,
	}
	if err := h.budgets.Update(user.ID, budget); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, budget)
}

// Delete removes a budget.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.budgets.Delete(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Statuses evaluates every budget against a month's spending.
func (h *BudgetHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	now := time.Now().UTC()

	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		respondError(w, apperrors.ValidationField("month", "month must be between 1 and 12"))
		return
	}

	statuses, err := h.budgets.Statuses(user.ID, year, time.Month(month))
	if err != nil {
		respondError(w, err)
		return
	}
	// Most stretched budgets first.
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].UsagePercent.GreaterThan(statuses[j].UsagePercent)
	})
	respondJSON(w, http.StatusOK, statuses)
}
