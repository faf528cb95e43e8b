package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/middleware"
	"wealthmanager/internal/models"
	"wealthmanager/internal/services"
)

// PlanHandler handles recurring investment plan routes.
type PlanHandler struct {
	plans *services.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(plans *services.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

type planRequest struct {
	FundID     int64           `json:"fund_id"`
	AccountID  *int64          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  string          `json:"frequency"`
	DayOfMonth int             `json:"day_of_month"`
	DayOfWeek  int             `json:"day_of_week"`
}

func (req *planRequest) toModel(userID int64) *models.InvestmentPlan {
	return &models.InvestmentPlan{
		UserID:     userID,
		FundID:     req.FundID,
		AccountID:  req.AccountID,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		DayOfMonth: req.DayOfMonth,
		DayOfWeek:  req.DayOfWeek,
	}
}

// List returns every plan of the user.
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	plans, err := h.plans.List(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// Create adds a plan and schedules its first run.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	plan, err := h.plans.Create(req.toModel(user.ID))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

// Update modifies a plan.
func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	plan := req.toModel(user.ID)
	plan.ID = id

	if err := h.plans.Update(user.ID, plan); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// SetActive pauses or resumes a plan.
func (h *PlanHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.plans.SetActive(user.ID, id, req.IsActive); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Delete removes a plan.
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.plans.Delete(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Run executes every due plan for the user as of today.
func (h *PlanHandler) Run(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	results, err := h.plans.RunDuePlans(user.ID, time.Now().UTC())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
