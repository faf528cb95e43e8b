package handlers

import (
	"net/http"

	"wealthmanager/internal/middleware"
	"wealthmanager/internal/services"
)

// DashboardHandler handles the dashboard and net worth routes.
type DashboardHandler struct {
	dashboard *services.DashboardService
	netWorth  *services.NetWorthService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *services.DashboardService, netWorth *services.NetWorthService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, netWorth: netWorth}
}

// Summary returns the composed dashboard view.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	summary, err := h.dashboard.Summary(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// NetWorth computes current net worth on demand.
func (h *DashboardHandler) NetWorth(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	netWorth, err := h.netWorth.Compute(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, netWorth)
}

// Allocation returns the asset allocation percentages.
func (h *DashboardHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	allocation, err := h.netWorth.Allocation(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, allocation)
}

// Snapshot records the current net worth in the history.
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	snapshot, err := h.netWorth.CreateSnapshot(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snapshot)
}

// History returns the snapshot history for the last N months.
func (h *DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	snapshots, err := h.netWorth.History(user.ID, queryInt(r, "months", 12))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshots)
}
