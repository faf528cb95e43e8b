package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
	"wealthmanager/internal/services"
)

// CashflowHandler handles cashflow transactions, categories and the
// monthly aggregations.
type CashflowHandler struct {
	cashflow *services.CashflowService
}

// NewCashflowHandler creates a new CashflowHandler.
func NewCashflowHandler(cashflow *services.CashflowService) *CashflowHandler {
	return &CashflowHandler{cashflow: cashflow}
}

type cashflowRequest struct {
	AccountID       *int64          `json:"account_id"`
	CategoryID      *int64          `json:"category_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate string          `json:"transaction_date"`
}

func (req *cashflowRequest) toModel(userID int64) (*models.CashflowTransaction, error) {
	date, err := time.Parse(dateOnly, req.TransactionDate)
	if err != nil {
		return nil, apperrors.ValidationField("transaction_date", "date must be YYYY-MM-DD")
	}
	return &models.CashflowTransaction{
		UserID:          userID,
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
	}, nil
}

// Create records a cashflow transaction.
func (h *CashflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req cashflowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	tx, err := req.toModel(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.cashflow.Record(tx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies a cashflow transaction.
func (h *CashflowHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req cashflowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	tx, err := req.toModel(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	tx.ID = id

	if err := h.cashflow.Update(user.ID, tx); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// Delete removes a cashflow transaction.
func (h *CashflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.cashflow.Delete(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// List returns a filtered, paginated page of transactions.
func (h *CashflowHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	filters := repository.CashflowFilters{
		Type: r.URL.Query().Get("type"),
	}
	if categoryID := int64(queryInt(r, "category_id", 0)); categoryID > 0 {
		filters.CategoryID = &categoryID
	}
	if accountID := int64(queryInt(r, "account_id", 0)); accountID > 0 {
		filters.AccountID = &accountID
	}
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if start, err := time.Parse(dateOnly, raw); err == nil {
			filters.StartDate = &start
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if end, err := time.Parse(dateOnly, raw); err == nil {
			filters.EndDate = &end
		}
	}
	p := repository.NewPagination(queryInt(r, "limit", 0), queryInt(r, "offset", 0))

	result, err := h.cashflow.List(user.ID, filters, p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Summary aggregates one month by category.
func (h *CashflowHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	now := time.Now().UTC()

	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		respondError(w, apperrors.ValidationField("month", "month must be between 1 and 12"))
		return
	}

	summary, err := h.cashflow.Summary(user.ID, year, time.Month(month))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Trend returns the monthly income/expense series.
func (h *CashflowHandler) Trend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	points, err := h.cashflow.Trend(user.ID, queryInt(r, "months", 6))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

type categoryRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id"`
}

// CreateCategory adds a user-owned category.
func (h *CashflowHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	category, err := h.cashflow.CreateCategory(&models.CashflowCategory{
		UserID:   &user.ID,
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes an unused user-owned category.
func (h *CashflowHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.cashflow.DeleteCategory(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Categories returns the category tree visible to the user.
func (h *CashflowHandler) Categories(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	tree, err := h.cashflow.CategoryTree(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}
