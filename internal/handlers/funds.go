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

// dateOnly is the wire format for calendar dates.
const dateOnly = "2006-01-02"

// FundHandler handles the fund catalog, fund transactions and holdings.
type FundHandler struct {
	fundRepo *repository.FundRepository
	txRepo   *repository.FundTransactionRepository
	holdings *services.HoldingService
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(
	fundRepo *repository.FundRepository,
	txRepo *repository.FundTransactionRepository,
	holdings *services.HoldingService,
) *FundHandler {
	return &FundHandler{
		fundRepo: fundRepo,
		txRepo:   txRepo,
		holdings: holdings,
	}
}

// Search finds funds by code or name fragment.
func (h *FundHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 20)

	funds, err := h.fundRepo.Search(keyword, limit)
	if err != nil {
		respondError(w, apperrors.Unavailable("searching funds", err))
		return
	}
	respondJSON(w, http.StatusOK, funds)
}

type fundRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Create adds a fund to the shared catalog.
func (h *FundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Code == "" || req.Name == "" {
		respondError(w, apperrors.Validation("fund code and name are required"))
		return
	}

	existing, err := h.fundRepo.GetByCode(req.Code)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading fund", err))
		return
	}
	if existing != nil {
		respondError(w, apperrors.Conflict("a fund with this code already exists"))
		return
	}

	fund := &models.Fund{Code: req.Code, Name: req.Name}
	id, err := h.fundRepo.Create(fund)
	if err != nil {
		respondError(w, apperrors.Unavailable("saving fund", err))
		return
	}
	fund.ID = id
	respondJSON(w, http.StatusCreated, fund)
}

type navRequest struct {
	NAV     decimal.Decimal `json:"nav"`
	NAVDate string          `json:"nav_date"`
}

// UpdateNAV records the fund's latest per-share value.
func (h *FundHandler) UpdateNAV(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req navRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if !req.NAV.IsPositive() {
		respondError(w, apperrors.ValidationField("nav", "nav must be positive"))
		return
	}
	navDate, err := time.Parse(dateOnly, req.NAVDate)
	if err != nil {
		respondError(w, apperrors.ValidationField("nav_date", "date must be YYYY-MM-DD"))
		return
	}

	fund, err := h.fundRepo.GetByID(id)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading fund", err))
		return
	}
	if fund == nil {
		respondError(w, apperrors.NotFound("fund"))
		return
	}

	if err := h.fundRepo.UpdateNAV(id, req.NAV, navDate); err != nil {
		respondError(w, apperrors.Unavailable("saving fund", err))
		return
	}
	fund.NAV = &req.NAV
	fund.NAVDate = &navDate
	respondJSON(w, http.StatusOK, fund)
}

type fundTransactionRequest struct {
	FundID          int64            `json:"fund_id"`
	AccountID       *int64           `json:"account_id"`
	Type            string           `json:"type"`
	Shares          *decimal.Decimal `json:"shares"`
	NAV             *decimal.Decimal `json:"nav"`
	Amount          decimal.Decimal  `json:"amount"`
	Fee             decimal.Decimal  `json:"fee"`
	TransactionDate string           `json:"transaction_date"`
	Notes           string           `json:"notes"`
}

// RecordTransaction appends one fund transaction and returns the stored
// entry.
func (h *FundHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req fundTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	date, err := time.Parse(dateOnly, req.TransactionDate)
	if err != nil {
		respondError(w, apperrors.ValidationField("transaction_date", "date must be YYYY-MM-DD"))
		return
	}

	tx, err := h.holdings.RecordTransaction(user.ID, &services.FundTransactionInput{
		FundID:          req.FundID,
		AccountID:       req.AccountID,
		Type:            req.Type,
		Shares:          req.Shares,
		NAV:             req.NAV,
		Amount:          req.Amount,
		Fee:             req.Fee,
		TransactionDate: date,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

// ListTransactions returns the user's fund transactions, optionally
// filtered.
func (h *FundHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	filters := repository.FundTransactionFilters{
		Type: r.URL.Query().Get("type"),
	}
	if fundID := int64(queryInt(r, "fund_id", 0)); fundID > 0 {
		filters.FundID = &fundID
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

	transactions, err := h.txRepo.GetByUserID(user.ID, filters)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading fund transactions", err))
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

// DeleteTransaction removes a transaction and recomputes the holding.
func (h *FundHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.holdings.DeleteTransaction(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Returns computes performance for every holding of the user.
func (h *FundHandler) Returns(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	returns, err := h.holdings.Returns(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, returns)
}
