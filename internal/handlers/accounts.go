package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// AccountHandler handles asset account routes.
type AccountHandler struct {
	accountRepo *repository.AccountRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountRepo *repository.AccountRepository) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo}
}

type accountRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Notes   string          `json:"notes"`
}

func (req *accountRequest) validate() error {
	if req.Name == "" {
		return apperrors.ValidationField("name", "account name is required")
	}
	for _, accountType := range models.AccountTypes {
		if req.Type == accountType {
			return nil
		}
	}
	return apperrors.ValidationField("type", "unknown account type")
}

// List returns the user's accounts, including inactive ones.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.accountRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, apperrors.Unavailable("loading accounts", err))
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

// Create adds a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	account := &models.AssetAccount{
		UserID:   user.ID,
		Name:     req.Name,
		Type:     req.Type,
		Balance:  req.Balance,
		IsActive: true,
		Notes:    req.Notes,
	}
	id, err := h.accountRepo.Create(account)
	if err != nil {
		respondError(w, apperrors.Unavailable("saving account", err))
		return
	}
	account.ID = id
	respondJSON(w, http.StatusCreated, account)
}

// Update modifies an existing account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.getOwned(r, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		accountRequest
		IsActive *bool `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	account.Name = req.Name
	account.Type = req.Type
	account.Balance = req.Balance
	account.Notes = req.Notes
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if err := h.accountRepo.Update(account); err != nil {
		respondError(w, apperrors.Unavailable("saving account", err))
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// UpdateBalance overwrites just the account balance.
func (h *AccountHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.getOwned(r, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.accountRepo.UpdateBalance(account.ID, req.Balance); err != nil {
		respondError(w, apperrors.Unavailable("saving account", err))
		return
	}
	account.Balance = req.Balance
	respondJSON(w, http.StatusOK, account)
}

// Delete removes an account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.getOwned(r, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.accountRepo.Delete(account.ID); err != nil {
		respondError(w, apperrors.Unavailable("deleting account", err))
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AccountHandler) getOwned(r *http.Request, userID int64) (*models.AssetAccount, error) {
	id, err := urlID(r, "id")
	if err != nil {
		return nil, err
	}
	account, err := h.accountRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Unavailable("loading account", err)
	}
	if account == nil || account.UserID != userID {
		return nil, apperrors.NotFound("account")
	}
	return account, nil
}
