package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// FundTransactionInput is the command to record one fund transaction.
// Shares and NAV are only meaningful for some types; Validate enforces
// the per-type rules before anything touches the ledger.
type FundTransactionInput struct {
	FundID          int64
	AccountID       *int64
	Type            string
	Shares          *decimal.Decimal
	NAV             *decimal.Decimal
	Amount          decimal.Decimal
	Fee             decimal.Decimal
	TransactionDate time.Time
	Notes           string
}

// Validate checks the input against the per-type field rules.
func (in *FundTransactionInput) Validate() error {
	switch in.Type {
	case models.FundTxBuy, models.FundTxSell:
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return apperrors.ValidationField("amount", "amount must be positive")
		}
		if in.Fee.IsNegative() {
			return apperrors.ValidationField("fee", "fee cannot be negative")
		}
		if in.Shares == nil || in.Shares.LessThanOrEqual(decimal.Zero) {
			return apperrors.ValidationField("shares", fmt.Sprintf("%s requires a positive share count", in.Type))
		}
		if in.NAV != nil && in.NAV.LessThanOrEqual(decimal.Zero) {
			return apperrors.ValidationField("nav", "nav must be positive")
		}
	case models.FundTxDividend:
		if in.Amount.IsNegative() {
			return apperrors.ValidationField("amount", "amount cannot be negative")
		}
		if in.Shares != nil && in.Shares.IsNegative() {
			return apperrors.ValidationField("shares", "reinvested share count cannot be negative")
		}
	case models.FundTxSplit:
		if in.Shares == nil {
			return apperrors.ValidationField("shares", "split requires a share delta")
		}
	default:
		return apperrors.ValidationField("type", fmt.Sprintf("unknown fund transaction type %q", in.Type))
	}
	if in.TransactionDate.IsZero() {
		return apperrors.ValidationField("transaction_date", "transaction date is required")
	}
	return nil
}

// HoldingService records fund transactions and keeps holdings equal to
// the replay of their fund's non-deleted transaction log.
type HoldingService struct {
	fundRepo    *repository.FundRepository
	txRepo      *repository.FundTransactionRepository
	holdingRepo *repository.HoldingRepository
}

// NewHoldingService creates a new HoldingService.
func NewHoldingService(
	fundRepo *repository.FundRepository,
	txRepo *repository.FundTransactionRepository,
	holdingRepo *repository.HoldingRepository,
) *HoldingService {
	return &HoldingService{
		fundRepo:    fundRepo,
		txRepo:      txRepo,
		holdingRepo: holdingRepo,
	}
}

// RecordTransaction validates the input, checks that the resulting
// replay stays legal (a sell never exceeds held shares), then persists
// the transaction and the replayed holding state. The replay is checked
// before the insert so a rejected transaction leaves no trace.
func (s *HoldingService) RecordTransaction(userID int64, in *FundTransactionInput) (*models.FundTransaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fund, err := s.fundRepo.GetByID(in.FundID)
	if err != nil {
		return nil, apperrors.Unavailable("loading fund", err)
	}
	if fund == nil {
		return nil, apperrors.NotFound("fund")
	}

	tx := &models.FundTransaction{
		UserID:          userID,
		FundID:          in.FundID,
		AccountID:       in.AccountID,
		Type:            in.Type,
		Shares:          in.Shares,
		NAV:             in.NAV,
		Amount:          in.Amount,
		Fee:             in.Fee,
		TransactionDate: in.TransactionDate,
		Notes:           in.Notes,
	}

	history, err := s.txRepo.GetForReplay(userID, in.FundID, in.AccountID)
	if err != nil {
		return nil, apperrors.Unavailable("loading fund transactions", err)
	}
	state, err := ReplayHoldings(insertChronological(history, tx))
	if err != nil {
		return nil, err
	}

	id, err := s.txRepo.Create(tx)
	if err != nil {
		return nil, apperrors.Unavailable("saving fund transaction", err)
	}
	tx.ID = id

	if err := s.storeHolding(userID, in.FundID, in.AccountID, state); err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction and recomputes the holding by
// replaying the remaining history for that fund. The replay is checked
// before the row is removed, so a delete that would strand a later sell
// is rejected and leaves the log and holding untouched.
func (s *HoldingService) DeleteTransaction(userID, txID int64) error {
	tx, err := s.txRepo.GetByID(txID)
	if err != nil {
		return apperrors.Unavailable("loading fund transaction", err)
	}
	if tx == nil || tx.UserID != userID {
		return apperrors.NotFound("fund transaction")
	}

	history, err := s.txRepo.GetForReplay(userID, tx.FundID, tx.AccountID)
	if err != nil {
		return apperrors.Unavailable("loading fund transactions", err)
	}
	state, err := ReplayHoldings(withoutTransaction(history, txID))
	if err != nil {
		return err
	}

	if err := s.txRepo.Delete(txID); err != nil {
		return apperrors.Unavailable("deleting fund transaction", err)
	}
	return s.storeHolding(userID, tx.FundID, tx.AccountID, state)
}

// RecomputeHolding replays the full history for one holding lineage and
// persists the result. Used to repair any drift wholesale.
func (s *HoldingService) RecomputeHolding(userID, fundID int64, accountID *int64) (HoldingState, error) {
	history, err := s.txRepo.GetForReplay(userID, fundID, accountID)
	if err != nil {
		return HoldingState{}, apperrors.Unavailable("loading fund transactions", err)
	}
	state, err := ReplayHoldings(history)
	if err != nil {
		return state, err
	}
	return state, s.storeHolding(userID, fundID, accountID, state)
}

// Returns computes the performance of every holding of a user.
func (s *HoldingService) Returns(userID int64) ([]FundReturn, error) {
	holdings, err := s.holdingRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading holdings", err)
	}

	returns := make([]FundReturn, 0, len(holdings))
	for _, holding := range holdings {
		fund, err := s.fundRepo.GetByID(holding.FundID)
		if err != nil {
			return nil, apperrors.Unavailable("loading fund", err)
		}
		if fund == nil {
			return nil, apperrors.NotFoundf("fund %d referenced by holding %d not found", holding.FundID, holding.ID)
		}
		returns = append(returns, ComputeReturn(holding, fund))
	}
	return returns, nil
}

func (s *HoldingService) storeHolding(userID, fundID int64, accountID *int64, state HoldingState) error {
	_, err := s.holdingRepo.Upsert(&models.FundHolding{
		UserID:    userID,
		FundID:    fundID,
		AccountID: accountID,
		Shares:    state.Shares,
		CostBasis: state.CostBasis,
	})
	if err != nil {
		return apperrors.Unavailable("saving holding", err)
	}
	return nil
}

// withoutTransaction returns the history minus the transaction with the
// given ID, preserving order.
func withoutTransaction(history []*models.FundTransaction, txID int64) []*models.FundTransaction {
	remaining := make([]*models.FundTransaction, 0, len(history))
	for _, tx := range history {
		if tx.ID != txID {
			remaining = append(remaining, tx)
		}
	}
	return remaining
}

// insertChronological returns the history with tx placed in date order,
// after any existing transaction on the same date.
func insertChronological(history []*models.FundTransaction, tx *models.FundTransaction) []*models.FundTransaction {
	merged := make([]*models.FundTransaction, 0, len(history)+1)
	inserted := false
	for _, existing := range history {
		if !inserted && existing.TransactionDate.After(tx.TransactionDate) {
			merged = append(merged, tx)
			inserted = true
		}
		merged = append(merged, existing)
	}
	if !inserted {
		merged = append(merged, tx)
	}
	return merged
}
