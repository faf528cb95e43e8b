// Package services contains the derived-calculation layer: every number
// shown to the user is computed here from raw ledger facts.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
)

// HoldingState is the running result of replaying a fund's transaction
// history: current shares and cost basis. The zero value is the state
// before the first transaction.
type HoldingState struct {
	Shares    decimal.Decimal
	CostBasis decimal.Decimal
}

// Apply applies one transaction to the state and returns the new state.
// For sells the realized gain (amount - removed cost - fee) is returned;
// it is reported to the caller but never persisted on the holding.
//
// Costing is weighted-average: a sell removes cost basis proportionally
// to the fraction of shares sold. A dividend with a share count is a
// reinvestment and adds those shares at zero incremental cost. A split
// carries the share delta produced by the split ratio.
//
// No rounding happens here; rounding mid-replay would compound error
// across long histories. Presentation code rounds.
func (s HoldingState) Apply(tx *models.FundTransaction) (HoldingState, decimal.Decimal, error) {
	realized := decimal.Zero

	switch tx.Type {
	case models.FundTxBuy:
		if err := validateTradeAmounts(tx); err != nil {
			return s, realized, err
		}
		if tx.Shares == nil || tx.Shares.LessThanOrEqual(decimal.Zero) {
			return s, realized, apperrors.ValidationField("shares", "buy requires a positive share count")
		}
		s.Shares = s.Shares.Add(*tx.Shares)
		// Fee is capitalized into cost.
		s.CostBasis = s.CostBasis.Add(tx.Amount).Add(tx.Fee)

	case models.FundTxSell:
		if err := validateTradeAmounts(tx); err != nil {
			return s, realized, err
		}
		if tx.Shares == nil || tx.Shares.LessThanOrEqual(decimal.Zero) {
			return s, realized, apperrors.ValidationField("shares", "sell requires a positive share count")
		}
		if tx.Shares.GreaterThan(s.Shares) {
			return s, realized, apperrors.InsufficientShares(fmt.Sprintf(
				"cannot sell %s shares, only %s held", tx.Shares, s.Shares))
		}
		// removed_cost = cost_basis * (shares sold / shares before)
		removed := s.CostBasis.Mul(tx.Shares.Div(s.Shares))
		realized = tx.Amount.Sub(removed).Sub(tx.Fee)
		s.Shares = s.Shares.Sub(*tx.Shares)
		s.CostBasis = s.CostBasis.Sub(removed)

	case models.FundTxDividend:
		// A cash dividend changes nothing here. A dividend carrying a
		// share count is a reinvestment: free shares, cost unchanged,
		// which lowers the effective average cost.
		if tx.Shares != nil {
			if tx.Shares.IsNegative() {
				return s, realized, apperrors.ValidationField("shares", "dividend share count cannot be negative")
			}
			s.Shares = s.Shares.Add(*tx.Shares)
		}

	case models.FundTxSplit:
		if tx.Shares == nil {
			return s, realized, apperrors.ValidationField("shares", "split requires a share delta")
		}
		s.Shares = s.Shares.Add(*tx.Shares)
		if s.Shares.IsNegative() {
			return s, realized, apperrors.ValidationField("shares", "split cannot reduce shares below zero")
		}

	default:
		return s, realized, apperrors.ValidationField("type", fmt.Sprintf("unknown fund transaction type %q", tx.Type))
	}

	return s, realized, nil
}

// ReplayHoldings replays a complete transaction history in order,
// starting from the zero state. The input must be sorted ascending by
// transaction date. A failing transaction aborts the replay; nothing is
// partially applied.
//
// This is always a full replay from the first transaction. Holdings are
// never incrementally patched, so a deleted or edited transaction can
// never leave stale state behind.
func ReplayHoldings(transactions []*models.FundTransaction) (HoldingState, error) {
	state := HoldingState{Shares: decimal.Zero, CostBasis: decimal.Zero}
	for _, tx := range transactions {
		next, _, err := state.Apply(tx)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// validateTradeAmounts rejects non-positive amounts and negative fees
// on buys and sells before they reach the ledger.
func validateTradeAmounts(tx *models.FundTransaction) error {
	if tx.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ValidationField("amount", "amount must be positive")
	}
	if tx.Fee.IsNegative() {
		return apperrors.ValidationField("fee", "fee cannot be negative")
	}
	return nil
}
