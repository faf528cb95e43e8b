package services

import (
	"github.com/shopspring/decimal"

	"wealthmanager/internal/models"
)

// FundReturn is the computed performance of one holding against the
// fund's latest known NAV.
type FundReturn struct {
	HoldingID    int64           `json:"holding_id"`
	FundID       int64           `json:"fund_id"`
	FundCode     string          `json:"fund_code"`
	FundName     string          `json:"fund_name"`
	AccountID    *int64          `json:"account_id,omitempty"`
	Shares       decimal.Decimal `json:"shares"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	CurrentValue decimal.Decimal `json:"current_value"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	ReturnRate   decimal.Decimal `json:"return_rate"`
}

// ComputeReturn combines a holding with its fund's latest NAV. Pure
// function of its two inputs; safe to call repeatedly. NAV staleness is
// the caller's concern. A fund with no NAV yet values at zero.
func ComputeReturn(holding *models.FundHolding, fund *models.Fund) FundReturn {
	nav := decimal.Zero
	if fund.NAV != nil {
		nav = *fund.NAV
	}

	currentValue := holding.Shares.Mul(nav)
	profitLoss := currentValue.Sub(holding.CostBasis)

	// A zero-cost holding (e.g. pure reinvested dividends) reports 0%
	// rather than dividing by zero.
	returnRate := decimal.Zero
	if holding.CostBasis.IsPositive() {
		returnRate = profitLoss.Div(holding.CostBasis)
	}

	return FundReturn{
		HoldingID:    holding.ID,
		FundID:       fund.ID,
		FundCode:     fund.Code,
		FundName:     fund.Name,
		AccountID:    holding.AccountID,
		Shares:       holding.Shares,
		CostBasis:    holding.CostBasis,
		CurrentValue: currentValue,
		ProfitLoss:   profitLoss,
		ReturnRate:   returnRate,
	}
}
