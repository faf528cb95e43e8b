package services

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// DashboardSummary is the aggregate view shown on the landing page.
type DashboardSummary struct {
	NetWorth           *NetWorth                     `json:"net_worth"`
	Month              *MonthlySummary               `json:"month"`
	Investments        InvestmentOverview            `json:"investments"`
	Goals              GoalOverview                  `json:"goals"`
	UpcomingPlans      []*models.InvestmentPlan      `json:"upcoming_plans"`
	RecentTransactions []*models.CashflowTransaction `json:"recent_transactions"`
}

// InvestmentOverview sums the portfolio across every holding.
type InvestmentOverview struct {
	TotalCost    decimal.Decimal `json:"total_cost"`
	CurrentValue decimal.Decimal `json:"current_value"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	ReturnRate   decimal.Decimal `json:"return_rate"`
	HoldingCount int             `json:"holding_count"`
}

// GoalOverview counts goals by state and surfaces the nearest deadline.
type GoalOverview struct {
	Active          int        `json:"active"`
	Completed       int        `json:"completed"`
	NearestDeadline *time.Time `json:"nearest_deadline,omitempty"`
}

// DashboardService composes the other services into one summary.
type DashboardService struct {
	netWorth *NetWorthService
	cashflow *CashflowService
	holdings *HoldingService
	goalRepo *repository.GoalRepository
	planRepo *repository.PlanRepository
	txRepo   *repository.CashflowTransactionRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	netWorth *NetWorthService,
	cashflow *CashflowService,
	holdings *HoldingService,
	goalRepo *repository.GoalRepository,
	planRepo *repository.PlanRepository,
	txRepo *repository.CashflowTransactionRepository,
) *DashboardService {
	return &DashboardService{
		netWorth: netWorth,
		cashflow: cashflow,
		holdings: holdings,
		goalRepo: goalRepo,
		planRepo: planRepo,
		txRepo:   txRepo,
	}
}

// Summary builds the dashboard for the current month.
func (s *DashboardService) Summary(userID int64) (*DashboardSummary, error) {
	now := time.Now().UTC()

	netWorth, err := s.netWorth.Compute(userID)
	if err != nil {
		return nil, err
	}

	month, err := s.cashflow.Summary(userID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	returns, err := s.holdings.Returns(userID)
	if err != nil {
		return nil, err
	}
	investments := InvestmentOverview{HoldingCount: len(returns)}
	for _, ret := range returns {
		investments.TotalCost = investments.TotalCost.Add(ret.CostBasis)
		investments.CurrentValue = investments.CurrentValue.Add(ret.CurrentValue)
	}
	investments.ProfitLoss = investments.CurrentValue.Sub(investments.TotalCost)
	if investments.TotalCost.IsPositive() {
		investments.ReturnRate = investments.ProfitLoss.Div(investments.TotalCost).Round(6)
	}

	goals, err := s.goalRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading goals", err)
	}
	goalOverview := GoalOverview{}
	for _, goal := range goals {
		switch goal.Status {
		case models.GoalStatusActive:
			goalOverview.Active++
			if goal.Deadline != nil &&
				(goalOverview.NearestDeadline == nil || goal.Deadline.Before(*goalOverview.NearestDeadline)) {
				goalOverview.NearestDeadline = goal.Deadline
			}
		case models.GoalStatusCompleted:
			goalOverview.Completed++
		}
	}

	plans, err := s.planRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading plans", err)
	}
	if len(plans) > 5 {
		plans = plans[:5]
	}

	recent, err := s.txRepo.GetRecent(userID, 10)
	if err != nil {
		return nil, apperrors.Unavailable("loading transactions", err)
	}

	return &DashboardSummary{
		NetWorth:           netWorth,
		Month:              month,
		Investments:        investments,
		Goals:              goalOverview,
		UpcomingPlans:      plans,
		RecentTransactions: recent,
	}, nil
}
