package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

// NetWorth is the result of one net worth computation.
type NetWorth struct {
	TotalAssets      decimal.Decimal          `json:"total_assets"`
	TotalLiabilities decimal.Decimal          `json:"total_liabilities"`
	NetWorth         decimal.Decimal          `json:"net_worth"`
	Breakdown        models.NetWorthBreakdown `json:"breakdown"`
}

// AllocationSlice is one account type's share of total assets.
type AllocationSlice struct {
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// NetWorthService computes net worth across accounts and holdings and
// manages the snapshot history.
type NetWorthService struct {
	accountRepo  *repository.AccountRepository
	holdingRepo  *repository.HoldingRepository
	fundRepo     *repository.FundRepository
	snapshotRepo *repository.SnapshotRepository

	// Serializes CreateSnapshot so a snapshot always records exactly
	// the state it computed.
	snapshotMu sync.Mutex
}

// NewNetWorthService creates a new NetWorthService.
func NewNetWorthService(
	accountRepo *repository.AccountRepository,
	holdingRepo *repository.HoldingRepository,
	fundRepo *repository.FundRepository,
	snapshotRepo *repository.SnapshotRepository,
) *NetWorthService {
	return &NetWorthService{
		accountRepo:  accountRepo,
		holdingRepo:  holdingRepo,
		fundRepo:     fundRepo,
		snapshotRepo: snapshotRepo,
	}
}

// Compute aggregates active account balances and holding market values
// into a net worth figure with a per-account-type breakdown. Holdings
// linked to an account count under that account's type; unlinked
// holdings count as fund assets. Holdings of funds without a NAV
// contribute nothing.
func (s *NetWorthService) Compute(userID int64) (*NetWorth, error) {
	accounts, err := s.accountRepo.GetByUserIDActiveOnly(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading accounts", err)
	}

	breakdown := models.NetWorthBreakdown{}
	accountTypes := make(map[int64]string, len(accounts))
	for _, account := range accounts {
		breakdown = breakdown.Add(account.Type, account.Balance)
		accountTypes[account.ID] = account.Type
	}

	holdings, err := s.holdingRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading holdings", err)
	}
	for _, holding := range holdings {
		fund, err := s.fundRepo.GetByID(holding.FundID)
		if err != nil {
			return nil, apperrors.Unavailable("loading fund", err)
		}
		if fund == nil || fund.NAV == nil {
			continue
		}
		value := holding.Shares.Mul(*fund.NAV)

		bucket := models.AccountTypeFund
		if holding.AccountID != nil {
			if accountType, ok := accountTypes[*holding.AccountID]; ok {
				bucket = accountType
			}
		}
		breakdown = breakdown.Add(bucket, value)
	}

	totalAssets := breakdown.Total()
	totalLiabilities := decimal.Zero
	return &NetWorth{
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		NetWorth:         totalAssets.Sub(totalLiabilities),
		Breakdown:        breakdown,
	}, nil
}

// Allocation computes each account type's percentage of total assets.
// An empty portfolio yields zero percentages rather than an error.
func (s *NetWorthService) Allocation(userID int64) ([]AllocationSlice, error) {
	netWorth, err := s.Compute(userID)
	if err != nil {
		return nil, err
	}

	amounts := map[string]decimal.Decimal{
		models.AccountTypeBank:      netWorth.Breakdown.Bank,
		models.AccountTypeFund:      netWorth.Breakdown.Fund,
		models.AccountTypePension:   netWorth.Breakdown.Pension,
		models.AccountTypeInsurance: netWorth.Breakdown.Insurance,
		models.AccountTypeOther:     netWorth.Breakdown.Other,
	}

	hundred := decimal.NewFromInt(100)
	slices := make([]AllocationSlice, 0, len(models.AccountTypes))
	for _, accountType := range models.AccountTypes {
		amount := amounts[accountType]
		percentage := decimal.Zero
		if netWorth.TotalAssets.IsPositive() {
			percentage = amount.Div(netWorth.TotalAssets).Mul(hundred).Round(2)
		}
		slices = append(slices, AllocationSlice{
			Type:       accountType,
			Amount:     amount,
			Percentage: percentage,
		})
	}
	return slices, nil
}

// CreateSnapshot computes the current net worth and appends it to the
// snapshot history. Concurrent calls are serialized so every snapshot
// is internally consistent.
func (s *NetWorthService) CreateSnapshot(userID int64) (*models.NetWorthSnapshot, error) {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	netWorth, err := s.Compute(userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.NetWorthSnapshot{
		UserID:           userID,
		SnapshotDate:     time.Now().UTC(),
		TotalAssets:      netWorth.TotalAssets,
		TotalLiabilities: netWorth.TotalLiabilities,
		NetWorth:         netWorth.NetWorth,
		Breakdown:        netWorth.Breakdown,
	}
	id, err := s.snapshotRepo.Insert(snapshot)
	if err != nil {
		return nil, apperrors.Unavailable("saving snapshot", err)
	}
	snapshot.ID = id
	return snapshot, nil
}

// History returns the snapshots of the last N months, oldest first.
func (s *NetWorthService) History(userID int64, months int) ([]*models.NetWorthSnapshot, error) {
	snapshots, err := s.snapshotRepo.GetHistory(userID, months)
	if err != nil {
		return nil, apperrors.Unavailable("loading snapshot history", err)
	}
	return snapshots, nil
}

// Latest returns the newest snapshot, or nil when none exists.
func (s *NetWorthService) Latest(userID int64) (*models.NetWorthSnapshot, error) {
	snapshot, err := s.snapshotRepo.GetLatest(userID)
	if err != nil {
		return nil, apperrors.Unavailable("loading snapshot", err)
	}
	return snapshot, nil
}
