// Package models contains the domain models for the wealth manager.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts marshal as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Account types.
const (
	AccountTypeBank      = "bank"
	AccountTypeFund      = "fund"
	AccountTypePension   = "pension"
	AccountTypeInsurance = "insurance"
	AccountTypeOther     = "other"
)

// AccountTypes lists every valid account type, in breakdown order.
var AccountTypes = []string{
	AccountTypeBank,
	AccountTypeFund,
	AccountTypePension,
	AccountTypeInsurance,
	AccountTypeOther,
}

// Fund transaction types.
const (
	FundTxBuy      = "buy"
	FundTxSell     = "sell"
	FundTxDividend = "dividend"
	FundTxSplit    = "split"
)

// Cashflow transaction types.
const (
	CashflowIncome   = "income"
	CashflowExpense  = "expense"
	CashflowTransfer = "transfer"
)

// BudgetPeriodMonthly is the only supported budget period.
const BudgetPeriodMonthly = "monthly"

// Goal statuses.
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusCancelled = "cancelled"
)

// Investment plan frequencies.
const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// Reminder types.
const (
	ReminderTypeGoal       = "goal"
	ReminderTypeBudget     = "budget"
	ReminderTypeInvestment = "investment"
	ReminderTypeOther      = "other"
)

// User represents a registered user.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents a user session for authentication.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AssetAccount represents a financial account (bank, fund, pension, ...).
// The balance is edited explicitly by the user; the calculation engine
// only reads it.
type AssetAccount struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Fund is a global catalog entry identified by its unique code.
// NAV is the latest known value per share; there is no NAV history.
type Fund struct {
	ID        int64            `json:"id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	NAV       *decimal.Decimal `json:"nav,omitempty"`
	NAVDate   *time.Time       `json:"nav_date,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FundHolding is the materialized state of replaying a fund's
// transaction history: current shares and cost basis.
// One holding per (user, fund, account) combination.
type FundHolding struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	FundID    int64           `json:"fund_id"`
	AccountID *int64          `json:"account_id,omitempty"`
	Shares    decimal.Decimal `json:"shares"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FundTransaction is an immutable fund ledger entry.
// Shares and NAV are only meaningful for some types: buy/sell carry
// both, dividend optionally carries shares (reinvestment), split
// carries the share delta produced by the split ratio.
type FundTransaction struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	FundID          int64            `json:"fund_id"`
	AccountID       *int64           `json:"account_id,omitempty"`
	Type            string           `json:"type"`
	Shares          *decimal.Decimal `json:"shares,omitempty"`
	NAV             *decimal.Decimal `json:"nav,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Fee             decimal.Decimal  `json:"fee"`
	TransactionDate time.Time        `json:"transaction_date"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CashflowCategory is an income or expense category. System categories
// are shared and immutable; user categories are private and deletable
// only when unused. One level of nesting via ParentID.
type CashflowCategory struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"` // nil for system categories
	Name      string    `json:"name"`
	Type      string    `json:"type"` // income or expense
	ParentID  *int64    `json:"parent_id,omitempty"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`

	Children []*CashflowCategory `json:"children,omitempty"`
}

// CashflowTransaction is an income/expense/transfer entry.
type CashflowTransaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	AccountID       *int64          `json:"account_id,omitempty"`
	CategoryID      *int64          `json:"category_id,omitempty"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Budget is a monthly spending limit, either for one expense category
// or for all expenses when CategoryID is nil.
type Budget struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	CategoryID     *int64          `json:"category_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"` // always "monthly"
	AlertThreshold float64         `json:"alert_threshold"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FinancialGoal is a savings target. CurrentAmount changes only by
// explicit user action, never by the engine.
type FinancialGoal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Status        string          `json:"status"`
	Priority      int             `json:"priority"` // 1 (highest) to 5
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvestmentPlan is a recurring contribution schedule for a fund.
// DayOfMonth is used iff frequency is monthly; DayOfWeek iff weekly or
// biweekly. NextDate is the anchor the scheduler advances.
type InvestmentPlan struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	FundID     int64           `json:"fund_id"`
	AccountID  *int64          `json:"account_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  string          `json:"frequency"`
	DayOfMonth int             `json:"day_of_month,omitempty"` // 1-31
	DayOfWeek  int             `json:"day_of_week,omitempty"`  // 0 (Sunday) - 6
	NextDate   time.Time       `json:"next_date"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NetWorthBreakdown splits total assets by account type.
type NetWorthBreakdown struct {
	Bank      decimal.Decimal `json:"bank"`
	Fund      decimal.Decimal `json:"fund"`
	Pension   decimal.Decimal `json:"pension"`
	Insurance decimal.Decimal `json:"insurance"`
	Other     decimal.Decimal `json:"other"`
}

// Total sums every bucket of the breakdown.
func (b NetWorthBreakdown) Total() decimal.Decimal {
	return b.Bank.Add(b.Fund).Add(b.Pension).Add(b.Insurance).Add(b.Other)
}

// Add returns a copy of the breakdown with amount added to the bucket
// for the given account type. Unknown types land in the other bucket.
func (b NetWorthBreakdown) Add(accountType string, amount decimal.Decimal) NetWorthBreakdown {
	switch accountType {
	case AccountTypeBank:
		b.Bank = b.Bank.Add(amount)
	case AccountTypeFund:
		b.Fund = b.Fund.Add(amount)
	case AccountTypePension:
		b.Pension = b.Pension.Add(amount)
	case AccountTypeInsurance:
		b.Insurance = b.Insurance.Add(amount)
	default:
		b.Other = b.Other.Add(amount)
	}
	return b
}

// NetWorthSnapshot is an immutable, dated record of computed net worth.
// Append-only; never updated in place.
type NetWorthSnapshot struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	SnapshotDate     time.Time         `json:"snapshot_date"`
	TotalAssets      decimal.Decimal   `json:"total_assets"`
	TotalLiabilities decimal.Decimal   `json:"total_liabilities"`
	NetWorth         decimal.Decimal   `json:"net_worth"`
	Breakdown        NetWorthBreakdown `json:"breakdown"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Reminder is produced at the boundary and consumed by an external
// notifier; the engine only stores and queries it.
type Reminder struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	RemindAt    time.Time `json:"remind_at"`
	Type        string    `json:"type"`
	ReferenceID *int64    `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
