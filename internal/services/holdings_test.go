package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

type holdingFixture struct {
	db      *database.DB
	service *HoldingService
	txRepo  *repository.FundTransactionRepository
	holding *repository.HoldingRepository
	userID  int64
	fundID  int64
}

func setupHoldingTest(t *testing.T) *holdingFixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	result, err := db.Exec(`
		INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?)
	`, "test@example.com", "hashedpassword", "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	userID, _ := result.LastInsertId()

	fundRepo := repository.NewFundRepository(db)
	fundID, err := fundRepo.Create(&models.Fund{Code: "000001", Name: "Test Growth Fund"})
	if err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}

	txRepo := repository.NewFundTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	return &holdingFixture{
		db:      db,
		service: NewHoldingService(fundRepo, txRepo, holdingRepo),
		txRepo:  txRepo,
		holding: holdingRepo,
		userID:  userID,
		fundID:  fundID,
	}
}

func buyInput(fundID int64, shares, amount, fee string, day int) *FundTransactionInput {
	return &FundTransactionInput{
		FundID:          fundID,
		Type:            models.FundTxBuy,
		Shares:          decPtr(shares),
		Amount:          dec(amount),
		Fee:             dec(fee),
		TransactionDate: time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func (f *holdingFixture) currentState(t *testing.T) HoldingState {
	t.Helper()
	holding, err := f.holding.Get(f.userID, f.fundID, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if holding == nil {
		return HoldingState{}
	}
	return HoldingState{Shares: holding.Shares, CostBasis: holding.CostBasis}
}

func TestHoldingService_RecordTransaction_Buy_CreatesHolding(t *testing.T) {
	f := setupHoldingTest(t)

	tx, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "10", 5))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v, want nil", err)
	}
	if tx.ID <= 0 {
		t.Error("RecordTransaction() returned transaction without ID")
	}

	state := f.currentState(t)
	if !state.Shares.Equal(dec("100")) || !state.CostBasis.Equal(dec("1010")) {
		t.Errorf("holding = %+v, want {100 1010}", state)
	}
}

func TestHoldingService_RecordTransaction_BuyThenSell_ReplaysState(t *testing.T) {
	f := setupHoldingTest(t)

	if _, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "10", 5)); err != nil {
		t.Fatalf("buy error = %v", err)
	}
	sell := &FundTransactionInput{
		FundID:          f.fundID,
		Type:            models.FundTxSell,
		Shares:          decPtr("40"),
		Amount:          dec("500"),
		TransactionDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	if _, err := f.service.RecordTransaction(f.userID, sell); err != nil {
		t.Fatalf("sell error = %v", err)
	}

	state := f.currentState(t)
	if !state.Shares.Equal(dec("60")) || !state.CostBasis.Equal(dec("606")) {
		t.Errorf("holding = %+v, want {60 606}", state)
	}
}

func TestHoldingService_RecordTransaction_OverSell_RejectedWithoutTrace(t *testing.T) {
	f := setupHoldingTest(t)

	if _, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "10", "100", "0", 5)); err != nil {
		t.Fatalf("buy error = %v", err)
	}

	sell := &FundTransactionInput{
		FundID:          f.fundID,
		Type:            models.FundTxSell,
		Shares:          decPtr("11"),
		Amount:          dec("120"),
		TransactionDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	_, err := f.service.RecordTransaction(f.userID, sell)
	if !apperrors.IsInsufficientShares(err) {
		t.Fatalf("RecordTransaction() error = %v, want insufficient shares", err)
	}

	// The rejected sell must not be persisted.
	history, err := f.txRepo.GetForReplay(f.userID, f.fundID, nil)
	if err != nil {
		t.Fatalf("GetForReplay() error = %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1 (rejected sell persisted)", len(history))
	}

	state := f.currentState(t)
	if !state.Shares.Equal(dec("10")) {
		t.Errorf("Shares = %s, want 10 unchanged", state.Shares)
	}
}

func TestHoldingService_RecordTransaction_BackdatedSell_ValidatedInDateOrder(t *testing.T) {
	f := setupHoldingTest(t)

	// Buy on the 10th; a sell dated the 5th precedes it in replay
	// order and must be rejected even though shares exist "now".
	if _, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "0", 10)); err != nil {
		t.Fatalf("buy error = %v", err)
	}

	sell := &FundTransactionInput{
		FundID:          f.fundID,
		Type:            models.FundTxSell,
		Shares:          decPtr("50"),
		Amount:          dec("600"),
		TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	_, err := f.service.RecordTransaction(f.userID, sell)
	if !apperrors.IsInsufficientShares(err) {
		t.Fatalf("RecordTransaction() error = %v, want insufficient shares for backdated sell", err)
	}
}

func TestHoldingService_RecordTransaction_UnknownFund_NotFound(t *testing.T) {
	f := setupHoldingTest(t)

	_, err := f.service.RecordTransaction(f.userID, buyInput(99999, "10", "100", "0", 5))
	if !apperrors.IsNotFound(err) {
		t.Fatalf("RecordTransaction() error = %v, want not found", err)
	}
}

func TestHoldingService_RecordTransaction_InvalidInput_Validation(t *testing.T) {
	f := setupHoldingTest(t)

	tests := []struct {
		name  string
		input *FundTransactionInput
	}{
		{"zero amount buy", buyInput(f.fundID, "10", "0", "0", 5)},
		{"negative fee", buyInput(f.fundID, "10", "100", "-1", 5)},
		{"buy without shares", &FundTransactionInput{
			FundID: f.fundID, Type: models.FundTxBuy, Amount: dec("100"),
			TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		}},
		{"unknown type", &FundTransactionInput{
			FundID: f.fundID, Type: "short", Amount: dec("100"),
			TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		}},
		{"missing date", &FundTransactionInput{
			FundID: f.fundID, Type: models.FundTxBuy, Shares: decPtr("10"), Amount: dec("100"),
		}},
	}
	for _, tc := range tests {
		if _, err := f.service.RecordTransaction(f.userID, tc.input); !apperrors.IsValidation(err) {
			t.Errorf("%s: error = %v, want validation error", tc.name, err)
		}
	}
}

func TestHoldingService_DeleteTransaction_RecomputesHolding(t *testing.T) {
	f := setupHoldingTest(t)

	if _, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "10", 5)); err != nil {
		t.Fatalf("first buy error = %v", err)
	}
	second, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "50", "600", "5", 10))
	if err != nil {
		t.Fatalf("second buy error = %v", err)
	}

	if err := f.service.DeleteTransaction(f.userID, second.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v, want nil", err)
	}

	state := f.currentState(t)
	if !state.Shares.Equal(dec("100")) || !state.CostBasis.Equal(dec("1010")) {
		t.Errorf("holding = %+v, want {100 1010} after delete", state)
	}
}

func TestHoldingService_DeleteTransaction_StrandsLaterSell_RejectedWithoutTrace(t *testing.T) {
	f := setupHoldingTest(t)

	// Deleting the buy would leave the sell with nothing to sell; the
	// delete must be rejected with the log and holding untouched.
	buy, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "0", 5))
	if err != nil {
		t.Fatalf("buy error = %v", err)
	}
	sell := &FundTransactionInput{
		FundID:          f.fundID,
		Type:            models.FundTxSell,
		Shares:          decPtr("50"),
		Amount:          dec("500"),
		TransactionDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	if _, err := f.service.RecordTransaction(f.userID, sell); err != nil {
		t.Fatalf("sell error = %v", err)
	}

	if err := f.service.DeleteTransaction(f.userID, buy.ID); !apperrors.IsInsufficientShares(err) {
		t.Fatalf("DeleteTransaction() error = %v, want insufficient shares", err)
	}

	history, err := f.txRepo.GetForReplay(f.userID, f.fundID, nil)
	if err != nil {
		t.Fatalf("GetForReplay() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2 (rejected delete removed a row)", len(history))
	}

	state := f.currentState(t)
	if !state.Shares.Equal(dec("50")) || !state.CostBasis.Equal(dec("500")) {
		t.Errorf("holding = %+v, want {50 500} unchanged", state)
	}
}

func TestHoldingService_DeleteTransaction_OtherUsersTransaction_NotFound(t *testing.T) {
	f := setupHoldingTest(t)

	tx, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "10", "100", "0", 5))
	if err != nil {
		t.Fatalf("buy error = %v", err)
	}

	if err := f.service.DeleteTransaction(f.userID+1, tx.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("DeleteTransaction() error = %v, want not found for foreign transaction", err)
	}
}

func TestHoldingService_Returns_UsesLatestNAV(t *testing.T) {
	f := setupHoldingTest(t)

	if _, err := f.service.RecordTransaction(f.userID, buyInput(f.fundID, "100", "1000", "0", 5)); err != nil {
		t.Fatalf("buy error = %v", err)
	}

	fundRepo := repository.NewFundRepository(f.db)
	navDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := fundRepo.UpdateNAV(f.fundID, decimal.NewFromFloat(12.5), navDate); err != nil {
		t.Fatalf("UpdateNAV() error = %v", err)
	}

	returns, err := f.service.Returns(f.userID)
	if err != nil {
		t.Fatalf("Returns() error = %v, want nil", err)
	}
	if len(returns) != 1 {
		t.Fatalf("len(returns) = %d, want 1", len(returns))
	}
	if !returns[0].CurrentValue.Equal(dec("1250")) {
		t.Errorf("CurrentValue = %s, want 1250", returns[0].CurrentValue)
	}
	if !returns[0].ProfitLoss.Equal(dec("250")) {
		t.Errorf("ProfitLoss = %s, want 250", returns[0].ProfitLoss)
	}
}
