package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wealthmanager/internal/database"
	"wealthmanager/internal/models"
)

func setupFundTxTestDB(t *testing.T) (*FundTransactionRepository, int64, int64) {
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

	result, err = db.Exec(`
		INSERT INTO funds (code, name) VALUES (?, ?)
	`, "000001", "Test Fund")
	if err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	fundID, _ := result.LastInsertId()

	return NewFundTransactionRepository(db), userID, fundID
}

func createFundTx(t *testing.T, repo *FundTransactionRepository, userID, fundID int64, txType string, day int) int64 {
	t.Helper()
	shares := decimal.NewFromInt(10)
	id, err := repo.Create(&models.FundTransaction{
		UserID:          userID,
		FundID:          fundID,
		Type:            txType,
		Shares:          &shares,
		Amount:          decimal.NewFromInt(100),
		Fee:             decimal.Zero,
		TransactionDate: time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}
	return id
}

func TestFundTransactionRepository_GetForReplay_ChronologicalInsertionOrder(t *testing.T) {
	repo, userID, fundID := setupFundTxTestDB(t)

	// Inserted out of date order; two share a date.
	late := createFundTx(t, repo, userID, fundID, models.FundTxBuy, 20)
	early := createFundTx(t, repo, userID, fundID, models.FundTxBuy, 5)
	sameDay := createFundTx(t, repo, userID, fundID, models.FundTxSell, 20)

	history, err := repo.GetForReplay(userID, fundID, nil)
	if err != nil {
		t.Fatalf("GetForReplay() error = %v, want nil", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}

	got := []int64{history[0].ID, history[1].ID, history[2].ID}
	want := []int64{early, late, sameDay}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("replay order = %v, want %v (date ASC, insertion breaking ties)", got, want)
		}
	}
}

func TestFundTransactionRepository_GetForReplay_ScopedToHoldingLineage(t *testing.T) {
	repo, userID, fundID := setupFundTxTestDB(t)
	createFundTx(t, repo, userID, fundID, models.FundTxBuy, 5)

	history, err := repo.GetForReplay(userID+1, fundID, nil)
	if err != nil {
		t.Fatalf("GetForReplay() error = %v, want nil", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d for other user, want 0", len(history))
	}
}

func TestFundTransactionRepository_GetByUserID_Filters(t *testing.T) {
	repo, userID, fundID := setupFundTxTestDB(t)
	createFundTx(t, repo, userID, fundID, models.FundTxBuy, 5)
	createFundTx(t, repo, userID, fundID, models.FundTxSell, 10)
	createFundTx(t, repo, userID, fundID, models.FundTxBuy, 25)

	byType, err := repo.GetByUserID(userID, FundTransactionFilters{Type: models.FundTxSell})
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(byType) != 1 || byType[0].Type != models.FundTxSell {
		t.Errorf("type filter returned %d transactions, want 1 sell", len(byType))
	}

	start := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	byRange, err := repo.GetByUserID(userID, FundTransactionFilters{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(byRange) != 1 {
		t.Errorf("date range filter returned %d transactions, want 1", len(byRange))
	}
}

func TestFundTransactionRepository_GetByUserID_NewestFirst(t *testing.T) {
	repo, userID, fundID := setupFundTxTestDB(t)
	createFundTx(t, repo, userID, fundID, models.FundTxBuy, 5)
	newest := createFundTx(t, repo, userID, fundID, models.FundTxBuy, 25)

	transactions, err := repo.GetByUserID(userID, FundTransactionFilters{})
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("len(transactions) = %d, want 2", len(transactions))
	}
	if transactions[0].ID != newest {
		t.Errorf("first transaction ID = %d, want newest %d", transactions[0].ID, newest)
	}
}

func TestFundTransactionRepository_Delete_RemovesRow(t *testing.T) {
	repo, userID, fundID := setupFundTxTestDB(t)
	id := createFundTx(t, repo, userID, fundID, models.FundTxBuy, 5)

	if err := repo.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}

	tx, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if tx != nil {
		t.Error("GetByID() found transaction after Delete()")
	}
}

func TestFundTransactionRepository_Delete_MissingRow_Error(t *testing.T) {
	repo, _, _ := setupFundTxTestDB(t)

	if err := repo.Delete(99999); err == nil {
		t.Fatal("Delete() error = nil for missing transaction, want error")
	}
}
