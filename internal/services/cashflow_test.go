package services

import (
	"path/filepath"
	"testing"
	"time"

	"wealthmanager/internal/database"
	apperrors "wealthmanager/internal/errors"
	"wealthmanager/internal/models"
	"wealthmanager/internal/repository"
)

type cashflowFixture struct {
	db         *database.DB
	service    *CashflowService
	categories *repository.CashflowCategoryRepository
	userID     int64
}

func setupCashflowTest(t *testing.T) *cashflowFixture {
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

	txRepo := repository.NewCashflowTransactionRepository(db)
	categoryRepo := repository.NewCashflowCategoryRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	return &cashflowFixture{
		db:         db,
		service:    NewCashflowService(txRepo, categoryRepo, accountRepo),
		categories: categoryRepo,
		userID:     userID,
	}
}

// systemCategory finds a seeded system category by name.
func (f *cashflowFixture) systemCategory(t *testing.T, name string) *models.CashflowCategory {
	t.Helper()
	categories, err := f.categories.GetVisibleToUser(f.userID)
	if err != nil {
		t.Fatalf("GetVisibleToUser() error = %v", err)
	}
	for _, c := range categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("system category %q not seeded", name)
	return nil
}

func (f *cashflowFixture) record(t *testing.T, txType string, amount string, categoryID *int64, date time.Time) *models.CashflowTransaction {
	t.Helper()
	tx, err := f.service.Record(&models.CashflowTransaction{
		UserID:          f.userID,
		CategoryID:      categoryID,
		Type:            txType,
		Amount:          dec(amount),
		TransactionDate: date,
	})
	if err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}
	return tx
}

func TestCashflowService_Record_InvalidInput_Validation(t *testing.T) {
	f := setupCashflowTest(t)
	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tx   *models.CashflowTransaction
	}{
		{"unknown type", &models.CashflowTransaction{
			UserID: f.userID, Type: "refund", Amount: dec("100"), TransactionDate: march,
		}},
		{"zero amount", &models.CashflowTransaction{
			UserID: f.userID, Type: models.CashflowExpense, Amount: dec("0"), TransactionDate: march,
		}},
		{"missing date", &models.CashflowTransaction{
			UserID: f.userID, Type: models.CashflowExpense, Amount: dec("100"),
		}},
	}
	for _, tc := range tests {
		if _, err := f.service.Record(tc.tx); !apperrors.IsValidation(err) {
			t.Errorf("%s: Record() error = %v, want validation error", tc.name, err)
		}
	}
}

func TestCashflowService_Record_CategoryTypeMismatch_Rejected(t *testing.T) {
	f := setupCashflowTest(t)
	salary := f.systemCategory(t, "salary")

	_, err := f.service.Record(&models.CashflowTransaction{
		UserID:          f.userID,
		CategoryID:      &salary.ID,
		Type:            models.CashflowExpense,
		Amount:          dec("100"),
		TransactionDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Record() error = %v, want validation error for income category on expense", err)
	}
}

func TestCashflowService_Summary_GroupsByCategoryExcludingTransfers(t *testing.T) {
	f := setupCashflowTest(t)
	salary := f.systemCategory(t, "salary")
	food := f.systemCategory(t, "food")
	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	f.record(t, models.CashflowIncome, "30000", &salary.ID, march)
	f.record(t, models.CashflowExpense, "1200", &food.ID, march)
	f.record(t, models.CashflowExpense, "800", &food.ID, march)
	f.record(t, models.CashflowExpense, "50", nil, march)
	f.record(t, models.CashflowTransfer, "5000", nil, march)
	// A different month must not leak in.
	f.record(t, models.CashflowExpense, "999", &food.ID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	summary, err := f.service.Summary(f.userID, 2025, time.March)
	if err != nil {
		t.Fatalf("Summary() error = %v, want nil", err)
	}
	if !summary.TotalIncome.Equal(dec("30000")) {
		t.Errorf("TotalIncome = %s, want 30000", summary.TotalIncome)
	}
	if !summary.TotalExpense.Equal(dec("2050")) {
		t.Errorf("TotalExpense = %s, want 2050 (transfer or other month counted)", summary.TotalExpense)
	}
	if !summary.Net.Equal(dec("27950")) {
		t.Errorf("Net = %s, want 27950", summary.Net)
	}
	if !summary.ByExpense["food"].Equal(dec("2000")) {
		t.Errorf("ByExpense[food] = %s, want 2000", summary.ByExpense["food"])
	}
	if !summary.ByExpense["uncategorized"].Equal(dec("50")) {
		t.Errorf("ByExpense[uncategorized] = %s, want 50", summary.ByExpense["uncategorized"])
	}
}

func TestCashflowService_List_PaginatesWithTotal(t *testing.T) {
	f := setupCashflowTest(t)
	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.record(t, models.CashflowExpense, "10", nil, march.AddDate(0, 0, i))
	}

	page, err := f.service.List(f.userID, repository.CashflowFilters{}, repository.NewPagination(2, 0))
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(page.Items))
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
}

func TestCashflowService_Update_OtherUsersTransaction_NotFound(t *testing.T) {
	f := setupCashflowTest(t)
	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tx := f.record(t, models.CashflowExpense, "100", nil, march)

	tx.Amount = dec("200")
	if err := f.service.Update(f.userID+1, tx); !apperrors.IsNotFound(err) {
		t.Fatalf("Update() error = %v, want not found for foreign transaction", err)
	}
}

func TestCashflowService_CreateCategory_GrandchildRejected(t *testing.T) {
	f := setupCashflowTest(t)

	parent, err := f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "hobbies", Type: models.CashflowExpense,
	})
	if err != nil {
		t.Fatalf("CreateCategory() parent error = %v, want nil", err)
	}
	child, err := f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "climbing", Type: models.CashflowExpense, ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("CreateCategory() child error = %v, want nil", err)
	}

	_, err = f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "bouldering", Type: models.CashflowExpense, ParentID: &child.ID,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("CreateCategory() error = %v, want validation error for grandchild", err)
	}
}

func TestCashflowService_CreateCategory_ParentTypeMismatch_Rejected(t *testing.T) {
	f := setupCashflowTest(t)

	parent, err := f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "side gigs", Type: models.CashflowIncome,
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v, want nil", err)
	}

	_, err = f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "equipment", Type: models.CashflowExpense, ParentID: &parent.ID,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("CreateCategory() error = %v, want validation error for type mismatch", err)
	}
}

func TestCashflowService_DeleteCategory_SystemCategory_NotFound(t *testing.T) {
	f := setupCashflowTest(t)
	food := f.systemCategory(t, "food")

	if err := f.service.DeleteCategory(f.userID, food.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("DeleteCategory() error = %v, want not found for system category", err)
	}
}

func TestCashflowService_DeleteCategory_ReferencedCategory_Conflict(t *testing.T) {
	f := setupCashflowTest(t)
	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	category, err := f.service.CreateCategory(&models.CashflowCategory{
		UserID: &f.userID, Name: "travel", Type: models.CashflowExpense,
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v, want nil", err)
	}
	f.record(t, models.CashflowExpense, "500", &category.ID, march)

	if err := f.service.DeleteCategory(f.userID, category.ID); !apperrors.IsConflict(err) {
		t.Fatalf("DeleteCategory() error = %v, want conflict for referenced category", err)
	}
}
