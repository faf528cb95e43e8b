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

type planFixture struct {
	db        *database.DB
	service   *PlanService
	plans     *repository.PlanRepository
	funds     *repository.FundRepository
	holdings  *repository.HoldingRepository
	reminders *repository.ReminderRepository
	userID    int64
	fundID    int64
}

func setupPlanTest(t *testing.T) *planFixture {
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
	fundID, err := fundRepo.Create(&models.Fund{Code: "000001", Name: "Test Index Fund"})
	if err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	navDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := fundRepo.UpdateNAV(fundID, dec("10"), navDate); err != nil {
		t.Fatalf("failed to set NAV: %v", err)
	}

	planRepo := repository.NewPlanRepository(db)
	txRepo := repository.NewFundTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	holdingService := NewHoldingService(fundRepo, txRepo, holdingRepo)

	return &planFixture{
		db:        db,
		service:   NewPlanService(planRepo, fundRepo, holdingService, reminderRepo),
		plans:     planRepo,
		funds:     fundRepo,
		holdings:  holdingRepo,
		reminders: reminderRepo,
		userID:    userID,
		fundID:    fundID,
	}
}

func (f *planFixture) createMonthlyPlan(t *testing.T, amount string, dayOfMonth int) *models.InvestmentPlan {
	t.Helper()
	plan, err := f.service.Create(&models.InvestmentPlan{
		UserID:     f.userID,
		FundID:     f.fundID,
		Amount:     dec(amount),
		Frequency:  models.FrequencyMonthly,
		DayOfMonth: dayOfMonth,
	})
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	return plan
}

// backdate forces a plan's next date into the past so it comes due.
func (f *planFixture) backdate(t *testing.T, planID int64, date time.Time) {
	t.Helper()
	if err := f.plans.UpdateNextDate(planID, date); err != nil {
		t.Fatalf("UpdateNextDate() error = %v", err)
	}
}

func TestPlanService_Create_SchedulesFirstRunInFuture(t *testing.T) {
	f := setupPlanTest(t)

	plan := f.createMonthlyPlan(t, "1000", 15)
	if !plan.IsActive {
		t.Error("Create() plan not active")
	}
	if !plan.NextDate.After(time.Now().UTC().AddDate(0, 0, -1)) {
		t.Errorf("NextDate = %s, want in the future", plan.NextDate)
	}
}

func TestPlanService_Create_InvalidPlan_Validation(t *testing.T) {
	f := setupPlanTest(t)

	tests := []struct {
		name string
		plan *models.InvestmentPlan
	}{
		{"zero amount", &models.InvestmentPlan{
			UserID: f.userID, FundID: f.fundID, Amount: dec("0"),
			Frequency: models.FrequencyMonthly, DayOfMonth: 15,
		}},
		{"day of month out of range", &models.InvestmentPlan{
			UserID: f.userID, FundID: f.fundID, Amount: dec("1000"),
			Frequency: models.FrequencyMonthly, DayOfMonth: 32,
		}},
		{"day of week out of range", &models.InvestmentPlan{
			UserID: f.userID, FundID: f.fundID, Amount: dec("1000"),
			Frequency: models.FrequencyWeekly, DayOfWeek: 7,
		}},
		{"unknown frequency", &models.InvestmentPlan{
			UserID: f.userID, FundID: f.fundID, Amount: dec("1000"),
			Frequency: "quarterly",
		}},
	}
	for _, tc := range tests {
		if _, err := f.service.Create(tc.plan); !apperrors.IsValidation(err) {
			t.Errorf("%s: Create() error = %v, want validation error", tc.name, err)
		}
	}
}

func TestPlanService_Create_UnknownFund_NotFound(t *testing.T) {
	f := setupPlanTest(t)

	_, err := f.service.Create(&models.InvestmentPlan{
		UserID: f.userID, FundID: 99999, Amount: dec("1000"),
		Frequency: models.FrequencyMonthly, DayOfMonth: 15,
	})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Create() error = %v, want not found", err)
	}
}

func TestPlanService_RunDuePlans_ExecutesPurchaseAndAdvances(t *testing.T) {
	f := setupPlanTest(t)
	plan := f.createMonthlyPlan(t, "1000", 15)
	f.backdate(t, plan.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

	today := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	results, err := f.service.RunDuePlans(f.userID, today)
	if err != nil {
		t.Fatalf("RunDuePlans() error = %v, want nil", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !results[0].Executed || results[0].Error != "" {
		t.Fatalf("result = %+v, want executed without error", results[0])
	}
	if !results[0].NextDate.After(today) {
		t.Errorf("NextDate = %s, want after %s", results[0].NextDate, today)
	}

	// 1000 at NAV 10 buys 100 shares.
	holding, err := f.holdings.Get(f.userID, f.fundID, nil)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if holding == nil || !holding.Shares.Equal(dec("100")) {
		t.Errorf("holding = %+v, want 100 shares", holding)
	}
	if !holding.CostBasis.Equal(dec("1000")) {
		t.Errorf("CostBasis = %s, want 1000", holding.CostBasis)
	}

	reminders, err := f.reminders.GetByUserID(f.userID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("len(reminders) = %d, want 1", len(reminders))
	}
	if reminders[0].Type != models.ReminderTypeInvestment {
		t.Errorf("reminder type = %q, want %q", reminders[0].Type, models.ReminderTypeInvestment)
	}
}

func TestPlanService_RunDuePlans_FundWithoutNAV_RecordsErrorButAdvances(t *testing.T) {
	f := setupPlanTest(t)

	staleID, err := f.funds.Create(&models.Fund{Code: "000002", Name: "Stale Fund"})
	if err != nil {
		t.Fatalf("Create() fund error = %v, want nil", err)
	}
	plan, err := f.service.Create(&models.InvestmentPlan{
		UserID: f.userID, FundID: staleID, Amount: dec("500"),
		Frequency: models.FrequencyMonthly, DayOfMonth: 1,
	})
	if err != nil {
		t.Fatalf("Create() plan error = %v, want nil", err)
	}
	f.backdate(t, plan.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	results, err := f.service.RunDuePlans(f.userID, today)
	if err != nil {
		t.Fatalf("RunDuePlans() error = %v, want nil", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Executed || results[0].Error == "" {
		t.Fatalf("result = %+v, want skipped with error", results[0])
	}
	if !results[0].NextDate.After(today) {
		t.Errorf("NextDate = %s, want advanced past %s despite error", results[0].NextDate, today)
	}

	holding, err := f.holdings.Get(f.userID, staleID, nil)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if holding != nil {
		t.Errorf("holding = %+v, want nil for skipped purchase", holding)
	}
}

func TestPlanService_RunDuePlans_InactivePlanNotRun(t *testing.T) {
	f := setupPlanTest(t)
	plan := f.createMonthlyPlan(t, "1000", 15)
	f.backdate(t, plan.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

	if err := f.service.SetActive(f.userID, plan.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v, want nil", err)
	}

	results, err := f.service.RunDuePlans(f.userID, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RunDuePlans() error = %v, want nil", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0 for paused plan", len(results))
	}
}

func TestPlanService_RunDuePlans_MissedPeriods_SingleCatchUpRun(t *testing.T) {
	f := setupPlanTest(t)
	plan := f.createMonthlyPlan(t, "1000", 15)
	// Three months overdue; one run executes once and lands in the future.
	f.backdate(t, plan.ID, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	today := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	results, err := f.service.RunDuePlans(f.userID, today)
	if err != nil {
		t.Fatalf("RunDuePlans() error = %v, want nil", err)
	}
	if len(results) != 1 || !results[0].Executed {
		t.Fatalf("results = %+v, want one executed run", results)
	}
	want := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	if !results[0].NextDate.Equal(want) {
		t.Errorf("NextDate = %s, want %s", results[0].NextDate, want)
	}
}

func TestPlanService_SetActive_ResumeReschedulesFromToday(t *testing.T) {
	f := setupPlanTest(t)
	plan := f.createMonthlyPlan(t, "1000", 15)
	f.backdate(t, plan.ID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	if err := f.service.SetActive(f.userID, plan.ID, false); err != nil {
		t.Fatalf("pause error = %v, want nil", err)
	}
	if err := f.service.SetActive(f.userID, plan.ID, true); err != nil {
		t.Fatalf("resume error = %v, want nil", err)
	}

	resumed, err := f.plans.GetByID(plan.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if !resumed.NextDate.After(time.Now().UTC()) {
		t.Errorf("NextDate = %s after resume, want in the future", resumed.NextDate)
	}
}

func TestPlanService_Delete_OtherUsersPlan_NotFound(t *testing.T) {
	f := setupPlanTest(t)
	plan := f.createMonthlyPlan(t, "1000", 15)

	if err := f.service.Delete(f.userID+1, plan.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("Delete() error = %v, want not found", err)
	}
}
