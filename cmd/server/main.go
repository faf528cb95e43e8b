package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wealthmanager/internal/auth"
	"wealthmanager/internal/config"
	"wealthmanager/internal/database"
	"wealthmanager/internal/handlers"
	"wealthmanager/internal/middleware"
	"wealthmanager/internal/repository"
	"wealthmanager/internal/services"
)

// App holds the application dependencies.
type App struct {
	config          *config.Config
	db              *database.DB
	router          *chi.Mux
	sessionManager  *auth.SessionManager
	authMiddleware  *middleware.AuthMiddleware
	authHandler     *handlers.AuthHandler
	accountHandler  *handlers.AccountHandler
	fundHandler     *handlers.FundHandler
	cashflowHandler *handlers.CashflowHandler
	budgetHandler   *handlers.BudgetHandler
	goalHandler     *handlers.GoalHandler
	planHandler     *handlers.PlanHandler
	dashHandler     *handlers.DashboardHandler
	reminderHandler *handlers.ReminderHandler
}

func main() {
	cfg := config.New()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	fundRepo := repository.NewFundRepository(db)
	fundTxRepo := repository.NewFundTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	categoryRepo := repository.NewCashflowCategoryRepository(db)
	cashflowTxRepo := repository.NewCashflowTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	planRepo := repository.NewPlanRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	// Services
	sessionManager := auth.NewSessionManager(db)
	authService := auth.NewService(userRepo, sessionManager)
	holdingService := services.NewHoldingService(fundRepo, fundTxRepo, holdingRepo)
	netWorthService := services.NewNetWorthService(accountRepo, holdingRepo, fundRepo, snapshotRepo)
	cashflowService := services.NewCashflowService(cashflowTxRepo, categoryRepo, accountRepo)
	budgetService := services.NewBudgetService(budgetRepo, cashflowTxRepo, categoryRepo)
	goalService := services.NewGoalService(goalRepo)
	planService := services.NewPlanService(planRepo, fundRepo, holdingService, reminderRepo)
	dashboardService := services.NewDashboardService(netWorthService, cashflowService, holdingService, goalRepo, planRepo, cashflowTxRepo)

	app := &App{
		config:          cfg,
		db:              db,
		sessionManager:  sessionManager,
		authMiddleware:  middleware.NewAuthMiddleware(sessionManager, userRepo),
		authHandler:     handlers.NewAuthHandler(authService),
		accountHandler:  handlers.NewAccountHandler(accountRepo),
		fundHandler:     handlers.NewFundHandler(fundRepo, fundTxRepo, holdingService),
		cashflowHandler: handlers.NewCashflowHandler(cashflowService),
		budgetHandler:   handlers.NewBudgetHandler(budgetService),
		goalHandler:     handlers.NewGoalHandler(goalService),
		planHandler:     handlers.NewPlanHandler(planService),
		dashHandler:     handlers.NewDashboardHandler(dashboardService, netWorthService),
		reminderHandler: handlers.NewReminderHandler(reminderRepo),
	}
	app.setupRouter()

	// Expired sessions pile up otherwise.
	go app.cleanSessionsLoop()

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://%s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func (app *App) setupRouter() {
	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Compress(5))

	r.Use(middleware.SecurityHeaders)
	r.Use(app.authMiddleware.LoadUser)

	r.Get("/health", app.handleHealth)

	// Auth routes, rate limited against brute force
	r.Group(func(r chi.Router) {
		r.Use(middleware.LimitAuth)
		r.Post("/api/auth/register", app.authHandler.Register)
		r.Post("/api/auth/login", app.authHandler.Login)
	})

	// Protected API
	r.Group(func(r chi.Router) {
		r.Use(app.authMiddleware.RequireAuth)
		r.Use(middleware.LimitAPI)

		r.Post("/api/auth/logout", app.authHandler.Logout)
		r.Get("/api/auth/me", app.authHandler.Me)

		// Accounts
		r.Get("/api/accounts", app.accountHandler.List)
		r.Post("/api/accounts", app.accountHandler.Create)
		r.Put("/api/accounts/{id}", app.accountHandler.Update)
		r.Put("/api/accounts/{id}/balance", app.accountHandler.UpdateBalance)
		r.Delete("/api/accounts/{id}", app.accountHandler.Delete)

		// Fund catalog
		r.Get("/api/funds", app.fundHandler.Search)
		r.Post("/api/funds", app.fundHandler.Create)
		r.Put("/api/funds/{id}/nav", app.fundHandler.UpdateNAV)

		// Fund transactions and holdings
		r.Get("/api/fund-transactions", app.fundHandler.ListTransactions)
		r.Post("/api/fund-transactions", app.fundHandler.RecordTransaction)
		r.Delete("/api/fund-transactions/{id}", app.fundHandler.DeleteTransaction)
		r.Get("/api/holdings/returns", app.fundHandler.Returns)

		// Cashflow
		r.Get("/api/cashflow", app.cashflowHandler.List)
		r.Post("/api/cashflow", app.cashflowHandler.Create)
		r.Put("/api/cashflow/{id}", app.cashflowHandler.Update)
		r.Delete("/api/cashflow/{id}", app.cashflowHandler.Delete)
		r.Get("/api/cashflow/summary", app.cashflowHandler.Summary)
		r.Get("/api/cashflow/trend", app.cashflowHandler.Trend)
		r.Get("/api/categories", app.cashflowHandler.Categories)
		r.Post("/api/categories", app.cashflowHandler.CreateCategory)
		r.Delete("/api/categories/{id}", app.cashflowHandler.DeleteCategory)

		// Budgets
		r.Get("/api/budgets/status", app.budgetHandler.Statuses)
		r.Post("/api/budgets", app.budgetHandler.Create)
		r.Put("/api/budgets/{id}", app.budgetHandler.Update)
		r.Delete("/api/budgets/{id}", app.budgetHandler.Delete)

		// Goals
		r.Get("/api/goals", app.goalHandler.Progress)
		r.Post("/api/goals", app.goalHandler.Create)
		r.Put("/api/goals/{id}", app.goalHandler.Update)
		r.Put("/api/goals/{id}/progress", app.goalHandler.UpdateProgress)
		r.Post("/api/goals/{id}/complete", app.goalHandler.Complete)
		r.Post("/api/goals/{id}/cancel", app.goalHandler.Cancel)
		r.Delete("/api/goals/{id}", app.goalHandler.Delete)

		// Investment plans
		r.Get("/api/plans", app.planHandler.List)
		r.Post("/api/plans", app.planHandler.Create)
		r.Put("/api/plans/{id}", app.planHandler.Update)
		r.Put("/api/plans/{id}/active", app.planHandler.SetActive)
		r.Delete("/api/plans/{id}", app.planHandler.Delete)
		r.Post("/api/plans/run", app.planHandler.Run)

		// Dashboard and net worth
		r.Get("/api/dashboard", app.dashHandler.Summary)
		r.Get("/api/networth", app.dashHandler.NetWorth)
		r.Get("/api/networth/allocation", app.dashHandler.Allocation)
		r.Post("/api/networth/snapshots", app.dashHandler.Snapshot)
		r.Get("/api/networth/snapshots", app.dashHandler.History)

		// Reminders
		r.Get("/api/reminders", app.reminderHandler.List)
		r.Get("/api/reminders/upcoming", app.reminderHandler.Upcoming)
		r.Post("/api/reminders/{id}/read", app.reminderHandler.MarkRead)
		r.Post("/api/reminders/read-all", app.reminderHandler.MarkAllRead)
	})

	app.router = r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (app *App) cleanSessionsLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if count, err := app.sessionManager.CleanExpired(); err != nil {
			log.Printf("Error cleaning sessions: %v", err)
		} else if count > 0 {
			log.Printf("Cleaned %d expired sessions", count)
		}
	}
}
