package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lendbook/lendbook-api/docs" // Swagger docs
	"github.com/lendbook/lendbook-api/internal/config"
	"github.com/lendbook/lendbook-api/internal/database"
	"github.com/lendbook/lendbook-api/internal/handlers"
	"github.com/lendbook/lendbook-api/internal/jobs"
	"github.com/lendbook/lendbook-api/internal/middleware"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/internal/services"
	"github.com/lendbook/lendbook-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title LendBook API
// @version 1.0
// @description REST API for the LendBook micro-lending ledger

// @contact.name API Support
// @contact.email support@lendbook.app

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)
	txm := repository.NewTxManager(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, txm, worker, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, worker)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Registration and password recovery (public)
		v1.POST("/users/register", h.User.Register)
		v1.POST("/users/send_recovery_code", h.User.SendRecoveryCode)
		v1.POST("/users/verify_recovery_code", h.User.VerifyRecoveryCode)
		v1.POST("/users/update_password_with_code", h.User.UpdatePasswordWithCode)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/health/worker", h.Health.WorkerStatus)

			// Profile
			protected.GET("/users/me", h.User.Me)
			protected.PUT("/users/me", h.User.Update)
			protected.PATCH("/users/change_password", h.User.ChangePassword)
			protected.GET("/users/business_name", h.User.GetBusinessName)
			protected.PUT("/users/business_name", h.User.SetBusinessName)

			// Groups
			groups := protected.Group("/groups")
			{
				groups.GET("", h.Group.Index)
				groups.POST("", h.Group.Create)
				groups.GET("/:group_id", h.Group.Show)
				groups.PUT("/:group_id", h.Group.Update)
				groups.DELETE("/:group_id", h.Group.Delete)
			}

			// Clients
			clients := protected.Group("/clients")
			{
				clients.GET("", h.Client.Index)
				clients.POST("", h.Client.Create)
				clients.GET("/:client_id", h.Client.Show)
				clients.PUT("/:client_id", h.Client.Update)
				clients.DELETE("/:client_id", h.Client.Delete)
			}

			// Loans
			loans := protected.Group("/loans")
			{
				loans.GET("", h.Loan.Index)
				loans.POST("", h.Loan.Create)
				// Static route first so "refresh" is not matched as :loan_id
				loans.POST("/refresh", h.Loan.RefreshAll)
				loans.GET("/:loan_id", h.Loan.Show)
				loans.PUT("/:loan_id", h.Loan.Update)
				loans.DELETE("/:loan_id", h.Loan.Delete)
				loans.GET("/:loan_id/summary", h.Loan.Summary)
				loans.GET("/:loan_id/interest_entries", h.Loan.InterestEntries)
				loans.POST("/:loan_id/refresh", h.Loan.Refresh)
				loans.GET("/:loan_id/payments", h.Payment.IndexByLoan)
			}

			// Payments
			payments := protected.Group("/payments")
			{
				payments.GET("", h.Payment.Index)
				payments.POST("", h.Payment.Create)
				payments.GET("/:payment_id", h.Payment.Show)
			}

			// Dashboard and reports
			protected.GET("/dashboard", h.Loan.Dashboard)
			reports := protected.Group("/reports")
			{
				reports.GET("/monthly", h.Report.MonthlyOverview)
				reports.GET("/loan_book", h.Report.LoanBook)
				reports.GET("/loans.csv", h.Report.ExportLoansCSV)
				reports.GET("/loans.xlsx", h.Report.ExportLoansXLSX)
				reports.GET("/clients/:client_id/statement", h.Report.ClientStatement)
			}

			// Audit trail
			protected.GET("/audit_logs", h.Audit.Index)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Accrue missed interest and refresh loan statuses daily. Runs once at
	// startup so a restarted process catches up immediately.
	worker.ScheduleEveryImmediate(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing loans...")
		refreshed, err := svcs.Loan.RefreshAllLoans(ctx)
		if err != nil {
			return err
		}
		logger.Info("[Job] Loans refreshed", "count", refreshed)
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
