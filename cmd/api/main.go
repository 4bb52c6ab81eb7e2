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

	_ "github.com/prestia/prestia-api/docs" // Swagger docs
	"github.com/prestia/prestia-api/internal/cache"
	"github.com/prestia/prestia-api/internal/config"
	"github.com/prestia/prestia-api/internal/database"
	"github.com/prestia/prestia-api/internal/handlers"
	"github.com/prestia/prestia-api/internal/jobs"
	"github.com/prestia/prestia-api/internal/middleware"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/internal/services"
	"github.com/prestia/prestia-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Prestia API
// @version 1.0
// @description REST API for the Prestia lending ledger

// @contact.name API Support
// @contact.email soporte@prestia.app

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

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

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Redis when configured, in-process cache otherwise
	var c cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		c = redisCache
		logger.Info("Connected to Redis", "addr", cfg.RedisAddr)
	} else {
		c = cache.NewMemoryCache()
		logger.Info("Redis not configured, using in-memory cache")
	}

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, c, cfg, db)

	scheduleJobs(worker, svcs)

	h := handlers.NewHandlers(svcs)

	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/auth/register", h.Auth.Register)
				admin.DELETE("/customers/:customer_id", h.Customer.Destroy)
				admin.POST("/loans/:loan_id/default", h.Loan.Default)
				admin.POST("/loans/:loan_id/write-off", h.Loan.WriteOff)
				admin.DELETE("/payments/:payment_id", h.Payment.Destroy)
				admin.GET("/audit", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
			}

			// Customers
			customers := protected.Group("/customers")
			{
				customers.GET("", h.Customer.Index)
				customers.POST("", h.Customer.Create)
				customers.GET("/:customer_id", h.Customer.Show)
				customers.PUT("/:customer_id", h.Customer.Update)
				customers.GET("/:customer_id/loans", h.Customer.Loans)
				customers.GET("/:customer_id/notifications", h.Customer.Notifications)
				customers.POST("/:customer_id/notifications/read", h.Customer.MarkNotificationsRead)
				customers.GET("/:customer_id/statement", h.Customer.Statement)
			}

			// Loans
			loans := protected.Group("/loans")
			{
				loans.GET("", h.Loan.Index)
				loans.POST("", h.Loan.Create)
				loans.GET("/:loan_id", h.Loan.Show)
				loans.POST("/:loan_id/close", h.Loan.Close)
				loans.POST("/:loan_id/calculate", h.Loan.Calculate)
				loans.GET("/:loan_id/payments", h.Loan.Payments)
				loans.GET("/:loan_id/statement", h.Loan.Statement)
			}

			// Payments
			payments := protected.Group("/payments")
			{
				payments.GET("", h.Payment.Index)
				payments.POST("", h.Payment.Create)
				payments.GET("/:payment_id", h.Payment.Show)
			}

			// Portfolio stats
			stats := protected.Group("/stats")
			{
				stats.GET("/overview", h.Stats.Overview)
				stats.GET("/distribution", h.Stats.Distribution)
				stats.GET("/export", h.Stats.Export)
				stats.GET("/overdue", h.Stats.OverdueCSV)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Scan overdue loans every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Scanning overdue loans...")
		return svcs.Loan.MarkOverdueLoans(ctx)
	})

	// Update credit scores every 6 hours
	worker.ScheduleEvery(6*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Updating credit scores...")
		return svcs.CreditScore.UpdateAllScores(ctx)
	})

	// Refresh portfolio stats cache every 15 minutes
	worker.ScheduleEveryImmediate(15*time.Minute, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing portfolio stats cache...")
		return svcs.Analytics.RefreshCache(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
