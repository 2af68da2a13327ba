package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	budgetapp "github.com/buildledger/backend/internal/application/budget"
	paymentapp "github.com/buildledger/backend/internal/application/payment"
	procurementapp "github.com/buildledger/backend/internal/application/procurement"
	sequenceapp "github.com/buildledger/backend/internal/application/sequence"
	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/infrastructure/auth"
	"github.com/buildledger/backend/internal/infrastructure/config"
	"github.com/buildledger/backend/internal/infrastructure/event"
	"github.com/buildledger/backend/internal/infrastructure/logger"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"github.com/buildledger/backend/internal/interfaces/http/handler"
	"github.com/buildledger/backend/internal/interfaces/http/middleware"
	"github.com/buildledger/backend/internal/interfaces/http/router"
)

// @title BuildLedger Backend API
// @version 1.0
// @description Procurement and budget tracking service for construction projects.
// @BasePath /api/v1
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BuildLedger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	txManager := persistence.NewTxManager(db.DB)
	budgetItemRepo := persistence.NewGormBudgetItemRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	categoryUsage := persistence.NewGormCategoryUsageChecker(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	vendorInvoiceRepo := persistence.NewGormVendorInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)

	// Budget ledger over the budget item repository
	ledger := budget.NewLedger(budgetItemRepo)

	// Initialize application services
	budgetItemService := budgetapp.NewBudgetItemService(budgetItemRepo, categoryUsage)
	categoryService := budgetapp.NewCategoryService(categoryRepo, categoryUsage, budgetItemRepo)
	purchaseOrderService := procurementapp.NewPurchaseOrderService(purchaseOrderRepo, sequenceRepo, ledger, txManager, log)
	vendorInvoiceService := procurementapp.NewVendorInvoiceService(vendorInvoiceRepo, purchaseOrderRepo, sequenceRepo, ledger, txManager, log)
	paymentService := paymentapp.NewPaymentService(paymentRepo, purchaseOrderRepo, vendorInvoiceRepo, sequenceRepo, ledger, txManager, log)
	sequenceService := sequenceapp.NewSequenceService(sequenceRepo)

	// Initialize event bus and audit handler
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogger(log))

	purchaseOrderService.SetEventPublisher(eventBus)
	vendorInvoiceService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// JWT service for bearer authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	budgetHandler := handler.NewBudgetHandler(budgetItemService, categoryService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService)
	vendorInvoiceHandler := handler.NewVendorInvoiceHandler(vendorInvoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	sequenceHandler := handler.NewSequenceHandler(sequenceService)
	healthHandler := handler.NewHealthHandler(db)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Custom binding validations (vat_treatment, JSON field names)
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Bearer auth on the API group. Header fallback identifies callers by
	// X-User-ID / X-User-Role and is only acceptable outside production.
	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.AllowHeaderFallback = cfg.App.Env != "production"
	authConfig.Logger = log

	r := router.NewRouter(engine)
	r.Use(middleware.AuthWithConfig(authConfig))
	r.Register(budgetHandler).
		Register(purchaseOrderHandler).
		Register(vendorInvoiceHandler).
		Register(paymentHandler).
		Register(sequenceHandler).
		Register(healthHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
