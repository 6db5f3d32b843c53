// Package main is the entry point for the stockward API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockward/internal/core/security"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/auth"
	"stockward/internal/domain/catalogs/item"
	"stockward/internal/domain/catalogs/location"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/loading"
	"stockward/internal/domain/process"
	"stockward/internal/domain/procurement"
	"stockward/internal/domain/task"
	"stockward/internal/domain/transaction"
	v1 "stockward/internal/infrastructure/http/v1"
	"stockward/internal/infrastructure/storage/postgres"
	"stockward/internal/infrastructure/storage/postgres/audit_repo"
	"stockward/internal/infrastructure/storage/postgres/auth_repo"
	"stockward/internal/infrastructure/storage/postgres/catalog_repo"
	"stockward/internal/infrastructure/storage/postgres/ledger_repo"
	"stockward/internal/infrastructure/storage/postgres/loading_repo"
	"stockward/internal/infrastructure/storage/postgres/procurement_repo"
	"stockward/internal/infrastructure/storage/postgres/task_repo"
	"stockward/internal/infrastructure/storage/postgres/transaction_repo"
	"stockward/pkg/config"
	"stockward/pkg/logger"
	"stockward/pkg/numerator"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockward server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	stockRepo := ledger_repo.NewStockRepo(txManager)
	txnRepo := transaction_repo.NewTransactionRepo(txManager)
	auditRepo := audit_repo.NewAuditRepo(txManager)
	taskRepo := task_repo.NewTaskRepo(txManager)
	taskTypeRepo := task_repo.NewTypeRepo(txManager)
	processTypeRepo := catalog_repo.NewProcessTypeRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	locationRepo := catalog_repo.NewLocationRepo(txManager)
	loadingRepo := loading_repo.NewLoadingRepo(txManager)
	procurementRepo := procurement_repo.NewProcurementRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	// --- Shared infrastructure ---
	numbers := numerator.New(pool.Pool)
	policy := security.DefaultPolicy()

	changeStore, err := postgres.NewChangeStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize change store", "error", err)
	}

	// --- Domain services ---
	ledgerService := ledger.NewService(stockRepo)
	auditService := auditlog.NewService(auditRepo)
	itemService := item.NewService(itemRepo)
	locationService := location.NewService(locationRepo)
	procurementService := procurement.NewService(procurementRepo)
	ratingAdjuster := procurement.NewRatingAdjuster(procurementRepo)

	registry := process.NewRegistry(processTypeRepo)

	processors := transaction.NewProcessors(transaction.Deps{
		Ledger:    ledgerService,
		Items:     itemService,
		Locations: locationService,
		Orders:    procurementService,
	})

	taskService := task.NewService(taskRepo, txManager, policy).
		WithChangeRecorder(changeStore)
	taskGenerator := task.NewGenerator(taskRepo, taskTypeRepo)
	taskTypeCatalog := task.NewTypeCatalog(taskTypeRepo)

	transactionService := transaction.NewService(
		registry,
		processors,
		txnRepo,
		auditService,
		txManager,
		numbers,
		policy,
	).
		WithTaskCreator(taskGenerator).
		WithRatingNotifier(ratingAdjuster).
		WithChangeRecorder(changeStore)

	loadingService := loading.NewService(
		loadingRepo,
		txnRepo,
		taskService,
		txManager,
		numbers,
		policy,
	).WithChangeRecorder(changeStore)

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(
		userRepo,
		tokenRepo,
		txManager,
		jwtService,
		policy,
		auth.DefaultServiceConfig(),
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:    pool.Pool,
		Logger:  log,
		Version: version,

		JWTValidator: jwtService,
		Policy:       policy,

		AuthService:        authService,
		TransactionService: transactionService,
		TaskService:        taskService,
		LoadingService:     loadingService,
		LedgerService:      ledgerService,
		AuditService:       auditService,
		ItemService:        itemService,
		LocationService:    locationService,
		ProcessRegistry:    registry,
		TaskTypeCatalog:    taskTypeCatalog,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
