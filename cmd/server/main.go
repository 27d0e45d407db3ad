package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ruralpay/ledger/internal/audit"
	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/ruralpay/ledger/internal/handlers"
	"github.com/ruralpay/ledger/internal/jobs"
	"github.com/ruralpay/ledger/internal/logger"
	mW "github.com/ruralpay/ledger/internal/middleware"
	"github.com/ruralpay/ledger/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	logger.Init()
	defer logger.Sync()
	log := logger.Log

	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.Open(ctx, database.GetConfig())
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient := database.InitRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditLog := audit.NewLogger(log)
	ledgerService := services.NewDoubleLedgerService(db, auditLog)
	fundingService := services.NewFundingService(ledgerService)
	accountService := services.NewAccountService(db)
	loanService := services.NewLoanService(db, ledgerService)
	accrualService := services.NewInterestAccrualService(db, auditLog)

	accrualJob := jobs.NewInterestAccrualJob(accrualService, redisClient)
	if cfg.Interest.Enabled {
		if err := accrualJob.Start(); err != nil {
			log.Fatal("failed to schedule interest accrual", zap.Error(err))
		}
	}

	accountHandler := handlers.NewAccountHandler(accountService, ledgerService)
	transferHandler := handlers.NewTransferHandler(ledgerService)
	fundingHandler := handlers.NewFundingHandler(fundingService)
	loanHandler := handlers.NewLoanHandler(loanService, accrualService)
	interestHandler := handlers.NewInterestHandler(accrualJob)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			accountHandler.Routes(r)
			transferHandler.Routes(r)
			fundingHandler.Routes(r)
			loanHandler.Routes(r)
			interestHandler.Routes(r)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	accrualJob.Stop(shutdownCtx)

	log.Info("server stopped")
}
