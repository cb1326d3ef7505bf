package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"compressednft/chainsol"
	"compressednft/config"
	"compressednft/solprogram"
)

func main() {
	boot := zap.Must(zap.NewProduction())
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if cfg.DatabaseDSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_DSN not set, transaction history disabled")
	}

	solChain, err := chainsol.NewSolChain(ctx, chainsol.Config{
		RPCURL:  cfg.RPCURL,
		WSURL:   cfg.WSURL,
		Network: cfg.Network,
		DB:      db,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to init solana", zap.Error(err))
	}
	defer solChain.Close()

	if err := solChain.HealthCheck(ctx); err != nil {
		logger.Fatal("solana health check failed", zap.String("rpc", cfg.RPCURL), zap.Error(err))
	}

	client, err := solprogram.NewClient(solChain, cfg.ProgramID, logger)
	if err != nil {
		logger.Fatal("failed to init program client", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1/cnft", client.Routes)
	r.Route("/api/v1/transaction", func(r chi.Router) {
		r.Post("/send", solChain.HandleSendTransaction)
		r.Post("/sign", solChain.HandleSignTransaction) // TESTING ONLY
		r.Get("/status", solChain.HandleGetTransactionStatus)
		r.Get("/history", solChain.HandleGetTransactionHistory)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := solChain.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("cNFT API running",
		zap.String("port", cfg.Port),
		zap.String("network", cfg.Network),
		zap.String("program_id", cfg.ProgramID),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
