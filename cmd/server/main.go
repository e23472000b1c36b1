package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/config"
	"github.com/ChinmayGopal931/delta-neutral/internal/custody"
	"github.com/ChinmayGopal931/delta-neutral/internal/metrics"
	"github.com/ChinmayGopal931/delta-neutral/internal/oracle"
	"github.com/ChinmayGopal931/delta-neutral/internal/rebalance"
	"github.com/ChinmayGopal931/delta-neutral/internal/store"
	"github.com/ChinmayGopal931/delta-neutral/internal/venue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "err", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	if port == "" {
		port = "8080"
	}

	ownerToken := os.Getenv("OWNER_TOKEN")
	if ownerToken == "" {
		slog.Error("OWNER_TOKEN not set; refusing to start with an open config surface")
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, 30*time.Second)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Runtime settings ---
	threshold, err := config.ParseUsd(cfg.Hedge.RebalanceThreshold)
	if err != nil {
		slog.Error("invalid rebalance_threshold", "err", err)
		os.Exit(1)
	}
	executionFee, err := config.ParseUsd(cfg.Hedge.ExecutionFee)
	if err != nil {
		slog.Error("invalid execution_fee", "err", err)
		os.Exit(1)
	}
	maxPositionUsd, err := config.ParseUsd(cfg.Hedge.MaxPositionUsd)
	if err != nil {
		slog.Error("invalid max_position_usd", "err", err)
		os.Exit(1)
	}
	settings := config.NewStore(ownerToken, threshold, executionFee, cfg.Hedge.SkipRebalancing, maxPositionUsd)

	// --- External collaborators ---
	var priceOracle oracle.Oracle
	if cfg.Oracle.URL != "" {
		priceOracle = oracle.NewHTTPOracle(cfg.Oracle.URL)
	} else {
		slog.Warn("oracle.url not set, using fixture oracle (dev only)")
		priceOracle = oracle.NewFixtureOracle(decimal.New(2000, 30), cfg.Hedge.BaseDecimals)
	}

	var hedgeVenue venue.Venue
	if cfg.Venue.URL != "" {
		hedgeVenue = venue.NewHTTPClient(cfg.Venue.URL)
	} else {
		slog.Warn("venue.url not set, using in-memory venue (dev only)")
		hedgeVenue = venue.NewMemoryVenue()
	}

	// Collateral and fee currency are funded through the API after start.
	vault := custody.NewVault(decimal.Zero, decimal.Zero)

	// --- WebSocket hub ---
	wsHub := rebalance.NewWSHub()
	go wsHub.Run()

	settings.OnChange = func(setting, value string) {
		wsHub.Broadcast(rebalance.WSMessage{Type: "config_updated", Setting: setting, Value: value})
	}

	// --- Rebalance service ---
	svc := rebalance.NewService(st, priceOracle, hedgeVenue, vault, settings, rebalance.Hedge{
		Market:  cfg.Hedge.Market,
		Asset:   cfg.Hedge.Asset,
		Account: cfg.Hedge.Account,
	}, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for dashboard cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"delta-neutral"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time engine notifications.
		r.Get("/ws", wsHub.HandleWS)

		// Exposure tracking and rebalancing.
		r.Get("/pools", svc.HandleListPools)
		r.Post("/pools/{poolID}/exposure", svc.HandleExposureDelta)
		r.Get("/pools/{poolID}/exposure", svc.HandleGetExposure)
		r.Post("/pools/{poolID}/rebalance", svc.HandleManualRebalance)
		r.Get("/pools/{poolID}/history", svc.HandleGetHistory)

		// Runtime settings (mutations owner-gated).
		r.Get("/config", svc.HandleGetConfig)
		r.Put("/config/threshold", svc.HandleSetThreshold)
		r.Put("/config/fee", svc.HandleSetFee)
		r.Put("/config/skip", svc.HandleSetSkip)

		// Custody balances.
		r.Get("/collateral", svc.HandleGetBalances)
		r.Post("/collateral", svc.HandleDepositCollateral)
		r.Post("/collateral/withdraw", svc.HandleWithdrawCollateral)
		r.Post("/fee", svc.HandleDepositFee)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("delta-neutral listening", "port", port, "market", cfg.Hedge.Market, "asset", cfg.Hedge.Asset)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down delta-neutral...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("delta-neutral stopped")
}
