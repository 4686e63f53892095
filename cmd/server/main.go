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
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/limits"
	"github.com/ctrm/exposure-engine/internal/metrics"
	"github.com/ctrm/exposure-engine/internal/report"
	"github.com/ctrm/exposure-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
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

	// --- Exposure limits ---
	maxPerInstrument := envDecimal("MAX_INSTRUMENT_EXPOSURE", 25000)
	maxPerFamily := envDecimal("MAX_FAMILY_EXPOSURE", 60000)
	checker := limits.NewChecker(maxPerInstrument, maxPerFamily)

	// --- WebSocket hub ---
	wsHub := report.NewWSHub()
	go wsHub.Run()

	// --- Report service ---
	reportSvc := report.NewService(st, checker, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
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
		w.Write([]byte(`{"status":"ok","service":"exposure-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for leg-change notifications.
		r.Get("/ws", wsHub.HandleWS)

		// Trade leg management.
		r.Route("/legs/physical", func(r chi.Router) {
			r.Get("/", reportSvc.ListPhysicalLegs)
			r.Post("/", reportSvc.CreatePhysicalLeg)
			r.Get("/{legID}", reportSvc.GetPhysicalLeg)
			r.Delete("/{legID}", reportSvc.DeletePhysicalLeg)
		})
		r.Route("/legs/paper", func(r chi.Router) {
			r.Get("/", reportSvc.ListPaperLegs)
			r.Post("/", reportSvc.CreatePaperLeg)
			r.Get("/{legID}", reportSvc.GetPaperLeg)
			r.Delete("/{legID}", reportSvc.DeletePaperLeg)
		})

		// Exposure report.
		r.Get("/exposure", reportSvc.GetExposure)

		// Business-day distribution preview for the entry form.
		r.Get("/distribution", reportSvc.GetDistribution)

		// Demurrage calculator.
		r.Post("/demurrage", reportSvc.CalculateDemurrage)
		r.Get("/demurrage", reportSvc.ListDemurrageCalculations)
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
		slog.Info("exposure-engine listening", "port", port)
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

	slog.Info("shutting down exposure-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("exposure-engine stopped")
}

// envDecimal reads a decimal limit from the environment, falling back to
// def when unset or malformed.
func envDecimal(key string, def int64) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return decimal.NewFromInt(def)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("invalid decimal in environment, using default", "key", key, "value", raw)
		return decimal.NewFromInt(def)
	}
	return d
}
