// skillbridge exchange-service
//
// Lifecycle engine for the marketplace's opportunities (jobs and needs) and
// the responses submitted against them (applications and leads). Exposes a
// REST API used by the Gateway to implement:
//   - opportunity listing/detail with filter criteria
//   - createOpportunity / createResponse with validation and access checks
//   - response status transitions (owner-driven state machine) + notes
//   - per-status response counts for filter chips
//
// Publishes EVENT_* messages to Redis for Gateway SSE forwarding.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"skillbridge/exchange-service/internal/access"
	"skillbridge/exchange-service/internal/config"
	"skillbridge/exchange-service/internal/db"
	"skillbridge/exchange-service/internal/engine"
	"skillbridge/exchange-service/internal/metrics"
	"skillbridge/exchange-service/internal/reconcile"
	"skillbridge/exchange-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[exchange-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store (memory fixtures or PostgreSQL, chosen once) ──────────────────
	var st store.Store
	switch cfg.StoreMode {
	case config.StorePostgres:
		log.Println("[exchange-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[exchange-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		log.Println("[exchange-service] PostgreSQL connected ✓")
		st = store.NewPostgres(pool)
	default:
		mem := store.NewMemory()
		if cfg.SeedDemoData {
			if err := store.SeedDemo(ctx, mem, time.Now()); err != nil {
				log.Fatalf("[exchange-service] Seed: %v", err)
			}
		}
		log.Println("[exchange-service] Using in-memory store")
		st = mem
	}

	// ── Redis (optional — events are skipped without it) ────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Println("[exchange-service] Connecting to Redis…")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[exchange-service] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[exchange-service] Redis connected ✓")
	}

	// ── Engine + metrics ────────────────────────────────────────────────────
	metrics.Register()
	svc := engine.NewService(st, rdb, access.DefaultPolicy())

	// ── Counter reconcile sweep ─────────────────────────────────────────────
	sweeper := reconcile.New(st, cfg.ReconcileIntervalMinutes)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("[exchange-service] Reconcile: %v", err)
	}
	defer sweeper.Stop()

	// ── HTTP server ─────────────────────────────────────────────────────────
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	h := engine.NewHandler(svc)
	h.RegisterRoutes(router)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[exchange-service] v%s listening on :%s (store=%s)", version, cfg.Port, cfg.StoreMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[exchange-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[exchange-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[exchange-service] Shutdown error: %v", err)
	}
	log.Println("[exchange-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "exchange-service",
		"version": version,
	})
}
