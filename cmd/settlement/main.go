// ==============================================================================
// SETTLEMENT SERVICE MAIN - cmd/settlement/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cashflow/internal/handler"
	"cashflow/internal/middleware"
	"cashflow/internal/scenario"
	"cashflow/internal/settlement"
	"cashflow/pkg/cache"
	"cashflow/pkg/config"
	"cashflow/pkg/logger"
	"cashflow/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewWithWriter("settlement-service", os.Stdout, logger.ParseLevel(cfg.Log.Level))

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Starting Settlement Service", map[string]interface{}{
		"port":         cfg.Server.Port,
		"intermediary": cfg.Settlement.Intermediary,
		"redis":        cfg.RedisEnabled(),
	})

	// Redis backs the plan cache, idempotency and rate limiting. Without it the
	// service still settles, it just forgets plans once they are returned.
	var (
		planCache settlement.PlanCache
		redisConn *cache.RedisCache
	)
	if cfg.RedisEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer rc.Close()

		redisConn = rc
		planCache = rc
		log.Info("Redis connected", nil)
	}

	settlementService := settlement.NewService(planCache, log, cfg.Settlement.CacheTTL)
	settlementHandler := handler.NewSettlementHandler(
		settlementService,
		validator.New(),
		scenario.LimitsFromConfig(cfg),
		log,
	)

	// Setup router
	r := mux.NewRouter()

	// Middleware
	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// Routes
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(redisConn)).Methods("GET")
	if cfg.Server.Metrics {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.NewRoute().Subrouter()
	if redisConn != nil {
		client := redisConn.Client()
		api.Use(middleware.NewRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window, log).Limit)
		api.Use(middleware.NewIdempotencyMiddleware(client, cfg.Settlement.IdempotencyTTL, log).Handle)
	}
	settlementHandler.Register(api)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Settlement service started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down settlement service...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Settlement service forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Info("Settlement service stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"settlement"}`))
}

func readyCheck(rc *cache.RedisCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if rc != nil {
			if err := rc.Client().Ping(r.Context()).Err(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"not ready","reason":"redis unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"settlement"}`))
	}
}
