package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"
	_ "modernc.org/sqlite"

	"github.com/alorle/profile-cache/circuitbreaker"
	"github.com/alorle/profile-cache/config"
	"github.com/alorle/profile-cache/internal/adapter/driven"
	"github.com/alorle/profile-cache/internal/adapter/driver"
	"github.com/alorle/profile-cache/internal/application"
	"github.com/alorle/profile-cache/internal/codec"
	portdriven "github.com/alorle/profile-cache/internal/port/driven"
	"github.com/alorle/profile-cache/metrics"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting profile-cache",
		"address", cfg.HTTP.Address,
		"port", cfg.HTTP.Port,
		"upstream_url", cfg.Upstream.BaseURL,
		"storage_backend", cfg.Storage.Backend,
		"storage_path", cfg.Storage.Path,
		"log_level", cfg.Log.Level,
		"circuit_breaker", cfg.Resilience.CircuitBreakerEnabled,
	)

	profileCodec := codec.New()

	// Open the audit store backend
	var auditRepo portdriven.AuditRepository
	switch cfg.Storage.Backend {
	case "bolt":
		db, err := bbolt.Open(cfg.Storage.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("error closing database: %v", err)
			}
		}()

		auditRepo, err = driven.NewAuditBoltDBRepository(db, profileCodec)
		if err != nil {
			log.Fatalf("failed to create audit repository: %v", err)
		}

	case "sqlite":
		db, err := sql.Open("sqlite", driven.SQLiteDSN(cfg.Storage.Path))
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("error closing database: %v", err)
			}
		}()

		auditRepo, err = driven.NewAuditSQLiteRepository(db, profileCodec)
		if err != nil {
			log.Fatalf("failed to create audit repository: %v", err)
		}
	}

	// Create the upstream fetcher, optionally behind a circuit breaker
	var fetcher portdriven.ProfileFetcher = driven.NewProfileHTTPFetcher(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	if cfg.Resilience.CircuitBreakerEnabled {
		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.Resilience.CBFailureThreshold,
			Timeout:          cfg.Resilience.CBTimeout,
			HalfOpenRequests: cfg.Resilience.CBHalfOpenRequests,
			Logger:           logger,
			Name:             "upstream",
			OnStateChange: func(_, newState circuitbreaker.State) {
				metrics.SetCircuitBreakerState(newState.String())
				if newState == circuitbreaker.StateOpen {
					metrics.RecordCircuitBreakerTrip()
				}
			},
		})
		fetcher = driven.NewBreakerFetcher(fetcher, cb)
	}

	// Create application services
	lookupService := application.NewLookupService(auditRepo, fetcher, logger)
	auditService := application.NewAuditService(auditRepo)
	healthService := application.NewHealthService(auditRepo)

	// Create HTTP handlers
	userHandler := driver.NewUserHTTPHandler(lookupService)
	auditHandler := driver.NewAuditHTTPHandler(auditService)
	healthHandler := driver.NewHealthHTTPHandler(healthService)

	// Register routes
	mux := http.NewServeMux()
	mux.Handle("/user/", userHandler)
	mux.Handle("/db", auditHandler)
	mux.Handle("/db/", auditHandler)
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTP.Address + ":" + cfg.HTTP.Port,
		Handler:      driver.WithRequestLogging(logger, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
