// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Party Ingestion Service
//
// Entry point for the party ingestion service. It:
//  1. Loads per-court configuration from config.yaml
//  2. Connects to PostgreSQL and Redis
//  3. Builds OAuth2-authenticated fetchers per court endpoint
//  4. Serves POST /capture for the scraping scheduler
//  5. Handles graceful shutdown on SIGTERM/SIGINT
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/legalops/partes-ingestion/internal/address"
	"github.com/legalops/partes-ingestion/internal/api"
	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/capture"
	"github.com/legalops/partes-ingestion/internal/config"
	"github.com/legalops/partes-ingestion/internal/dedup"
	"github.com/legalops/partes-ingestion/internal/fetch"
	"github.com/legalops/partes-ingestion/internal/link"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/queue"
	"github.com/legalops/partes-ingestion/internal/reps"
	"github.com/legalops/partes-ingestion/internal/resolver"
	"github.com/legalops/partes-ingestion/internal/store"
	"github.com/legalops/partes-ingestion/internal/taxonomy"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting party ingestion service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"courts", len(cfg.Courts),
		"source_system", cfg.SourceSystem,
		"parallel", cfg.Capture.ParallelEnabled,
		"max_concurrent", cfg.Capture.MaxConcurrent,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	st, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise store", "error", err)
		os.Exit(1)
	}

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	publisher := queue.NewPublisher(rdb, cfg.DeadLetterQueue, cfg.SummaryQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	filter := dedup.NewFilter(rdb)

	// --- Pipeline ---
	res := resolver.New(st, st, taxonomy.NameKindInferrer{}, cfg.SourceSystem, logger)
	addresses := address.New(st, logger)
	representatives := reps.New(st, addresses, cfg.SourceSystem, logger)
	linker := link.New(st, logger)

	processor := batch.New(batch.Config{
		ParallelEnabled:  cfg.Capture.ParallelEnabled,
		MaxConcurrent:    cfg.Capture.MaxConcurrent,
		RetryEnabled:     cfg.Capture.RetryEnabled,
		RetryMaxAttempts: cfg.Capture.RetryMaxAttempts,
		RetryBaseDelay:   cfg.Capture.RetryBaseDelay,
		RetryMaxDelay:    cfg.Capture.RetryMaxDelay,
	}, res, addresses, representatives, linker, logger)

	attorney := models.Attorney{CPF: cfg.AttorneyCPF, Name: cfg.AttorneyName}
	service := capture.New(cfg.SourceSystem, attorney, filter, processor, publisher, logger)

	// --- Build OAuth2-authenticated fetchers per court ---
	fetchers := make(map[string]capture.PartyFetcher)
	for _, court := range cfg.Courts {
		creds := &clientcredentials.Config{
			ClientID:     court.ClientID,
			ClientSecret: court.ClientSecret,
			TokenURL:     court.TokenURL,
		}
		fetchers[court.Code+"/"+court.Instance] = fetch.NewFetcher(creds.Client(ctx), court.BaseURL)
		slog.Info("court endpoint configured",
			"court", court.Code,
			"instance", court.Instance,
		)
	}

	handler := api.NewHandler(service, fetchers)

	// --- HTTP Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/capture", handler.ServeCapture)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// Check Redis
		if err := publisher.Ping(r.Context()); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}
		// Check Postgres
		if err := pgPool.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // capture runs synchronously
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		rdb.Close()
		pgPool.Close()
	}()

	slog.Info("party ingestion service listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("party ingestion service stopped")
}
