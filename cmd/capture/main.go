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

// Party Ingestion — One-off Capture Command
//
// Standalone CLI tool that captures the party list of a single case,
// bypassing the HTTP server. Intended for replaying dead-lettered cases
// and seeding data on new deployments.
//
// Usage:
//
//	go run ./cmd/capture/ --court trt3 --case-external-id 900123 [--instance 1] [--case-id 7] [--case-number 0010000-11.2026.5.03.0001]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/legalops/partes-ingestion/internal/address"
	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/capture"
	"github.com/legalops/partes-ingestion/internal/config"
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

	// --- CLI Flags ---
	courtFlag := flag.String("court", "", "Court code, e.g. trt3 (required)")
	instanceFlag := flag.String("instance", "1", "Court instance")
	externalIDFlag := flag.Int64("case-external-id", 0, "Case id in the source system (required)")
	caseIDFlag := flag.Int64("case-id", 0, "Internal case id (0 = defer case linking)")
	caseNumberFlag := flag.String("case-number", "", "Case number (CNJ format)")
	flag.Parse()

	if *courtFlag == "" || *externalIDFlag <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --court and --case-external-id are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	slog.Info("starting one-off capture",
		"court", *courtFlag,
		"instance", *instanceFlag,
		"external_case_id", *externalIDFlag,
	)

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	court, ok := cfg.Court(*courtFlag, *instanceFlag)
	if !ok {
		slog.Error("court not found in configuration",
			"court", *courtFlag,
			"instance", *instanceFlag,
		)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

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
	defer rdb.Close()

	publisher := queue.NewPublisher(rdb, cfg.DeadLetterQueue, cfg.SummaryQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// --- Pipeline ---
	// No dedup filter here: a manual capture should always run, even when
	// the payload matches a recent one.
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
	service := capture.New(cfg.SourceSystem, attorney, nil, processor, publisher, logger)

	// --- OAuth2 client for the court ---
	creds := &clientcredentials.Config{
		ClientID:     court.ClientID,
		ClientSecret: court.ClientSecret,
		TokenURL:     court.TokenURL,
	}
	fetcher := fetch.NewFetcher(creds.Client(ctx), court.BaseURL)

	// --- Run Capture ---
	result, err := service.Capture(ctx, fetcher, models.Case{
		ID:         *caseIDFlag,
		ExternalID: *externalIDFlag,
		Number:     *caseNumberFlag,
		Court:      court.Code,
		Instance:   court.Instance,
	})
	if err != nil {
		slog.Error("capture failed", "error", err)
		os.Exit(1)
	}

	// --- Summary ---
	slog.Info("capture complete",
		"total", result.Summary.Total,
		"succeeded", result.Summary.Succeeded,
		"failed", result.Summary.Failed,
		"skipped", result.Summary.Skipped,
		"linked", result.Summary.Linked,
		"representatives", result.Summary.Representatives,
	)

	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		if o.Err != nil {
			slog.Error("party failed",
				"index", o.Index,
				"party_id", o.Party.ExternalPartyID,
				"name", o.Party.Name,
				"error", o.Err,
			)
		}
	}

	if result.Summary.Failed > 0 {
		os.Exit(1)
	}
}
