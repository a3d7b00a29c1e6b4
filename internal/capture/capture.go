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

// Package capture glues one case capture end to end: fetch the party list
// from the court API, skip byte-identical repeats, run the ingestion
// pipeline and publish failures and summaries downstream.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/dedup"
	"github.com/legalops/partes-ingestion/internal/fetch"
	"github.com/legalops/partes-ingestion/internal/models"
)

// PartyFetcher retrieves the raw party list of a case.
type PartyFetcher interface {
	FetchCaseParties(ctx context.Context, externalCaseID int64) ([]json.RawMessage, error)
}

// Deduper remembers which capture payloads were already processed.
type Deduper interface {
	IsNew(ctx context.Context, key string) (bool, error)
}

// Processor runs a party list through the ingestion pipeline.
type Processor interface {
	Process(ctx context.Context, cs models.Case, attorney models.Attorney, parties []models.PartyRecord) []batch.Outcome
}

// ResultPublisher ships run results to downstream queues.
type ResultPublisher interface {
	PublishFailures(ctx context.Context, sourceSystem string, cs models.Case, outcomes []batch.Outcome) (int, error)
	PublishSummary(ctx context.Context, cs models.Case, s batch.Summary) error
}

// Result is the outcome of one capture.
type Result struct {
	// Deduped means the payload was identical to a recent capture and the
	// pipeline did not run.
	Deduped  bool
	Outcomes []batch.Outcome
	Summary  batch.Summary
}

// Service captures case party lists.
type Service struct {
	source    string
	attorney  models.Attorney
	filter    Deduper // may be nil: dedup disabled
	processor Processor
	publisher ResultPublisher // may be nil: publishing disabled
	log       *slog.Logger
}

func New(sourceSystem string, attorney models.Attorney, filter Deduper, processor Processor, publisher ResultPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		source:    sourceSystem,
		attorney:  attorney,
		filter:    filter,
		processor: processor,
		publisher: publisher,
		log:       log,
	}
}

// Capture fetches and ingests the party list of one case. Fetch and decode
// failures abort the capture; publishing failures are logged and do not.
func (s *Service) Capture(ctx context.Context, f PartyFetcher, cs models.Case) (Result, error) {
	raws, err := f.FetchCaseParties(ctx, cs.ExternalID)
	if err != nil {
		return Result{}, fmt.Errorf("capture case %d: %w", cs.ExternalID, err)
	}
	if len(raws) == 0 {
		s.log.Info("case has no parties to ingest",
			"external_case_id", cs.ExternalID,
			"case_number", cs.Number)
		return Result{}, nil
	}

	if s.filter != nil {
		payload, err := json.Marshal(raws)
		if err != nil {
			return Result{}, fmt.Errorf("marshal capture payload: %w", err)
		}
		fresh, err := s.filter.IsNew(ctx, dedup.Key(s.source, cs.ExternalID, payload))
		if err != nil {
			// Dedup is an optimization; a broken filter must not block
			// ingestion.
			s.log.Warn("dedup check failed, processing anyway", "error", err)
		} else if !fresh {
			s.log.Info("capture payload unchanged, skipping",
				"external_case_id", cs.ExternalID,
				"case_number", cs.Number)
			return Result{Deduped: true}, nil
		}
	}

	parties, err := fetch.DecodeParties(raws)
	if err != nil {
		return Result{}, fmt.Errorf("capture case %d: %w", cs.ExternalID, err)
	}

	outcomes := s.processor.Process(ctx, cs, s.attorney, parties)
	summary := batch.Summarize(outcomes)

	if s.publisher != nil {
		if _, err := s.publisher.PublishFailures(ctx, s.source, cs, outcomes); err != nil {
			s.log.Error("dead-letter publish failed", "error", err)
		}
		if err := s.publisher.PublishSummary(ctx, cs, summary); err != nil {
			s.log.Error("summary publish failed", "error", err)
		}
	}

	return Result{Outcomes: outcomes, Summary: summary}, nil
}
