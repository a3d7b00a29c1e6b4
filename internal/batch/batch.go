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

// Package batch orchestrates the ingestion of a case's full party list:
// classification, entity resolution, address and representative
// persistence, and case linking, with bounded concurrency and per-item
// retry. Every item settles into an Outcome; a run never aborts because
// one party failed.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/legalops/partes-ingestion/internal/classify"
	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/resolver"
)

// Config controls scheduling and retry for a processor.
type Config struct {
	// ParallelEnabled runs items in fixed-size concurrent groups.
	// When false every item runs sequentially, in list order.
	ParallelEnabled bool
	// MaxConcurrent is the group size under parallel scheduling.
	MaxConcurrent int

	// RetryEnabled retries items that fail with retryable errors.
	RetryEnabled     bool
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 5
	}
	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 10 * time.Second
	}
	return c
}

// EntityResolver resolves a classified record to a canonical entity.
type EntityResolver interface {
	Resolve(ctx context.Context, rec *models.PartyRecord, cat models.Category, cs models.Case) (resolver.Result, error)
}

// AddressPersister persists a party's address and points the entity at it.
type AddressPersister interface {
	Attach(ctx context.Context, payload *models.AddressPayload, cat models.Category, ownerID int64, raw json.RawMessage) (int64, error)
}

// RepPersister persists a party's representatives, returning how many stuck.
type RepPersister interface {
	AttachAll(ctx context.Context, recs []models.RepresentativeRecord, ownerCategory models.Category, ownerID int64, cs models.Case) int
}

// LinkPersister records the party↔case association.
type LinkPersister interface {
	Link(ctx context.Context, cs models.Case, cat models.Category, ownerID int64, rec *models.PartyRecord, orderIndex int) (bool, error)
}

// ItemResult is the successful (possibly skipped) outcome of one party.
type ItemResult struct {
	Category        models.Category
	EntityID        int64
	Representatives int
	Linked          bool
	Skipped         bool
	SkipReason      string
	Warning         string
}

// Outcome is the settled result of one party. Index is the party's position
// in the original list, regardless of scheduling. Exactly one of Result and
// Err is set.
type Outcome struct {
	Index  int
	Party  *models.PartyRecord
	Result *ItemResult
	Err    error
}

// Processor runs party lists through the ingestion pipeline.
type Processor struct {
	cfg       Config
	resolver  EntityResolver
	addresses AddressPersister
	reps      RepPersister
	links     LinkPersister
	log       *slog.Logger
}

func New(cfg Config, res EntityResolver, addresses AddressPersister, reps RepPersister, links LinkPersister, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		cfg:       cfg.withDefaults(),
		resolver:  res,
		addresses: addresses,
		reps:      reps,
		links:     links,
		log:       log,
	}
}

// Process ingests every party of a case and returns one settled Outcome per
// input record, in input order. Order indexes are assigned from list
// positions before any scheduling, so concurrent execution cannot disturb
// the persisted ordering.
func (p *Processor) Process(ctx context.Context, cs models.Case, attorney models.Attorney, parties []models.PartyRecord) []Outcome {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "case_number", cs.Number, "court", cs.Court)
	log.Info("processing party list",
		"parties", len(parties),
		"parallel", p.cfg.ParallelEnabled)

	outcomes := make([]Outcome, len(parties))
	for i := range parties {
		outcomes[i] = Outcome{Index: i, Party: &parties[i]}
	}

	if !p.cfg.ParallelEnabled || p.cfg.MaxConcurrent == 1 {
		for i := range parties {
			p.settle(ctx, log, cs, attorney, &outcomes[i])
		}
	} else {
		for start := 0; start < len(parties); start += p.cfg.MaxConcurrent {
			end := start + p.cfg.MaxConcurrent
			if end > len(parties) {
				end = len(parties)
			}
			var wg sync.WaitGroup
			for i := start; i < end; i++ {
				wg.Add(1)
				go func(o *Outcome) {
					defer wg.Done()
					p.settle(ctx, log, cs, attorney, o)
				}(&outcomes[i])
			}
			wg.Wait()
		}
	}

	s := Summarize(outcomes)
	log.Info("party list processed",
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"skipped", s.Skipped,
		"linked", s.Linked,
		"representatives", s.Representatives)
	return outcomes
}

// settle runs one item to completion, retrying retryable failures, and
// records the result in place. It never panics an outcome into the void:
// whatever happens, either Result or Err is set.
func (p *Processor) settle(ctx context.Context, log *slog.Logger, cs models.Case, attorney models.Attorney, o *Outcome) {
	attempt := 0
	operation := func() error {
		attempt++
		res, err := p.processOne(ctx, cs, attorney, o.Party, o.Index)
		if err != nil {
			var verr *errs.ValidationError
			if errors.As(err, &verr) {
				return backoff.Permanent(err)
			}
			log.Warn("party attempt failed",
				"index", o.Index,
				"party_id", o.Party.ExternalPartyID,
				"attempt", attempt,
				"error", err)
			return err
		}
		o.Result = &res
		return nil
	}

	var err error
	if p.cfg.RetryEnabled && p.cfg.RetryMaxAttempts > 1 {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = p.cfg.RetryBaseDelay
		bo.MaxInterval = p.cfg.RetryMaxDelay
		bo.MaxElapsedTime = 0
		err = backoff.Retry(operation,
			backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(p.cfg.RetryMaxAttempts-1)))
	} else {
		err = operation()
	}
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		log.Error("party failed",
			"index", o.Index,
			"party_id", o.Party.ExternalPartyID,
			"name", o.Party.Name,
			"error_kind", errs.KindOf(err),
			"error", err)
		o.Err = err
	}
}

// processOne is a single attempt at the full pipeline for one party.
func (p *Processor) processOne(ctx context.Context, cs models.Case, attorney models.Attorney, rec *models.PartyRecord, orderIndex int) (ItemResult, error) {
	if cs.Court == "" {
		return ItemResult{}, &errs.ValidationError{Field: "court", Message: "case court is required"}
	}
	if err := rec.Validate(); err != nil {
		return ItemResult{}, err
	}

	cat := classify.Classify(*rec, attorney)

	res, err := p.resolver.Resolve(ctx, rec, cat, cs)
	if err != nil {
		return ItemResult{}, err
	}
	if res.Skipped {
		return ItemResult{Category: cat, Skipped: true, SkipReason: res.SkipReason}, nil
	}

	result := ItemResult{Category: cat, EntityID: res.EntityID, Warning: res.Warning}

	if _, err := p.addresses.Attach(ctx, rec.Address, cat, res.EntityID, rec.Raw); err != nil {
		return ItemResult{}, err
	}

	result.Representatives = p.reps.AttachAll(ctx, rec.Representatives, cat, res.EntityID, cs)

	linked, err := p.links.Link(ctx, cs, cat, res.EntityID, rec, orderIndex)
	if err != nil {
		return ItemResult{}, err
	}
	result.Linked = linked

	return result, nil
}

// Summary aggregates a run's outcomes for logging and reporting.
type Summary struct {
	Total           int
	Succeeded       int
	Failed          int
	Skipped         int
	Linked          int
	Representatives int
	Warnings        int
	Clients         int
	Opposing        int
	Third           int
}

// Summarize folds settled outcomes into run totals. Skips count toward
// Succeeded: a deliberate no-op is not a failure.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if o.Result == nil {
			continue
		}
		if o.Result.Skipped {
			s.Skipped++
			continue
		}
		if o.Result.Linked {
			s.Linked++
		}
		if o.Result.Warning != "" {
			s.Warnings++
		}
		s.Representatives += o.Result.Representatives
		switch o.Result.Category {
		case models.CategoryClient:
			s.Clients++
		case models.CategoryOpposing:
			s.Opposing++
		case models.CategoryThird:
			s.Third++
		}
	}
	return s
}
