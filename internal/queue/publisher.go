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

// Package queue publishes capture results to Redis lists: failed parties to
// a dead-letter queue for manual replay, run summaries to a notification
// queue consumed by downstream reporting.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
)

// Publisher sends capture results to Redis.
type Publisher struct {
	rdb        *redis.Client
	deadLetter string
	summaries  string
}

// NewPublisher creates a publisher targeting the given queue names.
func NewPublisher(rdb *redis.Client, deadLetterQueue, summaryQueue string) *Publisher {
	return &Publisher{
		rdb:        rdb,
		deadLetter: deadLetterQueue,
		summaries:  summaryQueue,
	}
}

// FailedItem is the dead-letter payload for one failed party. Raw carries
// the original scraped record so the item can be replayed without another
// fetch.
type FailedItem struct {
	ID           string          `json:"id"`
	SourceSystem string          `json:"sourceSystem"`
	Court        string          `json:"court"`
	Instance     string          `json:"instance"`
	CaseNumber   string          `json:"caseNumber"`
	PartyID      int64           `json:"partyId"`
	PartyName    string          `json:"partyName"`
	OrderIndex   int             `json:"orderIndex"`
	ErrorKind    string          `json:"errorKind"`
	Error        string          `json:"error"`
	FailedAt     time.Time       `json:"failedAt"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// runSummary is the notification payload for one completed run.
type runSummary struct {
	ID         string        `json:"id"`
	Court      string        `json:"court"`
	Instance   string        `json:"instance"`
	CaseNumber string        `json:"caseNumber"`
	Summary    batch.Summary `json:"summary"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// PublishFailures pushes every failed outcome of a run onto the dead-letter
// queue and returns how many were published.
func (p *Publisher) PublishFailures(ctx context.Context, sourceSystem string, cs models.Case, outcomes []batch.Outcome) (int, error) {
	published := 0
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err == nil {
			continue
		}
		item := FailedItem{
			ID:           uuid.NewString(),
			SourceSystem: sourceSystem,
			Court:        cs.Court,
			Instance:     cs.Instance,
			CaseNumber:   cs.Number,
			PartyID:      o.Party.ExternalPartyID,
			PartyName:    o.Party.Name,
			OrderIndex:   o.Index,
			ErrorKind:    errs.KindOf(o.Err),
			Error:        o.Err.Error(),
			FailedAt:     time.Now().UTC(),
			Raw:          o.Party.Raw,
		}
		body, err := json.Marshal(item)
		if err != nil {
			return published, fmt.Errorf("marshal dead-letter item: %w", err)
		}
		if err := p.rdb.LPush(ctx, p.deadLetter, body).Err(); err != nil {
			return published, fmt.Errorf("redis LPUSH %s: %w", p.deadLetter, err)
		}
		published++
		slog.Info("published failed party to dead-letter queue",
			"item_id", item.ID,
			"party_id", item.PartyID,
			"error_kind", item.ErrorKind,
			"queue", p.deadLetter,
		)
	}
	return published, nil
}

// PublishSummary pushes the run summary onto the notification queue.
func (p *Publisher) PublishSummary(ctx context.Context, cs models.Case, s batch.Summary) error {
	msg := runSummary{
		ID:         uuid.NewString(),
		Court:      cs.Court,
		Instance:   cs.Instance,
		CaseNumber: cs.Number,
		Summary:    s,
		FinishedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := p.rdb.LPush(ctx, p.summaries, body).Err(); err != nil {
		return fmt.Errorf("redis LPUSH %s: %w", p.summaries, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
