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

// Package reps persists the legal representatives attached to a party.
// Representatives are shared rows keyed by CPF; a single attorney appearing
// on many parties and cases is one row. Failures are isolated per sibling:
// one bad representative never fails the others or the owning party.
package reps

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/legalops/partes-ingestion/internal/document"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/validate"
)

// Store is the slice of the store the persister needs.
type Store interface {
	UpsertRepresentative(ctx context.Context, r models.Representative) (int64, error)
	UpsertMapping(ctx context.Context, m models.SourceMapping) error
}

// AddressAttacher persists representative addresses.
type AddressAttacher interface {
	AttachForRepresentative(ctx context.Context, payload *models.AddressPayload, repID int64, raw json.RawMessage, cs models.Case) (int64, error)
}

// Persister persists the representatives of a party.
type Persister struct {
	store     Store
	addresses AddressAttacher
	source    string
	log       *slog.Logger
}

func New(store Store, addresses AddressAttacher, sourceSystem string, log *slog.Logger) *Persister {
	if log == nil {
		log = slog.Default()
	}
	return &Persister{store: store, addresses: addresses, source: sourceSystem, log: log}
}

// AttachAll persists every representative of a party, returning how many
// were stored. Representatives without a CPF of valid length are skipped;
// upsert, mapping and address failures are logged and the loop moves on.
func (p *Persister) AttachAll(ctx context.Context, recs []models.RepresentativeRecord, ownerCategory models.Category, ownerID int64, cs models.Case) int {
	stored := 0
	for i := range recs {
		rec := &recs[i]
		cpf := document.Normalize(rec.DocumentNumber)
		if !document.HasValidLength(cpf, document.KindCPF) {
			p.log.Info("skipping representative without cpf",
				"name", rec.Name,
				"owner_category", ownerCategory,
				"owner_id", ownerID)
			continue
		}

		id, err := p.store.UpsertRepresentative(ctx, buildRow(rec, cpf))
		if err != nil {
			p.log.Error("representative upsert failed",
				"name", rec.Name,
				"owner_id", ownerID,
				"error", err)
			continue
		}
		stored++

		err = p.store.UpsertMapping(ctx, models.SourceMapping{
			OwnerCategory:    models.CategoryRepresentative,
			OwnerID:          id,
			ExternalPersonID: rec.ExternalPersonID,
			SourceSystem:     p.source,
			Court:            cs.Court,
			Instance:         cs.Instance,
			Raw:              rec.Raw,
		})
		if err != nil {
			p.log.Warn("representative mapping upsert failed",
				"representative_id", id,
				"error", err)
		}

		if _, err := p.addresses.AttachForRepresentative(ctx, rec.Address, id, rec.Raw, cs); err != nil {
			p.log.Warn("representative address not persisted",
				"representative_id", id,
				"error", err)
		}
	}
	return stored
}

func buildRow(rec *models.RepresentativeRecord, cpf string) models.Representative {
	row := models.Representative{
		TaxID:     cpf,
		Name:      rec.Name,
		BarNumber: rec.BarNumber,
		BarState:  rec.BarState,
		BarStatus: rec.BarStatus,
		Type:      rec.Type,
		Raw:       rec.Raw,
	}
	if validate.Email(rec.Email) {
		row.Email = rec.Email
	}
	if len(rec.Phones) > 0 && validate.Phone(rec.Phones[0].DDD, rec.Phones[0].Number) {
		row.MobileDDD = rec.Phones[0].DDD
		row.MobileNumber = rec.Phones[0].Number
	}
	return row
}
