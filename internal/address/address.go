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

// Package address persists the nested address payloads of parties and
// representatives and writes the resulting address id back onto the owner
// row. Absent or unusable payloads are quietly ignored; an entity without
// an address is a normal state.
package address

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/validate"
)

// Store is the slice of the store the persister needs.
type Store interface {
	UpsertAddress(ctx context.Context, a models.Address) (int64, error)
	SetEntityAddress(ctx context.Context, cat models.Category, entityID, addressID int64) error
}

// Persister attaches external address payloads to canonical entities.
type Persister struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *Persister {
	if log == nil {
		log = slog.Default()
	}
	return &Persister{store: store, log: log}
}

// Usable reports whether a payload carries enough substance to persist: an
// external id plus at least one of street, municipality or a well-formed
// postal code. Court records routinely ship empty address shells.
func Usable(p *models.AddressPayload) bool {
	if p == nil || p.ID <= 0 {
		return false
	}
	return p.Street != "" || p.Municipality != "" || validate.CEP(p.PostalCode)
}

// Attach persists a party address and points the owner row at it. A nil or
// unusable payload returns (0, nil). Upsert and write-back failures are
// fatal for the owning item.
func (p *Persister) Attach(ctx context.Context, payload *models.AddressPayload, cat models.Category, ownerID int64, raw json.RawMessage) (int64, error) {
	if !Usable(payload) {
		return 0, nil
	}
	id, err := p.store.UpsertAddress(ctx, buildRow(payload, cat, ownerID, raw))
	if err != nil {
		return 0, &errs.PersistenceError{Op: "upsert", Kind: "address", Err: err,
			Context: map[string]any{"owner_category": cat, "owner_id": ownerID}}
	}
	if err := p.store.SetEntityAddress(ctx, cat, ownerID, id); err != nil {
		return 0, &errs.PersistenceError{Op: "update", Kind: string(cat), Err: err,
			Context: map[string]any{"owner_id": ownerID, "address_id": id}}
	}
	return id, nil
}

// AttachForRepresentative persists a representative address, stamped with
// the originating court, instance and case number. Failures are returned
// to the caller, which treats them as non-fatal for the owning party.
func (p *Persister) AttachForRepresentative(ctx context.Context, payload *models.AddressPayload, repID int64, raw json.RawMessage, cs models.Case) (int64, error) {
	if !Usable(payload) {
		return 0, nil
	}
	row := buildRow(payload, models.CategoryRepresentative, repID, raw)
	row.Court = cs.Court
	row.Instance = cs.Instance
	row.CaseNumber = cs.Number

	id, err := p.store.UpsertAddress(ctx, row)
	if err != nil {
		return 0, &errs.PersistenceError{Op: "upsert", Kind: "address", Err: err,
			Context: map[string]any{"owner_category": models.CategoryRepresentative, "owner_id": repID}}
	}
	if err := p.store.SetEntityAddress(ctx, models.CategoryRepresentative, repID, id); err != nil {
		return 0, &errs.PersistenceError{Op: "update", Kind: "representative", Err: err,
			Context: map[string]any{"owner_id": repID, "address_id": id}}
	}
	return id, nil
}

func buildRow(payload *models.AddressPayload, cat models.Category, ownerID int64, raw json.RawMessage) models.Address {
	postal := ""
	if validate.CEP(payload.PostalCode) {
		postal = validate.NormalizeCEP(payload.PostalCode)
	}
	return models.Address{
		ExternalID:       payload.ID,
		OwnerCategory:    cat,
		OwnerID:          ownerID,
		Street:           payload.Street,
		Number:           payload.Number,
		Complement:       payload.Complement,
		District:         payload.District,
		MunicipalityID:   payload.MunicipalityID,
		Municipality:     payload.Municipality,
		MunicipalityIBGE: payload.MunicipalityIBGE,
		StateCode:        payload.State.Code,
		StateName:        payload.State.Name,
		CountryCode:      payload.Country.Code,
		CountryName:      payload.Country.Name,
		PostalCode:       postal,
		Correspondence:   payload.Correspondence,
		Situation:        payload.Situation,
		Classifications:  payload.Classifications,
		Raw:              raw,
	}
}
