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

// Package resolver turns a classified party record into a canonical entity
// id. Records carrying a well-formed CPF/CNPJ resolve by tax id, with
// insert-conflict recovery for concurrent captures of the same person.
// Undocumented opposing and third parties resolve through source mappings;
// undocumented clients are skipped.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legalops/partes-ingestion/internal/document"
	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/taxonomy"
	"github.com/legalops/partes-ingestion/internal/validate"
)

// EntityStore is the slice of the store the resolver needs for canonical
// entity rows.
type EntityStore interface {
	FindActiveByTaxID(ctx context.Context, cat models.Category, taxID string) (int64, error)
	InsertEntity(ctx context.Context, e models.Entity) (int64, error)
}

// MappingStore is the slice of the store the resolver needs for source
// mappings.
type MappingStore interface {
	FindMapping(ctx context.Context, cat models.Category, externalPersonID int64, sourceSystem, court, instance string) (int64, bool, error)
	UpsertMapping(ctx context.Context, m models.SourceMapping) error
}

// KindInferrer guesses person kind from a party name when no document is
// available to decide.
type KindInferrer interface {
	Infer(name string) models.PersonKind
}

// Result is the settled outcome of resolving one record. Skipped results
// carry no entity id and are not errors. Warning records a non-fatal
// bookkeeping failure, currently only a mapping upsert that did not stick.
type Result struct {
	EntityID   int64
	Skipped    bool
	SkipReason string
	Warning    string
}

// Resolver resolves party records to canonical entities.
type Resolver struct {
	entities EntityStore
	mappings MappingStore
	inferrer KindInferrer
	source   string
	log      *slog.Logger
}

// New builds a Resolver. sourceSystem scopes the mappings it reads and
// writes, e.g. "pje-trt3".
func New(entities EntityStore, mappings MappingStore, inferrer KindInferrer, sourceSystem string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		entities: entities,
		mappings: mappings,
		inferrer: inferrer,
		source:   sourceSystem,
		log:      log,
	}
}

// Resolve finds or creates the canonical entity for rec under category cat.
// Resolution is by normalized tax id when the record carries one of valid
// length, and by (external person id, source system, court, instance)
// mapping otherwise. Clients without a usable document are skipped, never
// created: a client row must be anchored to a real tax id.
func (r *Resolver) Resolve(ctx context.Context, rec *models.PartyRecord, cat models.Category, cs models.Case) (Result, error) {
	taxID, kind, usable := usableDocument(rec)

	var (
		id  int64
		err error
	)
	if usable {
		id, err = r.resolveByTaxID(ctx, rec, cat, taxID, kind)
	} else {
		if cat == models.CategoryClient {
			r.log.Info("skipping client without document",
				"party_id", rec.ExternalPartyID,
				"name", rec.Name)
			return Result{Skipped: true, SkipReason: "client without tax id"}, nil
		}
		id, err = r.resolveByMapping(ctx, rec, cat, cs)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{EntityID: id}
	if warn := r.recordMapping(ctx, rec, cat, cs, id); warn != "" {
		res.Warning = warn
	}
	return res, nil
}

// resolveByTaxID looks the entity up by tax id and inserts it when absent.
// A unique-constraint conflict on insert means another worker created the
// row between lookup and insert; the conflict is absorbed by re-reading.
func (r *Resolver) resolveByTaxID(ctx context.Context, rec *models.PartyRecord, cat models.Category, taxID string, kind models.PersonKind) (int64, error) {
	id, err := r.entities.FindActiveByTaxID(ctx, cat, taxID)
	if err != nil {
		return 0, &errs.PersistenceError{Op: "lookup", Kind: string(cat), Err: err,
			Context: map[string]any{"tax_id": taxID}}
	}
	if id > 0 {
		return id, nil
	}

	id, err = r.entities.InsertEntity(ctx, r.buildEntity(rec, cat, taxID, kind))
	if err == nil {
		return id, nil
	}
	if !errs.IsDuplicate(err) {
		return 0, &errs.PersistenceError{Op: "insert", Kind: string(cat), Err: err,
			Context: map[string]any{"tax_id": taxID}}
	}

	r.log.Info("lost insert race, re-reading entity",
		"category", cat,
		"tax_id", taxID)
	id, err = r.entities.FindActiveByTaxID(ctx, cat, taxID)
	if err != nil {
		return 0, &errs.PersistenceError{Op: "lookup", Kind: string(cat), Err: err,
			Context: map[string]any{"tax_id": taxID, "after": "conflict"}}
	}
	if id == 0 {
		return 0, &errs.PersistenceError{Op: "insert", Kind: string(cat),
			Err: fmt.Errorf("conflict on tax id %s but no active row found", taxID),
			Context: map[string]any{"tax_id": taxID}}
	}
	return id, nil
}

// resolveByMapping resolves an undocumented party through its source
// mapping, creating a fresh entity with an inferred person kind when no
// mapping exists yet.
func (r *Resolver) resolveByMapping(ctx context.Context, rec *models.PartyRecord, cat models.Category, cs models.Case) (int64, error) {
	id, found, err := r.mappings.FindMapping(ctx, cat, rec.ExternalPersonID, r.source, cs.Court, cs.Instance)
	if err != nil {
		return 0, &errs.PersistenceError{Op: "lookup", Kind: "mapping", Err: err,
			Context: map[string]any{"external_person_id": rec.ExternalPersonID}}
	}
	if found {
		return id, nil
	}

	id, err = r.entities.InsertEntity(ctx, r.buildEntity(rec, cat, "", r.inferrer.Infer(rec.Name)))
	if err != nil {
		return 0, &errs.PersistenceError{Op: "insert", Kind: string(cat), Err: err,
			Context: map[string]any{"external_person_id": rec.ExternalPersonID}}
	}
	return id, nil
}

// recordMapping upserts the source mapping for a resolved entity. Failures
// are reported as a warning, not an error: the entity itself is already
// persisted and usable.
func (r *Resolver) recordMapping(ctx context.Context, rec *models.PartyRecord, cat models.Category, cs models.Case, entityID int64) string {
	err := r.mappings.UpsertMapping(ctx, models.SourceMapping{
		OwnerCategory:    cat,
		OwnerID:          entityID,
		ExternalPersonID: rec.ExternalPersonID,
		SourceSystem:     r.source,
		Court:            cs.Court,
		Instance:         cs.Instance,
		Raw:              rec.Raw,
	})
	if err == nil {
		return ""
	}
	r.log.Warn("source mapping upsert failed",
		"category", cat,
		"entity_id", entityID,
		"external_person_id", rec.ExternalPersonID,
		"error", err)
	return fmt.Sprintf("source mapping not recorded: %v", err)
}

func (r *Resolver) buildEntity(rec *models.PartyRecord, cat models.Category, taxID string, kind models.PersonKind) models.Entity {
	e := models.Entity{
		Category: cat,
		TaxID:    taxID,
		Kind:     kind,
		Name:     rec.Name,
		Active:   true,
		Raw:      rec.Raw,
	}
	// Malformed contact fields are dropped, not fatal.
	for _, m := range rec.Emails {
		if validate.Email(m) {
			e.Emails = append(e.Emails, m)
		}
	}
	if mobile := rec.MobilePhone(); validate.Phone(mobile.DDD, mobile.Number) {
		e.MobileDDD, e.MobileNumber = mobile.DDD, mobile.Number
	}
	if landline := rec.LandlinePhone(); validate.Phone(landline.DDD, landline.Number) {
		e.LandlineDDD, e.LandlineNumber = landline.DDD, landline.Number
	}
	if cat == models.CategoryThird {
		e.Role = taxonomy.MapRole(rec.Role)
		e.Side = taxonomy.MapSide(rec.Side)
	}
	return e
}

// usableDocument extracts a normalized tax id from a record, returning it
// with the person kind it implies. Only CPF and CNPJ documents of valid
// length count; gating is by length, not checksum, because court systems
// carry legacy records whose check digits do not verify.
func usableDocument(rec *models.PartyRecord) (string, models.PersonKind, bool) {
	taxID := document.Normalize(rec.DocumentNumber)
	if taxID == "" {
		return "", "", false
	}
	kind := strings.ToUpper(strings.TrimSpace(rec.DocumentType))
	if kind != document.KindCPF && kind != document.KindCNPJ {
		switch len(taxID) {
		case 11:
			kind = document.KindCPF
		case 14:
			kind = document.KindCNPJ
		default:
			return "", "", false
		}
	}
	if !document.HasValidLength(taxID, kind) {
		return "", "", false
	}
	if kind == document.KindCNPJ {
		return taxID, models.PersonOrganization, true
	}
	return taxID, models.PersonIndividual, true
}
