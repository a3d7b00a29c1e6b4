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

// Package link associates resolved entities with the originating case,
// preserving each party's position within the case's party list.
package link

import (
	"context"
	"log/slog"

	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/taxonomy"
)

// Store is the slice of the store the linker needs.
type Store interface {
	UpsertCaseParty(ctx context.Context, l models.CaseParty) error
}

// Linker writes party↔case association rows.
type Linker struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *Linker {
	if log == nil {
		log = slog.Default()
	}
	return &Linker{store: store, log: log}
}

// Link records the association between an entity and a case. orderIndex is
// the party's position in the case's full party list, assigned before any
// concurrent scheduling. When the case has no internal id yet the link is
// deferred and Link reports false with no error. A concurrent writer
// landing the same link first counts as success.
func (l *Linker) Link(ctx context.Context, cs models.Case, cat models.Category, ownerID int64, rec *models.PartyRecord, orderIndex int) (bool, error) {
	if cs.ID == 0 {
		l.log.Info("case not persisted locally, deferring party link",
			"external_case_id", cs.ExternalID,
			"party_id", rec.ExternalPartyID)
		return false, nil
	}
	if ownerID <= 0 {
		return false, &errs.ValidationError{Field: "owner_id", Message: "owner id must be positive"}
	}
	if rec.ExternalPartyID <= 0 {
		return false, &errs.ValidationError{Field: "idParte", Message: "external party id must be positive"}
	}

	err := l.store.UpsertCaseParty(ctx, models.CaseParty{
		CaseID:           cs.ID,
		OwnerCategory:    cat,
		OwnerID:          ownerID,
		ExternalPartyID:  rec.ExternalPartyID,
		ExternalPersonID: rec.ExternalPersonID,
		Role:             taxonomy.MapRole(rec.Role),
		Side:             taxonomy.MapSide(rec.Side),
		OrderIndex:       orderIndex,
		Principal:        rec.Principal,
		Raw:              rec.Raw,
	})
	if errs.IsDuplicate(err) {
		return true, nil
	}
	if err != nil {
		return false, &errs.PersistenceError{Op: "upsert", Kind: "case_party", Err: err,
			Context: map[string]any{"case_id": cs.ID, "owner_id": ownerID}}
	}
	return true, nil
}
