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

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/legalops/partes-ingestion/internal/models"
)

// FindMapping looks up an existing owner id for an external person id
// within a source system and court/instance scope. Returns (0, false, nil)
// when no mapping exists.
func (s *Store) FindMapping(ctx context.Context, cat models.Category, externalPersonID int64, sourceSystem, court, instance string) (int64, bool, error) {
	var ownerID int64
	err := s.pool.QueryRow(ctx, `
		SELECT owner_id FROM source_mappings
		WHERE owner_category = $1
		  AND external_person_id = $2
		  AND source_system = $3
		  AND court = $4
		  AND instance = $5
	`, cat, externalPersonID, sourceSystem, court, instance).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find mapping: %w", err)
	}
	return ownerID, true, nil
}

// UpsertMapping records the canonical owner resolved for an external
// person id, keyed on (owner_category, external_person_id, source_system,
// court, instance).
func (s *Store) UpsertMapping(ctx context.Context, m models.SourceMapping) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_mappings
			(owner_category, owner_id, external_person_id,
			 source_system, court, instance, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_category, external_person_id, source_system, court, instance)
		DO UPDATE SET
			owner_id   = EXCLUDED.owner_id,
			raw        = EXCLUDED.raw,
			updated_at = NOW()
	`, m.OwnerCategory, m.OwnerID, m.ExternalPersonID,
		m.SourceSystem, m.Court, m.Instance, m.Raw)
	if err != nil {
		return fmt.Errorf("upsert mapping: %w", wrapDuplicate(err))
	}
	return nil
}
