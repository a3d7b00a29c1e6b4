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
	"fmt"

	"github.com/legalops/partes-ingestion/internal/models"
)

// UpsertCaseParty inserts or updates the party↔case link keyed on
// (case_id, owner_category, owner_id).
func (s *Store) UpsertCaseParty(ctx context.Context, l models.CaseParty) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_parties
			(case_id, owner_category, owner_id,
			 external_party_id, external_person_id,
			 role, side, order_index, principal, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (case_id, owner_category, owner_id) DO UPDATE SET
			external_party_id  = EXCLUDED.external_party_id,
			external_person_id = EXCLUDED.external_person_id,
			role               = EXCLUDED.role,
			side               = EXCLUDED.side,
			order_index        = EXCLUDED.order_index,
			principal          = EXCLUDED.principal,
			raw                = EXCLUDED.raw,
			updated_at         = NOW()
	`, l.CaseID, l.OwnerCategory, l.OwnerID,
		l.ExternalPartyID, l.ExternalPersonID,
		l.Role, l.Side, l.OrderIndex, l.Principal, l.Raw)
	if err != nil {
		return fmt.Errorf("upsert case party: %w", wrapDuplicate(err))
	}
	return nil
}
