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

// UpsertRepresentative inserts or refreshes a legal representative keyed on
// tax id and returns its id. Contact and bar fields always take the newest
// capture's values so repeated captures keep them current.
func (s *Store) UpsertRepresentative(ctx context.Context, r models.Representative) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO representatives
			(tax_id, name, bar_number, bar_state, bar_status,
			 rep_type, email, mobile_ddd, mobile_number, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tax_id) DO UPDATE SET
			name          = EXCLUDED.name,
			bar_number    = EXCLUDED.bar_number,
			bar_state     = EXCLUDED.bar_state,
			bar_status    = EXCLUDED.bar_status,
			rep_type      = EXCLUDED.rep_type,
			email         = EXCLUDED.email,
			mobile_ddd    = EXCLUDED.mobile_ddd,
			mobile_number = EXCLUDED.mobile_number,
			raw           = EXCLUDED.raw,
			updated_at    = NOW()
		RETURNING id
	`, r.TaxID, r.Name, r.BarNumber, r.BarState, r.BarStatus,
		r.Type, r.Email, r.MobileDDD, r.MobileNumber, r.Raw).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert representative: %w", wrapDuplicate(err))
	}
	return id, nil
}
