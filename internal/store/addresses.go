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

// UpsertAddress inserts or updates an address keyed on
// (external_id, owner_category, owner_id) and returns its id.
func (s *Store) UpsertAddress(ctx context.Context, a models.Address) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO addresses
			(external_id, owner_category, owner_id,
			 street, number, complement, district,
			 municipality_id, municipality, municipality_ibge,
			 state_code, state_name, country_code, country_name,
			 postal_code, correspondence, situation, classifications,
			 court, instance, case_number, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (external_id, owner_category, owner_id) DO UPDATE SET
			street            = EXCLUDED.street,
			number            = EXCLUDED.number,
			complement        = EXCLUDED.complement,
			district          = EXCLUDED.district,
			municipality_id   = EXCLUDED.municipality_id,
			municipality      = EXCLUDED.municipality,
			municipality_ibge = EXCLUDED.municipality_ibge,
			state_code        = EXCLUDED.state_code,
			state_name        = EXCLUDED.state_name,
			country_code      = EXCLUDED.country_code,
			country_name      = EXCLUDED.country_name,
			postal_code       = EXCLUDED.postal_code,
			correspondence    = EXCLUDED.correspondence,
			situation         = EXCLUDED.situation,
			classifications   = EXCLUDED.classifications,
			raw               = EXCLUDED.raw,
			updated_at        = NOW()
		RETURNING id
	`, a.ExternalID, a.OwnerCategory, a.OwnerID,
		a.Street, a.Number, a.Complement, a.District,
		a.MunicipalityID, a.Municipality, a.MunicipalityIBGE,
		a.StateCode, a.StateName, a.CountryCode, a.CountryName,
		a.PostalCode, a.Correspondence, a.Situation, a.Classifications,
		a.Court, a.Instance, a.CaseNumber, a.Raw).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert address: %w", wrapDuplicate(err))
	}
	return id, nil
}
