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

// FindActiveByTaxID returns the id of the active entity with the given
// normalized tax id in the category's store, or 0 when none exists.
func (s *Store) FindActiveByTaxID(ctx context.Context, cat models.Category, taxID string) (int64, error) {
	table, err := tableFor(cat)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id FROM %s WHERE tax_id = $1 AND active
	`, table), taxID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s by tax id: %w", cat, err)
	}
	return id, nil
}

// InsertEntity inserts a new canonical entity and returns its id. A
// concurrent insert of the same tax id surfaces as errs.ErrDuplicate; the
// caller recovers by re-querying.
func (s *Store) InsertEntity(ctx context.Context, e models.Entity) (int64, error) {
	table, err := tableFor(e.Category)
	if err != nil {
		return 0, err
	}

	var id int64
	if e.Category == models.CategoryThird {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO third_parties
				(tax_id, person_kind, name, emails,
				 mobile_ddd, mobile_number, landline_ddd, landline_number,
				 role, side, active, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`, nullable(e.TaxID), e.Kind, e.Name, e.Emails,
			e.MobileDDD, e.MobileNumber, e.LandlineDDD, e.LandlineNumber,
			e.Role, e.Side, e.Active, e.Raw).Scan(&id)
	} else {
		err = s.pool.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s
				(tax_id, person_kind, name, emails,
				 mobile_ddd, mobile_number, landline_ddd, landline_number,
				 active, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, table), nullable(e.TaxID), e.Kind, e.Name, e.Emails,
			e.MobileDDD, e.MobileNumber, e.LandlineDDD, e.LandlineNumber,
			e.Active, e.Raw).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", e.Category, wrapDuplicate(err))
	}
	return id, nil
}

// SetEntityAddress writes an address id back onto the owning entity's row.
// The representative category dispatches to the representatives table.
func (s *Store) SetEntityAddress(ctx context.Context, cat models.Category, entityID, addressID int64) error {
	table, err := tableFor(cat)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET address_id = $1, updated_at = NOW() WHERE id = $2
	`, table), addressID, entityID)
	if err != nil {
		return fmt.Errorf("set %s address: %w", cat, err)
	}
	return nil
}
