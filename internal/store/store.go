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

// Package store provides the Postgres-backed persistence layer for the
// party ingestion pipeline: canonical party entities per category, legal
// representatives, addresses, case↔party links, and source mappings.
//
// The store never deletes; every write is an insert or an upsert by
// natural key. Unique-constraint violations are surfaced wrapped in
// errs.ErrDuplicate so that resolvers can run lost-race recovery instead
// of failing.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
)

// Store wraps a pgx pool and exposes the per-entity operations the
// pipeline's persisters need.
type Store struct {
	pool *pgxpool.Pool
}

// New creates the store and ensures the schema exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure party schema: %w", err)
	}
	slog.Info("party store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS clients (
			id              BIGSERIAL PRIMARY KEY,
			tax_id          TEXT,
			person_kind     TEXT NOT NULL,
			name            TEXT NOT NULL,
			emails          TEXT[],
			mobile_ddd      TEXT DEFAULT '',
			mobile_number   TEXT DEFAULT '',
			landline_ddd    TEXT DEFAULT '',
			landline_number TEXT DEFAULT '',
			address_id      BIGINT,
			active          BOOLEAN DEFAULT TRUE,
			raw             JSONB,
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			updated_at      TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_tax_id
			ON clients(tax_id) WHERE tax_id IS NOT NULL AND active;

		CREATE TABLE IF NOT EXISTS opposing_parties (
			id              BIGSERIAL PRIMARY KEY,
			tax_id          TEXT,
			person_kind     TEXT NOT NULL,
			name            TEXT NOT NULL,
			emails          TEXT[],
			mobile_ddd      TEXT DEFAULT '',
			mobile_number   TEXT DEFAULT '',
			landline_ddd    TEXT DEFAULT '',
			landline_number TEXT DEFAULT '',
			address_id      BIGINT,
			active          BOOLEAN DEFAULT TRUE,
			raw             JSONB,
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			updated_at      TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_opposing_tax_id
			ON opposing_parties(tax_id) WHERE tax_id IS NOT NULL AND active;

		CREATE TABLE IF NOT EXISTS third_parties (
			id              BIGSERIAL PRIMARY KEY,
			tax_id          TEXT,
			person_kind     TEXT NOT NULL,
			name            TEXT NOT NULL,
			emails          TEXT[],
			mobile_ddd      TEXT DEFAULT '',
			mobile_number   TEXT DEFAULT '',
			landline_ddd    TEXT DEFAULT '',
			landline_number TEXT DEFAULT '',
			role            TEXT DEFAULT '',
			side            TEXT DEFAULT '',
			address_id      BIGINT,
			active          BOOLEAN DEFAULT TRUE,
			raw             JSONB,
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			updated_at      TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_third_tax_id
			ON third_parties(tax_id) WHERE tax_id IS NOT NULL AND active;

		CREATE TABLE IF NOT EXISTS representatives (
			id            BIGSERIAL PRIMARY KEY,
			tax_id        TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			bar_number    TEXT DEFAULT '',
			bar_state     TEXT DEFAULT '',
			bar_status    TEXT DEFAULT '',
			rep_type      TEXT DEFAULT '',
			email         TEXT DEFAULT '',
			mobile_ddd    TEXT DEFAULT '',
			mobile_number TEXT DEFAULT '',
			address_id    BIGINT,
			raw           JSONB,
			created_at    TIMESTAMPTZ DEFAULT NOW(),
			updated_at    TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id                BIGSERIAL PRIMARY KEY,
			external_id       BIGINT NOT NULL,
			owner_category    TEXT NOT NULL,
			owner_id          BIGINT NOT NULL,
			street            TEXT DEFAULT '',
			number            TEXT DEFAULT '',
			complement        TEXT DEFAULT '',
			district          TEXT DEFAULT '',
			municipality_id   BIGINT,
			municipality      TEXT DEFAULT '',
			municipality_ibge TEXT DEFAULT '',
			state_code        TEXT DEFAULT '',
			state_name        TEXT DEFAULT '',
			country_code      TEXT DEFAULT '',
			country_name      TEXT DEFAULT '',
			postal_code       TEXT DEFAULT '',
			correspondence    BOOLEAN DEFAULT FALSE,
			situation         TEXT DEFAULT '',
			classifications   TEXT[],
			court             TEXT DEFAULT '',
			instance          TEXT DEFAULT '',
			case_number       TEXT DEFAULT '',
			raw               JSONB,
			created_at        TIMESTAMPTZ DEFAULT NOW(),
			updated_at        TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(external_id, owner_category, owner_id)
		);

		CREATE TABLE IF NOT EXISTS case_parties (
			id                 BIGSERIAL PRIMARY KEY,
			case_id            BIGINT NOT NULL,
			owner_category     TEXT NOT NULL,
			owner_id           BIGINT NOT NULL,
			external_party_id  BIGINT NOT NULL,
			external_person_id BIGINT,
			role               TEXT NOT NULL,
			side               TEXT NOT NULL,
			order_index        INT NOT NULL,
			principal          BOOLEAN DEFAULT FALSE,
			raw                JSONB,
			created_at         TIMESTAMPTZ DEFAULT NOW(),
			updated_at         TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(case_id, owner_category, owner_id)
		);
		CREATE INDEX IF NOT EXISTS idx_case_parties_case ON case_parties(case_id);

		CREATE TABLE IF NOT EXISTS source_mappings (
			id                 BIGSERIAL PRIMARY KEY,
			owner_category     TEXT NOT NULL,
			owner_id           BIGINT NOT NULL,
			external_person_id BIGINT NOT NULL,
			source_system      TEXT NOT NULL,
			court              TEXT NOT NULL,
			instance           TEXT NOT NULL,
			raw                JSONB,
			created_at         TIMESTAMPTZ DEFAULT NOW(),
			updated_at         TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(owner_category, external_person_id, source_system, court, instance)
		);
	`)
	return err
}

// tableFor maps a category to its entity table.
func tableFor(cat models.Category) (string, error) {
	switch cat {
	case models.CategoryClient:
		return "clients", nil
	case models.CategoryOpposing:
		return "opposing_parties", nil
	case models.CategoryThird:
		return "third_parties", nil
	case models.CategoryRepresentative:
		return "representatives", nil
	default:
		return "", fmt.Errorf("unknown entity category %q", cat)
	}
}

// wrapDuplicate converts a Postgres unique-violation into the shared
// duplicate sentinel so callers can recover by re-lookup.
func wrapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", errs.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// nullable maps the empty string to NULL, for columns under partial unique
// indexes where '' would collide.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
