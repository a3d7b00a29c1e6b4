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

package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
	"github.com/legalops/partes-ingestion/internal/taxonomy"
)

type fakeEntities struct {
	byTaxID    map[string]int64
	nextID     int64
	insertErr  error
	inserted   []models.Entity
	lookupErr  error
	raceRaised bool
}

func (f *fakeEntities) FindActiveByTaxID(_ context.Context, _ models.Category, taxID string) (int64, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.byTaxID[taxID], nil
}

func (f *fakeEntities) InsertEntity(_ context.Context, e models.Entity) (int64, error) {
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		f.raceRaised = true
		return 0, err
	}
	f.nextID++
	f.inserted = append(f.inserted, e)
	if e.TaxID != "" {
		if f.byTaxID == nil {
			f.byTaxID = map[string]int64{}
		}
		f.byTaxID[e.TaxID] = f.nextID
	}
	return f.nextID, nil
}

type fakeMappings struct {
	byPerson  map[int64]int64
	upserted  []models.SourceMapping
	upsertErr error
}

func (f *fakeMappings) FindMapping(_ context.Context, _ models.Category, externalPersonID int64, _, _, _ string) (int64, bool, error) {
	id, ok := f.byPerson[externalPersonID]
	return id, ok, nil
}

func (f *fakeMappings) UpsertMapping(_ context.Context, m models.SourceMapping) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, m)
	return nil
}

func newResolver(entities *fakeEntities, mappings *fakeMappings) *Resolver {
	return New(entities, mappings, taxonomy.NameKindInferrer{}, "pje-trt3", nil)
}

func testCase() models.Case {
	return models.Case{ID: 7, ExternalID: 900, Number: "0010000-11.2026.5.03.0001", Court: "trt3", Instance: "1"}
}

func TestResolveExistingByTaxID(t *testing.T) {
	entities := &fakeEntities{byTaxID: map[string]int64{"52998224725": 42}}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		DocumentType:     "CPF",
		DocumentNumber:   "529.982.247-25",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID != 42 {
		t.Fatalf("entity id = %d, want 42", res.EntityID)
	}
	if len(entities.inserted) != 0 {
		t.Fatalf("expected no insert, got %d", len(entities.inserted))
	}
	if len(mappings.upserted) != 1 {
		t.Fatalf("expected mapping upsert, got %d", len(mappings.upserted))
	}
	if mappings.upserted[0].OwnerID != 42 {
		t.Fatalf("mapping owner id = %d, want 42", mappings.upserted[0].OwnerID)
	}
}

func TestResolveInsertsNewEntity(t *testing.T) {
	entities := &fakeEntities{}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "Acme Transportes Ltda",
		DocumentType:     "CNPJ",
		DocumentNumber:   "11.222.333/0001-81",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryOpposing, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID == 0 || res.Skipped {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(entities.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(entities.inserted))
	}
	got := entities.inserted[0]
	if got.TaxID != "11222333000181" {
		t.Errorf("tax id = %q, want normalized digits", got.TaxID)
	}
	if got.Kind != models.PersonOrganization {
		t.Errorf("kind = %q, want pj", got.Kind)
	}
	if !got.Active {
		t.Error("inserted entity should be active")
	}
}

func TestResolveRecoversFromLostRace(t *testing.T) {
	entities := &fakeEntities{
		insertErr: fmt.Errorf("insert client: %w", errs.ErrDuplicate),
	}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		DocumentType:     "CPF",
		DocumentNumber:   "52998224725",
	}

	// Simulate the concurrent writer landing between the failed insert
	// and the re-read.
	entities.byTaxID = map[string]int64{"52998224725": 77}

	res, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID != 77 {
		t.Fatalf("entity id = %d, want 77", res.EntityID)
	}
	if !entities.raceRaised {
		t.Fatal("expected insert to be attempted")
	}
}

func TestResolveConflictWithoutRowFails(t *testing.T) {
	entities := &fakeEntities{
		insertErr: fmt.Errorf("insert client: %w", errs.ErrDuplicate),
	}
	r := newResolver(entities, &fakeMappings{})

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		DocumentType:     "CPF",
		DocumentNumber:   "52998224725",
	}
	_, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase())
	if err == nil {
		t.Fatal("expected error when conflict row cannot be re-read")
	}
	var perr *errs.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want PersistenceError", err)
	}
}

func TestResolveSkipsClientWithoutDocument(t *testing.T) {
	entities := &fakeEntities{}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Skipped || res.SkipReason == "" {
		t.Fatalf("expected skip, got %+v", res)
	}
	if len(entities.inserted) != 0 || len(mappings.upserted) != 0 {
		t.Fatal("skip must not write anything")
	}
}

func TestResolveUndocumentedOpposingUsesMapping(t *testing.T) {
	entities := &fakeEntities{}
	mappings := &fakeMappings{byPerson: map[int64]int64{10: 55}}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "Maria Souza",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryOpposing, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID != 55 {
		t.Fatalf("entity id = %d, want mapped 55", res.EntityID)
	}
	if len(entities.inserted) != 0 {
		t.Fatal("mapped entity must not be re-inserted")
	}
}

func TestResolveUndocumentedThirdInfersKind(t *testing.T) {
	entities := &fakeEntities{}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "UNIÃO FEDERAL",
		Role:             "TERCEIRO_INTERESSADO",
		Side:             "OUTROS",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryThird, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID == 0 {
		t.Fatal("expected entity id")
	}
	got := entities.inserted[0]
	if got.Kind != models.PersonOrganization {
		t.Errorf("kind = %q, want organization inferred from name", got.Kind)
	}
	if got.Role != models.RoleInterested {
		t.Errorf("role = %q, want interested", got.Role)
	}
	if got.Side != models.SideThird {
		t.Errorf("side = %q, want third", got.Side)
	}
	if got.TaxID != "" {
		t.Errorf("tax id = %q, want empty", got.TaxID)
	}
}

func TestResolveMappingFailureIsWarning(t *testing.T) {
	entities := &fakeEntities{byTaxID: map[string]int64{"52998224725": 42}}
	mappings := &fakeMappings{upsertErr: errors.New("connection reset")}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		DocumentType:     "CPF",
		DocumentNumber:   "52998224725",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.EntityID != 42 {
		t.Fatalf("entity id = %d, want 42", res.EntityID)
	}
	if res.Warning == "" {
		t.Fatal("expected warning for failed mapping upsert")
	}
}

func TestResolveMalformedDocumentFallsBack(t *testing.T) {
	// A document of bad length is not usable; an opposing party falls back
	// to mapping resolution instead of tax-id resolution.
	entities := &fakeEntities{}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "Maria Souza",
		DocumentType:     "CPF",
		DocumentNumber:   "12345",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryOpposing, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(entities.inserted) != 1 {
		t.Fatalf("expected fallback insert, got %d", len(entities.inserted))
	}
	if entities.inserted[0].TaxID != "" {
		t.Errorf("tax id = %q, want empty for malformed document", entities.inserted[0].TaxID)
	}
	if res.EntityID == 0 {
		t.Fatal("expected entity id")
	}
}

func TestResolveAcceptsBadCheckDigits(t *testing.T) {
	// Gating is by length, not checksum: legacy court records whose check
	// digits do not verify are still resolved through the tax-id path.
	entities := &fakeEntities{}
	mappings := &fakeMappings{}
	r := newResolver(entities, mappings)

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "Pedro Antigo",
		DocumentType:     "CPF",
		DocumentNumber:   "529.982.247-99",
	}
	res, err := r.Resolve(context.Background(), rec, models.CategoryOpposing, testCase())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(entities.inserted) != 1 || entities.inserted[0].TaxID != "52998224799" {
		t.Fatalf("inserted = %+v, want one entity keyed on the digits", entities.inserted)
	}
	if res.EntityID == 0 {
		t.Fatal("expected entity id")
	}
}

func TestResolveDropsMalformedContactFields(t *testing.T) {
	entities := &fakeEntities{}
	r := newResolver(entities, &fakeMappings{})

	rec := &models.PartyRecord{
		ExternalPartyID:  1,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		DocumentType:     "CPF",
		DocumentNumber:   "52998224725",
		Emails:           []string{"joao@exemplo.com.br", "sem-arroba"},
		Phones: []models.Phone{
			{DDD: "31", Number: "999887766"},
			{DDD: "", Number: "123"},
		},
	}
	if _, err := r.Resolve(context.Background(), rec, models.CategoryClient, testCase()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := entities.inserted[0]
	if len(got.Emails) != 1 || got.Emails[0] != "joao@exemplo.com.br" {
		t.Errorf("emails = %v, want the valid one only", got.Emails)
	}
	if got.MobileDDD != "31" || got.MobileNumber != "999887766" {
		t.Errorf("mobile = (%q, %q)", got.MobileDDD, got.MobileNumber)
	}
	if got.LandlineDDD != "" || got.LandlineNumber != "" {
		t.Errorf("landline = (%q, %q), want dropped", got.LandlineDDD, got.LandlineNumber)
	}
}
