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

package link

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/legalops/partes-ingestion/internal/errs"
	"github.com/legalops/partes-ingestion/internal/models"
)

type fakeStore struct {
	links []models.CaseParty
	err   error
}

func (f *fakeStore) UpsertCaseParty(_ context.Context, l models.CaseParty) error {
	if f.err != nil {
		return f.err
	}
	f.links = append(f.links, l)
	return nil
}

func testRecord() *models.PartyRecord {
	return &models.PartyRecord{
		ExternalPartyID:  301,
		ExternalPersonID: 10,
		Name:             "João da Silva",
		Role:             "RECLAMANTE",
		Side:             "ATIVO",
		Principal:        true,
	}
}

func TestLinkWritesAssociation(t *testing.T) {
	store := &fakeStore{}
	l := New(store, nil)
	cs := models.Case{ID: 7, Court: "trt3", Instance: "1"}

	linked, err := l.Link(context.Background(), cs, models.CategoryClient, 42, testRecord(), 3)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !linked {
		t.Fatal("expected linked = true")
	}
	got := store.links[0]
	if got.CaseID != 7 || got.OwnerID != 42 || got.OwnerCategory != models.CategoryClient {
		t.Errorf("link = %+v", got)
	}
	if got.Role != models.RoleClaimant || got.Side != models.SideActive {
		t.Errorf("taxonomy = (%q, %q)", got.Role, got.Side)
	}
	if got.OrderIndex != 3 {
		t.Errorf("order index = %d, want 3", got.OrderIndex)
	}
	if !got.Principal {
		t.Error("principal flag lost")
	}
}

func TestLinkDefersWithoutCaseID(t *testing.T) {
	store := &fakeStore{}
	l := New(store, nil)

	linked, err := l.Link(context.Background(), models.Case{ExternalID: 900}, models.CategoryClient, 42, testRecord(), 0)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if linked {
		t.Fatal("expected deferred link")
	}
	if len(store.links) != 0 {
		t.Fatal("deferred link must not write")
	}
}

func TestLinkRejectsBadArguments(t *testing.T) {
	l := New(&fakeStore{}, nil)
	cs := models.Case{ID: 7}

	if _, err := l.Link(context.Background(), cs, models.CategoryClient, 0, testRecord(), 0); err == nil {
		t.Fatal("expected error for zero owner id")
	}
	rec := testRecord()
	rec.ExternalPartyID = 0
	_, err := l.Link(context.Background(), cs, models.CategoryClient, 42, rec, 0)
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
}

func TestLinkTreatsDuplicateAsSuccess(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("upsert case party: %w", errs.ErrDuplicate)}
	l := New(store, nil)

	linked, err := l.Link(context.Background(), models.Case{ID: 7}, models.CategoryClient, 42, testRecord(), 0)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !linked {
		t.Fatal("duplicate link should count as linked")
	}
}

func TestLinkWrapsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	l := New(store, nil)

	_, err := l.Link(context.Background(), models.Case{ID: 7}, models.CategoryClient, 42, testRecord(), 0)
	var perr *errs.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want PersistenceError", err)
	}
}
