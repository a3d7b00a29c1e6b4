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

package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCaseParties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/processos/900/partes" {
			t.Errorf("path = %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"idParte":1,"nome":"João"},{"idParte":2,"nome":"Maria"}]`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), srv.URL)
	raws, err := f.FetchCaseParties(context.Background(), 900)
	if err != nil {
		t.Fatalf("FetchCaseParties: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("parties = %d, want 2", len(raws))
	}
}

func TestFetchCasePartiesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), srv.URL)
	raws, err := f.FetchCaseParties(context.Background(), 901)
	if err != nil {
		t.Fatalf("FetchCaseParties: %v", err)
	}
	if raws != nil {
		t.Fatalf("expected nil for missing case, got %d parties", len(raws))
	}
}

func TestFetchCasePartiesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), srv.URL)
	if _, err := f.FetchCaseParties(context.Background(), 900); err == nil {
		t.Fatal("expected error for HTTP 502")
	}
}

func TestDecodePartiesStampsRaw(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"idParte":1,"idPessoa":10,"nome":"João","representantes":[{"idPessoa":20,"nome":"Dra. Ana","numeroDocumento":"52998224725"}]}`),
	}
	recs, err := DecodeParties(raws)
	if err != nil {
		t.Fatalf("DecodeParties: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if string(rec.Raw) != string(raws[0]) {
		t.Error("party raw payload not preserved")
	}
	if len(rec.Representatives) != 1 {
		t.Fatalf("representatives = %d, want 1", len(rec.Representatives))
	}
	if rec.Representatives[0].Raw == nil {
		t.Error("representative raw payload not preserved")
	}
}

func TestDecodePartiesRejectsMalformed(t *testing.T) {
	_, err := DecodeParties([]json.RawMessage{json.RawMessage(`{"idParte":`)})
	if err == nil {
		t.Fatal("expected decode error")
	}
}
