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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/capture"
	"github.com/legalops/partes-ingestion/internal/models"
)

type fakeFetcher struct {
	raws []json.RawMessage
}

func (f *fakeFetcher) FetchCaseParties(_ context.Context, _ int64) ([]json.RawMessage, error) {
	return f.raws, nil
}

type fakeProcessor struct{ got models.Case }

func (f *fakeProcessor) Process(_ context.Context, cs models.Case, _ models.Attorney, parties []models.PartyRecord) []batch.Outcome {
	f.got = cs
	outcomes := make([]batch.Outcome, len(parties))
	for i := range parties {
		outcomes[i] = batch.Outcome{Index: i, Party: &parties[i], Result: &batch.ItemResult{Category: models.CategoryClient, Linked: true}}
	}
	return outcomes
}

func newHandler(proc capture.Processor) *Handler {
	svc := capture.New("pje-trt3", models.Attorney{}, nil, proc, nil, nil)
	fetchers := map[string]capture.PartyFetcher{
		"trt3/1": &fakeFetcher{raws: []json.RawMessage{
			json.RawMessage(`{"idParte":1,"idPessoa":10,"nome":"João"}`),
		}},
	}
	return NewHandler(svc, fetchers)
}

func TestServeCapture(t *testing.T) {
	proc := &fakeProcessor{}
	h := newHandler(proc)

	body := `{"court":"trt3","instance":"1","caseId":7,"externalCaseId":900,"caseNumber":"0010000-11.2026.5.03.0001"}`
	req := httptest.NewRequest(http.MethodPost, "/capture", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeCapture(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp CaptureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary.Total != 1 || resp.Summary.Succeeded != 1 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
	if proc.got.Court != "trt3" || proc.got.ID != 7 {
		t.Fatalf("processor case = %+v", proc.got)
	}
}

func TestServeCaptureRejectsBadRequests(t *testing.T) {
	h := newHandler(&fakeProcessor{})

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"missing court", http.MethodPost, `{"externalCaseId":900}`, http.StatusBadRequest},
		{"missing case id", http.MethodPost, `{"court":"trt3"}`, http.StatusBadRequest},
		{"unknown court", http.MethodPost, `{"court":"trt9","externalCaseId":900}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/capture", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeCapture(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
