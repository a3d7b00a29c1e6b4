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

// Package api exposes capture over HTTP. The scraping scheduler POSTs a
// case reference to /capture and receives the run summary back.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/legalops/partes-ingestion/internal/batch"
	"github.com/legalops/partes-ingestion/internal/capture"
	"github.com/legalops/partes-ingestion/internal/models"
)

// CaptureRequest identifies the case to capture and which court to fetch
// it from.
type CaptureRequest struct {
	Court          string `json:"court"`
	Instance       string `json:"instance"`
	CaseID         int64  `json:"caseId"`
	ExternalCaseID int64  `json:"externalCaseId"`
	CaseNumber     string `json:"caseNumber"`
}

// CaptureResponse is the settled result of a capture run.
type CaptureResponse struct {
	Deduped bool          `json:"deduped"`
	Summary batch.Summary `json:"summary"`
}

// Handler serves capture requests.
type Handler struct {
	service  *capture.Service
	fetchers map[string]capture.PartyFetcher // keyed court + "/" + instance
}

// NewHandler creates a capture handler. fetchers maps "court/instance" to
// the authenticated fetcher for that endpoint.
func NewHandler(service *capture.Service, fetchers map[string]capture.PartyFetcher) *Handler {
	return &Handler{service: service, fetchers: fetchers}
}

// ServeCapture handles POST /capture.
func (h *Handler) ServeCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Court == "" || req.ExternalCaseID <= 0 {
		http.Error(w, "court and externalCaseId are required", http.StatusBadRequest)
		return
	}
	if req.Instance == "" {
		req.Instance = "1"
	}

	fetcher, ok := h.fetchers[req.Court+"/"+req.Instance]
	if !ok {
		http.Error(w, "unknown court", http.StatusNotFound)
		return
	}

	cs := models.Case{
		ID:         req.CaseID,
		ExternalID: req.ExternalCaseID,
		Number:     req.CaseNumber,
		Court:      req.Court,
		Instance:   req.Instance,
	}

	res, err := h.service.Capture(r.Context(), fetcher, cs)
	if err != nil {
		slog.Error("capture failed",
			"court", req.Court,
			"external_case_id", req.ExternalCaseID,
			"error", err,
		)
		http.Error(w, "capture failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CaptureResponse{
		Deduped: res.Deduped,
		Summary: res.Summary,
	})
}
