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

// Package fetch retrieves party lists from the court system's REST API.
// The HTTP client is expected to carry authentication, normally an OAuth2
// client-credentials transport built per court.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/legalops/partes-ingestion/internal/models"
)

// Fetcher retrieves case party lists from a court API.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
}

// NewFetcher creates a party-list fetcher for one court endpoint.
func NewFetcher(httpClient *http.Client, baseURL string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// FetchCaseParties retrieves the ordered party list of a case. Each element
// is the raw JSON of one party, preserved byte-for-byte so the pipeline can
// persist it for audit. A 404 means the case is gone from the source and
// returns (nil, nil).
func (f *Fetcher) FetchCaseParties(ctx context.Context, externalCaseID int64) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/processos/%d/partes", f.baseURL, externalCaseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch parties: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Warn("case not found in source system",
			"external_case_id", externalCaseID,
		)
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("court API returned HTTP %d for case %d: %s", resp.StatusCode, externalCaseID, body)
	}

	var parties []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&parties); err != nil {
		return nil, fmt.Errorf("decode party list: %w", err)
	}
	return parties, nil
}

// DecodeParties turns raw party payloads into typed records, stamping each
// record and each of its representatives with their original bytes.
func DecodeParties(raws []json.RawMessage) ([]models.PartyRecord, error) {
	out := make([]models.PartyRecord, 0, len(raws))
	for i, raw := range raws {
		var rec models.PartyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode party %d: %w", i, err)
		}
		rec.Raw = raw

		// Re-decode the representative list as raw slices so each
		// representative keeps its own original bytes.
		var shadow struct {
			Representantes []json.RawMessage `json:"representantes"`
		}
		if err := json.Unmarshal(raw, &shadow); err == nil {
			for j := range rec.Representatives {
				if j < len(shadow.Representantes) {
					rec.Representatives[j].Raw = shadow.Representantes[j]
				}
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
