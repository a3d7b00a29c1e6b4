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

// Package classify decides which canonical category an external party
// record belongs to: client, opposing party, or third party.
//
// Priority order: special role types always classify as third party, even
// when the party is represented by the firm's attorney. Otherwise a party
// is a client iff one of its representatives carries the requesting
// attorney's CPF; everything else is an opposing party.
package classify

import (
	"log/slog"
	"strings"

	"github.com/legalops/partes-ingestion/internal/document"
	"github.com/legalops/partes-ingestion/internal/models"
)

// specialRoles lists the role codes that classify a party as a third party
// regardless of representation: auxiliary participants of the case rather
// than litigants.
var specialRoles = map[string]struct{}{
	"PERITO":                    {},
	"PERITOCONTADOR":            {},
	"PERITOMEDICO":              {},
	"PERITOJUDICIAL":            {},
	"MINISTERIOPUBLICO":         {},
	"MINISTERIOPUBLICOTRABALHO": {},
	"MINISTERIOPUBLICOESTADUAL": {},
	"MINISTERIOPUBLICOFEDERAL":  {},
	"ASSISTENTE":                {},
	"ASSISTENTETECNICO":         {},
	"TESTEMUNHA":                {},
	"CUSTOSLEGIS":               {},
	"AMICUSCURIAE":              {},
	"PREPOSTO":                  {},
	"CURADOR":                   {},
	"CURADORESPECIAL":           {},
	"INVENTARIANTE":             {},
	"ADMINISTRADOR":             {},
	"SINDICO":                   {},
	"DEPOSITARIO":               {},
	"LEILOEIRO":                 {},
	"LEILOEIROOFICIAL":          {},
	"TRADUTOR":                  {},
	"INTERPRETE":                {},
}

// IsSpecialRole reports whether the external role code marks an auxiliary
// participant. Comparison ignores case, underscores and spaces.
func IsSpecialRole(role string) bool {
	norm := strings.ToUpper(strings.TrimSpace(role))
	norm = strings.NewReplacer("_", "", " ", "").Replace(norm)
	_, ok := specialRoles[norm]
	return ok
}

// Classify assigns a category to an external record using the requesting
// attorney's identity. It is total: bad input degrades to a category, never
// to an error.
func Classify(rec models.PartyRecord, attorney models.Attorney) models.Category {
	if IsSpecialRole(rec.Role) {
		return models.CategoryThird
	}

	if len(rec.Representatives) == 0 {
		slog.Debug("party has no representatives, classifying as opposing",
			"party", rec.Name,
		)
		return models.CategoryOpposing
	}

	attorneyCPF := document.Normalize(attorney.CPF)
	if !plausibleCPF(attorneyCPF) {
		slog.Warn("attorney CPF unusable for client identification",
			"attorney", attorney.Name,
		)
		return models.CategoryOpposing
	}

	for _, rep := range rec.Representatives {
		repCPF := document.Normalize(rep.DocumentNumber)
		if !plausibleCPF(repCPF) {
			continue
		}
		if repCPF == attorneyCPF {
			slog.Debug("party represented by requesting attorney, classifying as client",
				"party", rec.Name,
				"representative", rep.Name,
			)
			return models.CategoryClient
		}
	}

	return models.CategoryOpposing
}

// plausibleCPF accepts any 11-digit value that is not a repeated-digit
// sequence. Checksum failures are tolerated here on purpose; identification
// only needs the two sides to normalize to the same string.
func plausibleCPF(normalized string) bool {
	if len(normalized) != 11 {
		return false
	}
	for i := 1; i < len(normalized); i++ {
		if normalized[i] != normalized[0] {
			return true
		}
	}
	return false
}
