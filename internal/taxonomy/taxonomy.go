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

// Package taxonomy maps the court system's party-role and party-side codes
// onto the internal taxonomy, and infers person-vs-organization from party
// names when no document is available. All functions are total: unknown
// codes map to a default, never to an error.
package taxonomy

import (
	"regexp"
	"strings"

	"github.com/legalops/partes-ingestion/internal/models"
)

// MapSide maps an external polo code to the internal side taxonomy.
// "OUTROS" and anything unrecognized map to SideThird.
func MapSide(polo string) models.Side {
	switch strings.ToUpper(strings.TrimSpace(polo)) {
	case "ATIVO":
		return models.SideActive
	case "PASSIVO":
		return models.SidePassive
	default:
		return models.SideThird
	}
}

// roleBuckets maps normalized external role codes to the internal role
// taxonomy. Codes are normalized by stripping underscores and spaces, so
// "PERITO_CONTADOR" and "PERITO CONTADOR" hit the same entry.
var roleBuckets = map[string]models.Role{
	"AUTOR":                      models.RoleClaimant,
	"RECLAMANTE":                 models.RoleClaimant,
	"EXEQUENTE":                  models.RoleClaimant,
	"REQUERENTE":                 models.RoleClaimant,
	"IMPETRANTE":                 models.RoleClaimant,
	"REU":                        models.RoleRespondent,
	"RECLAMADO":                  models.RoleRespondent,
	"RECLAMADA":                  models.RoleRespondent,
	"EXECUTADO":                  models.RoleRespondent,
	"REQUERIDO":                  models.RoleRespondent,
	"IMPETRADO":                  models.RoleRespondent,
	"PERITO":                     models.RoleExpert,
	"PERITOCONTADOR":             models.RoleExpert,
	"PERITOMEDICO":               models.RoleExpert,
	"PERITOJUDICIAL":             models.RoleExpert,
	"ASSISTENTETECNICO":          models.RoleExpert,
	"TESTEMUNHA":                 models.RoleWitness,
	"MINISTERIOPUBLICO":          models.RoleProsecutor,
	"MINISTERIOPUBLICOTRABALHO":  models.RoleProsecutor,
	"MINISTERIOPUBLICOESTADUAL":  models.RoleProsecutor,
	"MINISTERIOPUBLICOFEDERAL":   models.RoleProsecutor,
	"CUSTOSLEGIS":                models.RoleProsecutor,
	"TERCEIROINTERESSADO":        models.RoleInterested,
	"ASSISTENTE":                 models.RoleInterested,
	"AMICUSCURIAE":               models.RoleInterested,
}

// MapRole maps an external role code to the internal role taxonomy,
// defaulting to RoleOther for codes the table does not know.
func MapRole(code string) models.Role {
	if r, ok := roleBuckets[normalizeCode(code)]; ok {
		return r
	}
	return models.RoleOther
}

func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("_", "", " ", "").Replace(code)
}

// orgNamePattern matches name prefixes of courts, ministries, government
// bodies and other organizations that appear as parties without a CNPJ.
var orgNamePattern = regexp.MustCompile(`(?i)^(JU[ÍI]ZO|JUIZADO|VARA|TRIBUNAL|TRT|TST|STF|STJ|MINIST[ÉE]RIO|UNI[ÃA]O|ESTADO|MUNIC[ÍI]PIO|INSTITUTO|INSS|IBAMA|ANVISA|RECEITA|FAZENDA|FUNDA[ÇC][ÃA]O|AUTARQUIA|EMPRESA|[ÓO]RG[ÃA]O|SECRETARIA|PREFEITURA|GOVERNO|C[ÂA]MARA|SENADO|ASSEMBL[ÉE]IA)`)

// InferPersonKind guesses whether an undocumented party is an individual
// or an organization from its name. Known organizational and government
// prefixes map to PersonOrganization; everything else to PersonIndividual.
func InferPersonKind(name string) models.PersonKind {
	if orgNamePattern.MatchString(strings.TrimSpace(name)) {
		return models.PersonOrganization
	}
	return models.PersonIndividual
}

// NameKindInferrer is the default person-kind strategy, backed by
// InferPersonKind. The resolver takes the strategy as an interface so tests
// and callers can swap it.
type NameKindInferrer struct{}

func (NameKindInferrer) Infer(name string) models.PersonKind {
	return InferPersonKind(name)
}
