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

// Package models defines the data structures shared across the party
// ingestion pipeline: the external records scraped from the court system
// and the canonical rows persisted in Postgres.
package models

import (
	"encoding/json"

	"github.com/legalops/partes-ingestion/internal/errs"
)

// Category identifies which canonical store a party belongs to.
type Category string

const (
	CategoryClient   Category = "client"
	CategoryOpposing Category = "opposing_party"
	CategoryThird    Category = "third_party"

	// CategoryRepresentative is used only as an address/mapping owner;
	// the classifier never produces it.
	CategoryRepresentative Category = "representative"
)

// PersonKind distinguishes individuals (CPF holders) from organizations
// (CNPJ holders).
type PersonKind string

const (
	PersonIndividual   PersonKind = "pf"
	PersonOrganization PersonKind = "pj"
)

// Side is the internal procedural-side taxonomy.
type Side string

const (
	SideActive  Side = "active"
	SidePassive Side = "passive"
	SideThird   Side = "third"
)

// Role is the internal party-role taxonomy.
type Role string

const (
	RoleClaimant   Role = "claimant"
	RoleRespondent Role = "respondent"
	RoleExpert     Role = "expert"
	RoleWitness    Role = "witness"
	RoleProsecutor Role = "prosecutor"
	RoleInterested Role = "interested"
	RoleOther      Role = "other"
)

// Phone is a DDD + number pair as returned by the court API.
type Phone struct {
	DDD    string `json:"ddd"`
	Number string `json:"numero"`
}

// StateRef is the state sub-object of an external address.
type StateRef struct {
	ID   int64  `json:"id"`
	Code string `json:"sigla"`
	Name string `json:"descricao"`
}

// CountryRef is the country sub-object of an external address.
type CountryRef struct {
	ID   int64  `json:"id"`
	Code string `json:"codigo"`
	Name string `json:"descricao"`
}

// AddressPayload is the nested address sub-record of a scraped party or
// representative. Field names follow the court API's JSON schema.
type AddressPayload struct {
	ID               int64      `json:"id"`
	Street           string     `json:"logradouro"`
	Number           string     `json:"numero"`
	Complement       string     `json:"complemento"`
	District         string     `json:"bairro"`
	MunicipalityID   int64      `json:"idMunicipio"`
	Municipality     string     `json:"municipio"`
	MunicipalityIBGE string     `json:"municipioIbge"`
	State            StateRef   `json:"estado"`
	Country          CountryRef `json:"pais"`
	PostalCode       string     `json:"nroCep"`
	Classifications  []string   `json:"classificacoesEndereco"`
	Correspondence   bool       `json:"correspondencia"`
	Situation        string     `json:"situacao"`
}

// RepresentativeRecord is a scraped legal representative attached to a party.
type RepresentativeRecord struct {
	ExternalPersonID int64           `json:"idPessoa"`
	Name             string          `json:"nome"`
	DocumentType     string          `json:"tipoDocumento"`
	DocumentNumber   string          `json:"numeroDocumento"`
	BarNumber        string          `json:"numeroOAB"`
	BarState         string          `json:"ufOAB"`
	BarStatus        string          `json:"situacaoOAB"`
	Type             string          `json:"tipo"`
	Email            string          `json:"email"`
	Phones           []Phone         `json:"telefones"`
	Address          *AddressPayload `json:"endereco"`

	// Raw is the untouched payload for audit; populated by the fetcher,
	// never serialised back out.
	Raw json.RawMessage `json:"-"`
}

// PartyRecord is a single scraped litigation party. The list for a case is
// ordered; the position of a record within it is externally meaningful and
// drives the persisted link ordering.
type PartyRecord struct {
	ExternalPartyID  int64                  `json:"idParte"`
	ExternalPersonID int64                  `json:"idPessoa"`
	Name             string                 `json:"nome"`
	DocumentType     string                 `json:"tipoDocumento"`
	DocumentNumber   string                 `json:"numeroDocumento"`
	Role             string                 `json:"tipoParte"`
	Side             string                 `json:"polo"`
	Principal        bool                   `json:"principal"`
	Emails           []string               `json:"emails"`
	Phones           []Phone                `json:"telefones"`
	Address          *AddressPayload        `json:"endereco"`
	Representatives  []RepresentativeRecord `json:"representantes"`

	Raw json.RawMessage `json:"-"`
}

// Validate performs the boundary shape check before a record enters the
// typed pipeline. Violations are ValidationErrors and are never retried.
func (p *PartyRecord) Validate() error {
	if p.Name == "" {
		return &errs.ValidationError{Field: "nome", Message: "party name is required"}
	}
	if p.ExternalPartyID <= 0 {
		return &errs.ValidationError{Field: "idParte", Message: "external party id must be positive"}
	}
	if p.ExternalPersonID <= 0 {
		return &errs.ValidationError{Field: "idPessoa", Message: "external person id must be positive"}
	}
	return nil
}

// MobilePhone returns the first phone of a record, by court API convention
// the mobile number.
func (p *PartyRecord) MobilePhone() Phone {
	if len(p.Phones) > 0 {
		return p.Phones[0]
	}
	return Phone{}
}

// LandlinePhone returns the second phone of a record, by convention the
// landline.
func (p *PartyRecord) LandlinePhone() Phone {
	if len(p.Phones) > 1 {
		return p.Phones[1]
	}
	return Phone{}
}

// Case describes the originating case for a capture run. ID is the internal
// case id and may be zero when the case has not been persisted locally yet;
// linking is deferred in that situation.
type Case struct {
	ID         int64
	ExternalID int64
	Number     string
	Court      string
	Instance   string
}

// Attorney is the identity of the requesting attorney whose credential
// produced the capture. Parties represented by this attorney are classified
// as clients.
type Attorney struct {
	ID   int64
	CPF  string
	Name string
}
