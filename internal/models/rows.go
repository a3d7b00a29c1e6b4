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

package models

import "encoding/json"

// Entity is a canonical party row to be inserted into the
// category-appropriate store. TaxID holds the normalized document digits;
// empty means a no-document record. Role and Side are persisted for third
// parties only.
type Entity struct {
	Category       Category
	TaxID          string
	Kind           PersonKind
	Name           string
	Emails         []string
	MobileDDD      string
	MobileNumber   string
	LandlineDDD    string
	LandlineNumber string
	Role           Role
	Side           Side
	Active         bool
	Raw            json.RawMessage
}

// Representative is a canonical legal-representative row, keyed by tax id.
// One row exists per CPF regardless of how many parties the person
// represents; upserts keep contact fields current.
type Representative struct {
	TaxID        string
	Name         string
	BarNumber    string
	BarState     string
	BarStatus    string
	Type         string
	Email        string
	MobileDDD    string
	MobileNumber string
	Raw          json.RawMessage
}

// Address is a canonical address row keyed by
// (external id, owner category, owner id). Court, Instance and CaseNumber
// are stamped only on representative-owned addresses for traceability.
type Address struct {
	ExternalID       int64
	OwnerCategory    Category
	OwnerID          int64
	Street           string
	Number           string
	Complement       string
	District         string
	MunicipalityID   int64
	Municipality     string
	MunicipalityIBGE string
	StateCode        string
	StateName        string
	CountryCode      string
	CountryName      string
	PostalCode       string
	Correspondence   bool
	Situation        string
	Classifications  []string
	Court            string
	Instance         string
	CaseNumber       string
	Raw              json.RawMessage
}

// CaseParty is the party↔case association row. OrderIndex is the party's
// position within its originating case's party list, not its position
// within any concurrency partition.
type CaseParty struct {
	CaseID           int64
	OwnerCategory    Category
	OwnerID          int64
	ExternalPartyID  int64
	ExternalPersonID int64
	Role             Role
	Side             Side
	OrderIndex       int
	Principal        bool
	Raw              json.RawMessage
}

// SourceMapping cross-references a canonical entity with its identity in
// the originating court system, allowing re-resolution of entities that
// lack a tax id across repeated captures.
type SourceMapping struct {
	OwnerCategory    Category
	OwnerID          int64
	ExternalPersonID int64
	SourceSystem     string
	Court            string
	Instance         string
	Raw              json.RawMessage
}
