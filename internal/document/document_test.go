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

package document

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"529.982.247-25":     "52998224725",
		"11.222.333/0001-81": "11222333000181",
		"52998224725":        "52998224725",
		"529 982 247 25":     "52998224725",
		"":                   "",
		"abc":                "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasValidLength(t *testing.T) {
	tests := []struct {
		doc  string
		kind string
		want bool
	}{
		{"529.982.247-25", KindCPF, true},
		{"52998224725", KindCPF, true},
		{"5299822472", KindCPF, false},
		{"11.222.333/0001-81", KindCNPJ, true},
		{"11222333000181", KindCNPJ, true},
		{"52998224725", KindCNPJ, false},
		{"", KindCPF, false},
		{"52998224725", "RG", false},
	}

	for _, tc := range tests {
		if got := HasValidLength(tc.doc, tc.kind); got != tc.want {
			t.Errorf("HasValidLength(%q, %s) = %v, want %v", tc.doc, tc.kind, got, tc.want)
		}
	}
}

// TestHasValidLength_ChecksumLeniency pins down the deliberate gating
// behavior: a right-length document with wrong check digits still passes
// the length gate even though the full validator rejects it.
func TestHasValidLength_ChecksumLeniency(t *testing.T) {
	const badChecksum = "52998224799"

	if !HasValidLength(badChecksum, KindCPF) {
		t.Error("length gate should accept an 11-digit CPF regardless of checksum")
	}
	if ValidCPF(badChecksum) {
		t.Error("full validator should reject a checksum-invalid CPF")
	}
}

func TestValidCPF(t *testing.T) {
	valid := []string{"52998224725", "111.444.777-35"}
	for _, doc := range valid {
		if !ValidCPF(doc) {
			t.Errorf("ValidCPF(%q) = false, want true", doc)
		}
	}

	invalid := []string{"", "00000000000", "11111111111", "52998224724", "529982247"}
	for _, doc := range invalid {
		if ValidCPF(doc) {
			t.Errorf("ValidCPF(%q) = true, want false", doc)
		}
	}
}

func TestValidCNPJ(t *testing.T) {
	if !ValidCNPJ("11.222.333/0001-81") {
		t.Error("ValidCNPJ should accept a checksum-valid CNPJ")
	}

	invalid := []string{"", "11222333000180", "00000000000000", "1122233300018"}
	for _, doc := range invalid {
		if ValidCNPJ(doc) {
			t.Errorf("ValidCNPJ(%q) = true, want false", doc)
		}
	}
}
