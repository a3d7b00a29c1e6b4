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

// Package document validates and normalizes Brazilian tax identifiers:
// CPF (individuals, 11 digits) and CNPJ (organizations, 14 digits).
//
// The pipeline's routing decision uses only the length check
// (HasValidLength): a right-length document with a wrong checksum still
// counts as "has a valid document". Full check-digit validators are
// provided for callers that need them.
package document

// Document kinds as reported by the court API.
const (
	KindCPF  = "CPF"
	KindCNPJ = "CNPJ"

	cpfLength  = 11
	cnpjLength = 14
)

// Normalize strips everything that is not a digit from a document string.
// Empty or absent input yields the empty string.
func Normalize(doc string) string {
	if doc == "" {
		return ""
	}
	out := make([]byte, 0, len(doc))
	for i := 0; i < len(doc); i++ {
		if doc[i] >= '0' && doc[i] <= '9' {
			out = append(out, doc[i])
		}
	}
	return string(out)
}

// HasValidLength reports whether the normalized document has exactly the
// digit count its kind requires. This is the pipeline's gating check.
func HasValidLength(doc, kind string) bool {
	n := len(Normalize(doc))
	switch kind {
	case KindCPF:
		return n == cpfLength
	case KindCNPJ:
		return n == cnpjLength
	default:
		return false
	}
}

// ValidCPF reports whether the document is a checksum-valid CPF.
// Repeated-digit sequences (00000000000 etc.) are rejected even though
// their check digits compute.
func ValidCPF(doc string) bool {
	d := Normalize(doc)
	if len(d) != cpfLength || allSameDigit(d) {
		return false
	}
	if checkDigit(d[:9], 10) != int(d[9]-'0') {
		return false
	}
	return checkDigit(d[:10], 11) == int(d[10]-'0')
}

// ValidCNPJ reports whether the document is a checksum-valid CNPJ.
func ValidCNPJ(doc string) bool {
	d := Normalize(doc)
	if len(d) != cnpjLength || allSameDigit(d) {
		return false
	}
	if cnpjCheckDigit(d[:12]) != int(d[12]-'0') {
		return false
	}
	return cnpjCheckDigit(d[:13]) == int(d[13]-'0')
}

// checkDigit computes a CPF verification digit: digits weighted from
// startWeight down to 2, mod-11 remainder folded to zero when < 2.
func checkDigit(digits string, startWeight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// cnpjCheckDigit computes a CNPJ verification digit with the cyclic
// 2..9 weight sequence applied right to left.
func cnpjCheckDigit(digits string) int {
	weight := 2
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSameDigit(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
