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

// Package validate holds the contact-field format checks applied while
// mapping scraped records to canonical rows. Malformed fields are dropped,
// never fatal: the court system ships plenty of garbage contact data.
package validate

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email reports whether s looks like a deliverable email address.
func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeCEP strips formatting from a Brazilian postal code.
func NormalizeCEP(s string) string {
	return digits(s)
}

// CEP reports whether s is a well-formed postal code (8 digits after
// normalization).
func CEP(s string) bool {
	return len(digits(s)) == 8
}

// Phone reports whether a DDD + number pair is well formed: a 2-digit area
// code and an 8 or 9 digit number.
func Phone(ddd, number string) bool {
	n := len(digits(number))
	return len(digits(ddd)) == 2 && (n == 8 || n == 9)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
