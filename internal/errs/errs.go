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

// Package errs defines the error taxonomy of the ingestion pipeline.
//
// ValidationErrors mark malformed input and are never retried.
// PersistenceErrors mark store-level failures and are retried by the batch
// orchestrator when retries are enabled. Deliberate no-ops (skips) are not
// errors at all; they are represented as result fields by the callers.
package errs

import (
	"errors"
	"fmt"
)

// ErrDuplicate is the sentinel wrapped by the store when a write hits a
// unique-constraint violation. The resolver's lost-race recovery depends
// on being able to distinguish it from other persistence failures.
var ErrDuplicate = errors.New("duplicate key")

// IsDuplicate reports whether err stems from a unique-constraint conflict.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ValidationError marks a malformed input record or invalid arguments to a
// persistence call. It fails the item immediately, without retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// PersistenceError marks a store-level failure that conflict recovery could
// not absorb. Op names the failed operation ("insert", "upsert", "update",
// "lookup"); Kind names the entity kind it targeted.
type PersistenceError struct {
	Op      string
	Kind    string
	Err     error
	Context map[string]any
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("persistence: %s %s", e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// KindOf names the taxonomy bucket of an error, for reporting and the
// dead-letter payload.
func KindOf(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "validation"
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return "persistence"
	}
	return "unknown"
}
