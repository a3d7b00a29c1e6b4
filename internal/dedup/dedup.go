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

// Package dedup provides capture deduplication using a Redis SET with TTL.
// Repeated scrapes of the same case frequently return byte-identical party
// payloads; skipping them saves a full pipeline pass per party list.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a seen capture digest is remembered. Party
	// lists change slowly; a day bounds staleness without letting real
	// updates slip past.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces dedup keys in Redis.
	keyPrefix = "partes:seen:"
)

// Filter tracks which capture payloads have already been processed.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFilter creates a dedup filter backed by Redis.
func NewFilter(rdb *redis.Client) *Filter {
	return &Filter{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// Key derives the dedup key for a capture: the source, case and a digest of
// the raw party payload. Two captures of the same case with different
// payloads get different keys.
func Key(sourceSystem string, externalCaseID int64, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s:%d:%s", sourceSystem, externalCaseID, hex.EncodeToString(sum[:]))
}

// IsNew returns true if the capture key has NOT been seen before.
// If true, the key is marked as seen atomically (SETNX).
func (f *Filter) IsNew(ctx context.Context, key string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, keyPrefix+key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}
