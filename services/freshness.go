// Copyright 2024 ServerWatch Authors All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"time"

	g "github.com/serverwatch/serverwatch/globals"
)

// Freshness - verdict on a record's received timestamp
type Freshness int

const (
	FreshnessFresh Freshness = iota
	FreshnessStale
	FreshnessUnparsable
)

// Down - true when the verdict displays as down/offline
func (f Freshness) Down() bool {
	return f != FreshnessFresh
}

// CheckFreshness parses receivedAt (ISO-8601 with a trailing Z or an explicit
// offset) and compares its age against threshold. The comparison is strictly
// greater-than: a record exactly at the threshold is still fresh. Unparsable
// timestamps are logged and count as stale so a broken agent shows down rather
// than permanently ok.
func CheckFreshness(receivedAt string, threshold time.Duration, now time.Time) Freshness {
	parsed, err := time.Parse(time.RFC3339Nano, receivedAt)
	if err != nil {
		g.Log.Warn("failed to parse received_at timestamp", receivedAt, err)
		return FreshnessUnparsable
	}
	if now.UTC().Sub(parsed) > threshold {
		return FreshnessStale
	}
	return FreshnessFresh
}
