package services

import (
	"testing"
	"time"
)

func TestFreshnessBoundary(t *testing.T) {
	threshold := 300 * time.Second
	received := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	receivedStr := received.Format(time.RFC3339Nano)

	if got := CheckFreshness(receivedStr, threshold, received.Add(threshold-time.Second)); got != FreshnessFresh {
		t.Fatalf("expected fresh one second before the threshold, got %v", got)
	}
	// strictly greater-than: age == threshold is still fresh
	if got := CheckFreshness(receivedStr, threshold, received.Add(threshold)); got != FreshnessFresh {
		t.Fatalf("expected fresh exactly at the threshold, got %v", got)
	}
	if got := CheckFreshness(receivedStr, threshold, received.Add(threshold+time.Second)); got != FreshnessStale {
		t.Fatalf("expected stale one second past the threshold, got %v", got)
	}
}

func TestFreshnessTimestampFormats(t *testing.T) {
	threshold := 300 * time.Second
	now := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)

	// trailing Z
	if got := CheckFreshness("2024-05-01T12:00:00Z", threshold, now); got != FreshnessFresh {
		t.Fatalf("expected fresh for Z-suffixed timestamp, got %v", got)
	}
	// explicit offset, as produced by agents using isoformat-style timestamps
	if got := CheckFreshness("2024-05-01T12:00:00.123456+00:00", threshold, now); got != FreshnessFresh {
		t.Fatalf("expected fresh for offset timestamp, got %v", got)
	}
	// non-UTC offset
	if got := CheckFreshness("2024-05-01T14:00:00+02:00", threshold, now); got != FreshnessFresh {
		t.Fatalf("expected fresh for +02:00 timestamp, got %v", got)
	}
}

func TestFreshnessUnparsable(t *testing.T) {
	got := CheckFreshness("not-a-timestamp", 300*time.Second, time.Now())
	if got != FreshnessUnparsable {
		t.Fatalf("expected unparsable verdict, got %v", got)
	}
	if !got.Down() {
		t.Fatal("unparsable timestamps must display as down")
	}
}
