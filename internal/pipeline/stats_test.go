package pipeline

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, ms == 500)
	}

	snap := stats.Snapshot()
	want := StatsSnapshot{Runs: 5, Failed: 1, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if snap != want {
		t.Fatalf("expected %+v, got %+v", want, snap)
	}
}

func TestStatsExpiresOldRuns(t *testing.T) {
	now := time.Unix(1000, 0)
	stats := NewStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(time.Second, false)
	now = now.Add(2 * time.Minute)
	if snap := stats.Snapshot(); snap.Runs != 0 {
		t.Fatalf("expected expired run to be dropped, got %+v", snap)
	}

	stats.Record(2*time.Second, true)
	snap := stats.Snapshot()
	if snap.Runs != 1 || snap.Failed != 1 || snap.MinMs != 2000 || snap.MaxMs != 2000 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStatsClampsNegativeDuration(t *testing.T) {
	stats := NewStats(0)
	stats.Record(-time.Second, false)
	if snap := stats.Snapshot(); snap.Runs != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped run, got %+v", snap)
	}
}
