package metrics

import (
	"testing"
	"time"
)

func TestRecorderSnapshotPercentiles(t *testing.T) {
	rec := NewRecorder(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		rec.Record(PhaseRank, time.Duration(ms)*time.Millisecond)
	}

	snap, ok := rec.Snapshot()[PhaseRank]
	if !ok {
		t.Fatal("expected rank phase snapshot")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestRecorderPhasesAreIsolated(t *testing.T) {
	rec := NewRecorder(time.Hour)
	rec.Record(PhaseParse, 100*time.Millisecond)
	rec.Record(PhaseIndex, 900*time.Millisecond)

	snaps := rec.Snapshot()
	if snaps[PhaseParse].MaxMs != 100 {
		t.Errorf("expected parse max=100, got %d", snaps[PhaseParse].MaxMs)
	}
	if snaps[PhaseIndex].MaxMs != 900 {
		t.Errorf("expected index max=900, got %d", snaps[PhaseIndex].MaxMs)
	}
	if _, ok := snaps[PhaseRank]; ok {
		t.Error("expected no snapshot for phase without samples")
	}
}

func TestRecorderPrunesExpiredSamples(t *testing.T) {
	rec := NewRecorder(10 * time.Millisecond)
	rec.Record(PhaseStructure, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := rec.Snapshot()[PhaseStructure]; ok {
		t.Fatal("expected expired samples pruned")
	}

	rec.Record(PhaseStructure, 200*time.Millisecond)
	snap := rec.Snapshot()[PhaseStructure]
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestRecorderClampsNegativeDuration(t *testing.T) {
	rec := NewRecorder(time.Hour)
	rec.Record(PhaseParse, -10*time.Millisecond)
	snap := rec.Snapshot()[PhaseParse]
	if snap.Count != 1 || snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped zero duration, got %+v", snap)
	}
}
