// Package metrics tracks pipeline phase latencies within a rolling window.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Phase names the pipeline stages we time.
type Phase string

const (
	PhaseParse     Phase = "parse"
	PhaseNormalize Phase = "normalize"
	PhaseStructure Phase = "structure"
	PhaseIndex     Phase = "index"
	PhaseRank      Phase = "rank"
	PhaseSynthesis Phase = "synthesis"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// PhaseSnapshot is a point-in-time aggregate of one phase's latency samples.
type PhaseSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Recorder tracks recent phase latencies within a rolling window.
type Recorder struct {
	mu      sync.Mutex
	samples map[Phase][]sample
	maxAge  time.Duration
}

func NewRecorder(maxAge time.Duration) *Recorder {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Recorder{
		samples: make(map[Phase][]sample),
		maxAge:  maxAge,
	}
}

// Record adds one latency sample for a phase. Negative durations clamp to
// zero.
func (r *Recorder) Record(phase Phase, d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(phase, now)
	r.samples[phase] = append(r.samples[phase], sample{
		timestamp:  now,
		durationMs: ms,
	})
}

// Time records the elapsed time since start for a phase. Call it deferred:
//
//	defer rec.Time(metrics.PhaseRank, time.Now())
func (r *Recorder) Time(phase Phase, start time.Time) {
	r.Record(phase, time.Since(start))
}

// Snapshot aggregates every phase that has live samples.
func (r *Recorder) Snapshot() map[Phase]PhaseSnapshot {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Phase]PhaseSnapshot, len(r.samples))
	for phase := range r.samples {
		r.pruneLocked(phase, now)
		if snap, ok := r.snapshotLocked(phase); ok {
			out[phase] = snap
		}
	}
	return out
}

func (r *Recorder) snapshotLocked(phase Phase) (PhaseSnapshot, bool) {
	live := r.samples[phase]
	if len(live) == 0 {
		return PhaseSnapshot{}, false
	}

	values := make([]int64, 0, len(live))
	var sum int64
	for _, sm := range live {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return PhaseSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}, true
}

func (r *Recorder) pruneLocked(phase Phase, now time.Time) {
	cutoff := now.Add(-r.maxAge)
	live := r.samples[phase]
	writeIdx := 0
	for _, sm := range live {
		if !sm.timestamp.Before(cutoff) {
			live[writeIdx] = sm
			writeIdx++
		}
	}
	r.samples[phase] = live[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
