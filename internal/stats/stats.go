// Package stats keeps a rolling window of search operation latencies.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	timestamp time.Time
	op        string
	micros    int64
	matches   int
}

// OpSnapshot aggregates the samples of one operation kind.
type OpSnapshot struct {
	Count   int     `json:"count"`
	Matches int     `json:"matches"`
	MinUs   int64   `json:"min_us"`
	MaxUs   int64   `json:"max_us"`
	AvgUs   float64 `json:"avg_us"`
	P50Us   float64 `json:"p50_us"`
	P95Us   float64 `json:"p95_us"`
	P99Us   float64 `json:"p99_us"`
}

// Window tracks recent operation latencies within a rolling window.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record stores one operation. matches is the result size for searches;
// other operations pass zero.
func (w *Window) Record(op string, d time.Duration, matches int) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	w.samples = append(w.samples, sample{
		timestamp: now,
		op:        op,
		micros:    us,
		matches:   matches,
	})
}

// Snapshot aggregates the live samples per operation.
func (w *Window) Snapshot() map[string]OpSnapshot {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	byOp := make(map[string][]sample)
	for _, s := range w.samples {
		byOp[s.op] = append(byOp[s.op], s)
	}

	out := make(map[string]OpSnapshot, len(byOp))
	for op, samples := range byOp {
		out[op] = aggregate(samples)
	}
	return out
}

func aggregate(samples []sample) OpSnapshot {
	values := make([]int64, 0, len(samples))
	var sum int64
	matches := 0
	for _, s := range samples {
		values = append(values, s.micros)
		sum += s.micros
		matches += s.matches
	}
	slices.Sort(values)

	return OpSnapshot{
		Count:   len(values),
		Matches: matches,
		MinUs:   values[0],
		MaxUs:   values[len(values)-1],
		AvgUs:   float64(sum) / float64(len(values)),
		P50Us:   percentile(values, 50),
		P95Us:   percentile(values, 95),
		P99Us:   percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.timestamp.Before(cutoff)
	})
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
