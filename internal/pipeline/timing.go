package pipeline

import (
	"sort"
	"sync"
	"time"
)

// fileTimings collects per-file processing durations across one run.
type fileTimings struct {
	mu      sync.Mutex
	samples []int64 // milliseconds
}

func (t *fileTimings) record(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, ms)
}

// TimingSnapshot is a point-in-time aggregate of per-file latencies.
type TimingSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

func (t *fileTimings) snapshot() TimingSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.samples) == 0 {
		return TimingSnapshot{}
	}
	values := make([]int64, len(t.samples))
	copy(values, t.samples)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	var sum int64
	for _, v := range values {
		sum += v
	}
	return TimingSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
	}
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
