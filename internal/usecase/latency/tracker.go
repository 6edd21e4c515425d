package latency

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds the sample retention when none is configured.
const DefaultCapacity = 8192

// Summary is a point-in-time percentile summary of recorded samples.
// Durations are exchange-to-local feed latencies.
type Summary struct {
	Count uint64        `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
}

// Tracker records feed latency samples into a bounded ring and computes
// percentiles over the retained window. Safe for one writer and any number
// of concurrent readers.
type Tracker struct {
	mu       sync.RWMutex
	samples  []int64
	next     int
	filled   bool
	recorded uint64
}

// NewTracker creates a tracker retaining up to capacity samples. A
// non-positive capacity falls back to DefaultCapacity.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		samples: make([]int64, capacity),
	}
}

// Record appends one latency sample, overwriting the oldest once the ring
// is full.
func (t *Tracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples[t.next] = int64(d)
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.filled = true
	}
	t.recorded++
}

// Count returns the total number of samples ever recorded.
func (t *Tracker) Count() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recorded
}

// Percentiles computes min/max/mean/p50/p90/p99 over the retained window.
// A tracker with no samples returns a zero Summary.
func (t *Tracker) Percentiles() Summary {
	t.mu.RLock()
	n := t.next
	if t.filled {
		n = len(t.samples)
	}
	window := make([]int64, n)
	copy(window, t.samples[:n])
	recorded := t.recorded
	t.mu.RUnlock()

	if n == 0 {
		return Summary{}
	}

	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })

	sum := int64(0)
	for _, v := range window {
		sum += v
	}

	return Summary{
		Count: recorded,
		Min:   time.Duration(window[0]),
		Max:   time.Duration(window[n-1]),
		Mean:  time.Duration(sum / int64(n)),
		P50:   time.Duration(percentile(window, 50)),
		P90:   time.Duration(percentile(window, 90)),
		P99:   time.Duration(percentile(window, 99)),
	}
}

// percentile uses nearest-rank on an ascending-sorted window.
func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
