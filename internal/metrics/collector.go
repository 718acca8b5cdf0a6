package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/certainbookstore/bookbench/internal/workload"
)

// Collector records measured interactions in a thread-safe manner. It implements
// workload.Observer.
type Collector struct {
	mu    sync.Mutex
	kinds map[workload.Interaction]*interactionStats
	start time.Time
}

type interactionStats struct {
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	reasons    map[string]int64
}

// LatencyStats summarizes the latency distribution of a group of interactions.
type LatencyStats struct {
	Total       int64         `json:"total" yaml:"total"`
	Successes   int64         `json:"successes" yaml:"successes"`
	Failures    int64         `json:"failures" yaml:"failures"`
	MinLatency  time.Duration `json:"-" yaml:"-"`
	MaxLatency  time.Duration `json:"-" yaml:"-"`
	MeanLatency time.Duration `json:"-" yaml:"-"`
	P50Latency  time.Duration `json:"-" yaml:"-"`
	P90Latency  time.Duration `json:"-" yaml:"-"`
	P99Latency  time.Duration `json:"-" yaml:"-"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
}

// Stats represents the collected measurements at a point in time.
type Stats struct {
	LatencyStats `yaml:",inline"`

	Duration           time.Duration `json:"-" yaml:"-"`
	DurationMs         float64       `json:"duration_ms" yaml:"duration_ms"`
	InteractionsPerSec float64       `json:"interactions_per_sec" yaml:"interactions_per_sec"`

	Interactions map[string]LatencyStats `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	// Failures by interaction, then by reason.
	FailureReasons map[string]map[string]int `json:"failure_reasons,omitempty" yaml:"failure_reasons,omitempty"`
}

func NewCollector() *Collector {
	c := &Collector{
		kinds: make(map[workload.Interaction]*interactionStats, len(workload.Interactions)),
		start: time.Now(),
	}
	for _, kind := range workload.Interactions {
		c.kinds[kind] = newInteractionStats()
	}
	return c
}

func newInteractionStats() *interactionStats {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &interactionStats{
		hist:    hdrhistogram.New(1, 60_000_000, 3),
		reasons: make(map[string]int64),
	}
}

// RecordInteraction records one measured interaction's latency and outcome.
func (c *Collector) RecordInteraction(kind workload.Interaction, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.kinds[kind]
	if !ok {
		s = newInteractionStats()
		c.kinds[kind] = s
	}

	if latency > 0 {
		us := latency.Microseconds()
		if us < s.hist.LowestTrackableValue() {
			us = s.hist.LowestTrackableValue()
		}
		if us > s.hist.HighestTrackableValue() {
			us = s.hist.HighestTrackableValue()
		}
		_ = s.hist.RecordValue(us)
	}
	s.sumLatency += latency

	if s.minLatency == 0 || latency < s.minLatency {
		s.minLatency = latency
	}
	if latency > s.maxLatency {
		s.maxLatency = latency
	}

	if err == nil {
		s.successes++
	} else {
		s.failures++
		s.reasons[FailureReason(err)]++
	}
}

// Elapsed returns the time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Stats computes statistics over everything recorded so far.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	overall := newInteractionStats()
	stats := Stats{Interactions: make(map[string]LatencyStats, len(c.kinds))}
	for kind, s := range c.kinds {
		stats.Interactions[kind.String()] = s.summarize()
		overall.merge(s)

		if len(s.reasons) > 0 {
			if stats.FailureReasons == nil {
				stats.FailureReasons = make(map[string]map[string]int)
			}
			reasons := make(map[string]int, len(s.reasons))
			for reason, n := range s.reasons {
				reasons[reason] = int(n)
			}
			stats.FailureReasons[kind.String()] = reasons
		}
	}
	stats.LatencyStats = overall.summarize()

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && stats.Total > 0 {
		stats.InteractionsPerSec = float64(stats.Total) / elapsed.Seconds()
	}
	return stats
}

func (s *interactionStats) merge(other *interactionStats) {
	s.hist.Merge(other.hist)
	s.successes += other.successes
	s.failures += other.failures
	s.sumLatency += other.sumLatency
	if other.minLatency > 0 && (s.minLatency == 0 || other.minLatency < s.minLatency) {
		s.minLatency = other.minLatency
	}
	if other.maxLatency > s.maxLatency {
		s.maxLatency = other.maxLatency
	}
}

func (s *interactionStats) summarize() LatencyStats {
	total := s.successes + s.failures
	out := LatencyStats{
		Total:      total,
		Successes:  s.successes,
		Failures:   s.failures,
		MinLatency: s.minLatency,
		MaxLatency: s.maxLatency,
	}

	if total > 0 {
		out.MeanLatency = time.Duration(int64(s.sumLatency) / total)
	}

	if s.hist.TotalCount() > 0 {
		out.P50Latency = time.Duration(s.hist.ValueAtQuantile(50)) * time.Microsecond
		out.P90Latency = time.Duration(s.hist.ValueAtQuantile(90)) * time.Microsecond
		out.P99Latency = time.Duration(s.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	out.MinLatencyMs = float64(out.MinLatency) / float64(time.Millisecond)
	out.MaxLatencyMs = float64(out.MaxLatency) / float64(time.Millisecond)
	out.MeanLatencyMs = float64(out.MeanLatency) / float64(time.Millisecond)
	out.P50LatencyMs = float64(out.P50Latency) / float64(time.Millisecond)
	out.P90LatencyMs = float64(out.P90Latency) / float64(time.Millisecond)
	out.P99LatencyMs = float64(out.P99Latency) / float64(time.Millisecond)
	return out
}
