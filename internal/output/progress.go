package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/certainbookstore/bookbench/internal/metrics"
)

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	collector *metrics.Collector
	expected  int64
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
// expected is the number of measured interactions the run will perform, or 0 if unknown.
func NewProgressReporter(collector *metrics.Collector, expected int64, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		expected:  expected,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.line(time.Since(p.start)))
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) line(elapsed time.Duration) string {
	stats := p.collector.Stats(elapsed)
	line := fmt.Sprintf("\rMeasured: %d", stats.Total)
	if p.expected > 0 {
		line += fmt.Sprintf("/%d (%.0f%%)", p.expected, float64(stats.Total)/float64(p.expected)*100)
	}
	line += fmt.Sprintf(" | Successes: %d | Failures: %d | Rate: %.1f/s",
		stats.Successes, stats.Failures, stats.InteractionsPerSec)
	if customer, ok := stats.Interactions["customer"]; ok && customer.Total > 0 {
		line += fmt.Sprintf(" | Customer P99 %.1fms", customer.P99LatencyMs)
	}
	return line
}
