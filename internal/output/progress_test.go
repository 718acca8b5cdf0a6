package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/certainbookstore/bookbench/internal/metrics"
	"github.com/certainbookstore/bookbench/internal/workload"
)

func TestProgressReporterLine(t *testing.T) {
	collector := metrics.NewCollector()
	for i := 0; i < 10; i++ {
		collector.RecordInteraction(workload.InteractionCustomer, 5*time.Millisecond, nil)
	}

	reporter := NewProgressReporter(collector, 40, time.Hour, nil)
	defer reporter.ticker.Stop()

	line := reporter.line(time.Second)
	for _, want := range []string{"Measured: 10/40 (25%)", "Successes: 10", "Rate: 10.0/s", "Customer P99"} {
		if !strings.Contains(line, want) {
			t.Errorf("progress line %q missing %q", line, want)
		}
	}
}

func TestProgressReporterStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(metrics.NewCollector(), 0, 100*time.Millisecond, &buf)
	reporter.Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop() before Start() wrote %q", buf.String())
	}
}

func TestProgressReporterWritesUpdates(t *testing.T) {
	collector := metrics.NewCollector()
	collector.RecordInteraction(workload.InteractionRare, time.Millisecond, nil)

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 0, 10*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start()
	time.Sleep(60 * time.Millisecond)
	reporter.Stop()

	output := buf.String()
	if !strings.Contains(output, "Measured: 1") {
		t.Errorf("expected progress output, got %q", output)
	}
	if strings.Contains(output, "/0") {
		t.Errorf("unknown total should not be printed: %q", output)
	}
}
