package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/certainbookstore/bookbench/internal/metrics"
	"github.com/certainbookstore/bookbench/internal/threshold"
	"github.com/certainbookstore/bookbench/internal/workload"
)

// Report is everything printed at the end of a run.
type Report struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Mode      string    `json:"mode" yaml:"mode"`
	Server    string    `json:"server,omitempty" yaml:"server,omitempty"`
	Seed      int64     `json:"seed" yaml:"seed"`

	WallClock   time.Duration `json:"-" yaml:"-"`
	WallClockMs float64       `json:"wall_clock_ms" yaml:"wall_clock_ms"`

	Summary    metrics.Summary    `json:"summary" yaml:"summary"`
	Latency    metrics.Stats      `json:"latency" yaml:"latency"`
	Workers    []workload.Result  `json:"workers,omitempty" yaml:"workers,omitempty"`
	Thresholds []ThresholdOutcome `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// ThresholdOutcome is the printable form of a threshold.Result.
type ThresholdOutcome struct {
	Threshold string  `json:"threshold" yaml:"threshold"`
	Expected  float64 `json:"expected" yaml:"expected"`
	Actual    float64 `json:"actual" yaml:"actual"`
	Pass      bool    `json:"pass" yaml:"pass"`
	Message   string  `json:"-" yaml:"-"`
}

// NewRunID returns a lexically sortable identifier for a run.
func NewRunID() string {
	return ulid.Make().String()
}

// ThresholdOutcomes converts evaluated thresholds for printing.
func ThresholdOutcomes(results []threshold.Result) []ThresholdOutcome {
	if len(results) == 0 {
		return nil
	}
	out := make([]ThresholdOutcome, len(results))
	for i, r := range results {
		out[i] = ThresholdOutcome{
			Threshold: r.Threshold.Raw,
			Expected:  r.Threshold.Value,
			Actual:    r.Actual,
			Pass:      r.Pass,
			Message:   r.Message,
		}
	}
	return out
}

// Write prints the report in the requested format: "text", "json" or "yaml".
func Write(w io.Writer, format string, r Report) error {
	r.WallClockMs = float64(r.WallClock) / float64(time.Millisecond)
	switch strings.ToLower(format) {
	case "", "text":
		PrintReport(w, r)
		return nil
	case "json":
		return PrintJSONReport(w, r)
	case "yaml":
		return PrintYAMLReport(w, r)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	s := r.Summary
	fmt.Fprintln(w, "\n--- Bookstore Workload Results ---")
	fmt.Fprintf(w, "Run:               %s (%s)\n", r.RunID, r.Mode)
	if r.Server != "" {
		fmt.Fprintf(w, "Server:            %s\n", r.Server)
	}
	fmt.Fprintf(w, "Seed:              %d\n", r.Seed)
	fmt.Fprintf(w, "Workers:           %d\n", s.Workers)
	fmt.Fprintf(w, "Wall clock:        %s\n", r.WallClock)
	fmt.Fprintf(w, "Total time:        %s\n", s.TotalElapsed)
	fmt.Fprintf(w, "Interactions:      %d successful of %d\n", s.SuccessfulInteractions, s.MeasuredRuns)
	fmt.Fprintf(w, "Customer:          %d successful of %d\n", s.SuccessfulCustomerInteractions, s.TotalCustomerInteractions)
	fmt.Fprintf(w, "Success rate:      %.4f\n", s.SuccessRate)
	fmt.Fprintf(w, "Customer rate:     %.4f\n", s.CustomerSuccessRate)
	fmt.Fprintf(w, "Throughput:        %.6g /ns (%.2f /s)\n", s.Throughput, s.ThroughputPerSecond)
	fmt.Fprintf(w, "Distribution:      %.4f\n", s.Distribution)

	fmt.Fprintln(w, "\nLatency:")
	writeLatency(w, "all", r.Latency.LatencyStats)
	for _, kind := range workload.Interactions {
		if ls, ok := r.Latency.Interactions[kind.String()]; ok && ls.Total > 0 {
			writeLatency(w, kind.String(), ls)
		}
	}

	if rows := metrics.FlattenFailureReasons(r.Latency.FailureReasons); len(rows) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %-9s %s: %d\n", row.Interaction, row.Reason, row.Count)
		}
	}

	if len(r.Thresholds) > 0 {
		fmt.Fprintln(w, "\nThresholds:")
		for _, t := range r.Thresholds {
			fmt.Fprintf(w, "  %s\n", t.Message)
		}
	}
}

func writeLatency(w io.Writer, name string, ls metrics.LatencyStats) {
	fmt.Fprintf(w, "  %-9s n=%d ok=%d mean=%s p50=%s p90=%s p99=%s max=%s\n",
		name, ls.Total, ls.Successes, ls.MeanLatency, ls.P50Latency, ls.P90Latency, ls.P99Latency, ls.MaxLatency)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
