package threshold

import (
	"strings"
	"testing"
	"time"

	"github.com/certainbookstore/bookbench/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "success rate",
			input: "success:rate >= 0.9",
			want: Threshold{
				Metric:    "success",
				Aggregate: "rate",
				Operator:  ">=",
				Value:     0.9,
				Raw:       "success:rate >= 0.9",
			},
		},
		{
			name:  "customer latency percentile",
			input: "customer_latency:p99 < 50",
			want: Threshold{
				Metric:    "customer_latency",
				Aggregate: "p99",
				Operator:  "<",
				Value:     50,
				Raw:       "customer_latency:p99 < 50",
			},
		},
		{
			name:  "distribution without spaces",
			input: "distribution:ratio<=1",
			want: Threshold{
				Metric:    "distribution",
				Aggregate: "ratio",
				Operator:  "<=",
				Value:     1,
				Raw:       "distribution:ratio<=1",
			},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  throughput:rate > 100  ",
			want: Threshold{
				Metric:    "throughput",
				Aggregate: "rate",
				Operator:  ">",
				Value:     100,
				Raw:       "throughput:rate > 100",
			},
		},
		{name: "empty", input: "", wantError: true},
		{name: "missing aggregate", input: "success < 1", wantError: true},
		{name: "unknown metric", input: "http_req_duration:p95 < 500", wantError: true},
		{name: "aggregate not valid for metric", input: "success:p99 < 5", wantError: true},
		{name: "unknown operator", input: "success:rate != 1", wantError: true},
		{name: "negative value", input: "failed:count < -1", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	got, err := ParseMultiple([]string{"success:rate > 0.5", "latency:p90 < 100"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ParseMultiple() returned %d thresholds, want 2", len(got))
	}

	if got, err := ParseMultiple(nil); err != nil || got != nil {
		t.Fatalf("ParseMultiple(nil) = %v, %v, want nil, nil", got, err)
	}

	_, err = ParseMultiple([]string{"success:rate > 0.5", "bogus", "customer:p50 < 1"})
	if err == nil {
		t.Fatal("ParseMultiple() expected error")
	}
	for _, want := range []string{"threshold[1]", "threshold[2]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func sampleRun() (metrics.Summary, metrics.Stats) {
	summary := metrics.Summary{
		MeasuredRuns:                   1000,
		SuccessfulInteractions:         950,
		TotalCustomerInteractions:      700,
		SuccessfulCustomerInteractions: 680,
		SuccessRate:                    0.95,
		CustomerSuccessRate:            680.0 / 700.0,
		ThroughputPerSecond:            120,
		Distribution:                   0.6,
	}
	stats := metrics.Stats{
		LatencyStats: metrics.LatencyStats{
			Total:         1000,
			MinLatencyMs:  1,
			MaxLatencyMs:  90,
			MeanLatencyMs: 10,
			P50LatencyMs:  8,
			P90LatencyMs:  20,
			P99LatencyMs:  60,
		},
		Duration: 10 * time.Second,
		Interactions: map[string]metrics.LatencyStats{
			"customer": {Total: 700, P99LatencyMs: 40, MeanLatencyMs: 7},
			"rare":     {Total: 100, P99LatencyMs: 85},
		},
	}
	return summary, stats
}

func TestEvaluator(t *testing.T) {
	summary, stats := sampleRun()

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "all thresholds pass",
			thresholds: []string{
				"success:rate >= 0.9",
				"customer:rate > 0.95",
				"throughput:rate > 100",
				"distribution:ratio <= 1",
			},
			wantPass: []bool{true, true, true, true},
		},
		{
			name: "some thresholds fail",
			thresholds: []string{
				"success:rate >= 0.99",
				"failed:count < 10",
				"customer:count > 600",
			},
			wantPass: []bool{false, false, true},
		},
		{
			name: "latency overall and per interaction",
			thresholds: []string{
				"latency:p99 < 50",
				"latency:p95 < 50",
				"customer_latency:p99 < 50",
				"rare_latency:p99 < 50",
			},
			wantPass: []bool{false, true, true, false},
		},
		{
			name:       "interaction with no samples fails",
			thresholds: []string{"frequent_latency:avg < 100"},
			wantPass:   []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}
			results := NewEvaluator(parsed).Evaluate(summary, stats)
			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}
			allPass := true
			for i, r := range results {
				if r.Pass != tt.wantPass[i] {
					t.Errorf("%s: pass = %v, want %v (%s)", r.Threshold.Raw, r.Pass, tt.wantPass[i], r.Message)
				}
				allPass = allPass && tt.wantPass[i]
			}
			if Passed(results) != allPass {
				t.Errorf("Passed() = %v, want %v", Passed(results), allPass)
			}
		})
	}
}

func TestEvaluatorNoThresholds(t *testing.T) {
	summary, stats := sampleRun()
	if got := NewEvaluator(nil).Evaluate(summary, stats); got != nil {
		t.Fatalf("Evaluate() = %v, want nil", got)
	}
	if !Passed(nil) {
		t.Fatal("Passed(nil) = false, want true")
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal equal", 100, "<=", 100, true},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
		{"unknown operator", 1, "=>", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractMetricValue(t *testing.T) {
	summary, stats := sampleRun()

	tests := []struct {
		raw  string
		want float64
	}{
		{"success:rate > 0", 0.95},
		{"failed:rate > 0", 0.05},
		{"failed:count > 0", 50},
		{"customer:count > 0", 680},
		{"throughput:rate > 0", 120},
		{"distribution:ratio > 0", 0.6},
		{"latency:avg > 0", 10},
		{"latency:min > 0", 1},
		{"latency:max > 0", 90},
		{"latency:p50 > 0", 8},
		{"customer_latency:avg > 0", 7},
	}
	for _, tt := range tests {
		th, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.raw, err)
		}
		got, err := extractMetricValue(th, summary, stats)
		if err != nil {
			t.Fatalf("extractMetricValue(%q) error = %v", tt.raw, err)
		}
		if !compareValues(got, "==", tt.want) {
			t.Errorf("extractMetricValue(%q) = %g, want %g", tt.raw, got, tt.want)
		}
	}
}
