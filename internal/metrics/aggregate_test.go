package metrics_test

import (
	"math"
	"testing"
	"time"

	"github.com/certainbookstore/bookbench/internal/metrics"
	"github.com/certainbookstore/bookbench/internal/workload"
)

func TestAggregateFormulas(t *testing.T) {
	results := []workload.Result{
		{
			SuccessfulInteractions:         80,
			MeasuredRuns:                   100,
			SuccessfulCustomerInteractions: 60,
			TotalCustomerInteractions:      70,
			Elapsed:                        2 * time.Second,
			TransactionTime:                time.Second,
		},
		{
			SuccessfulInteractions:         100,
			MeasuredRuns:                   100,
			SuccessfulCustomerInteractions: 30,
			TotalCustomerInteractions:      30,
			Elapsed:                        time.Second,
			TransactionTime:                500 * time.Millisecond,
		},
	}

	s := metrics.Aggregate(results)

	if s.Workers != 2 {
		t.Errorf("Workers = %d, want 2", s.Workers)
	}
	if want := 180.0 / 200.0; s.SuccessRate != want {
		t.Errorf("SuccessRate = %g, want %g", s.SuccessRate, want)
	}
	if want := 90.0 / 100.0; s.CustomerSuccessRate != want {
		t.Errorf("CustomerSuccessRate = %g, want %g", s.CustomerSuccessRate, want)
	}
	// Sum of per-worker rates, not total successes over total elapsed.
	wantThroughput := 60.0/2e9 + 30.0/1e9
	if math.Abs(s.Throughput-wantThroughput) > 1e-18 {
		t.Errorf("Throughput = %g, want %g", s.Throughput, wantThroughput)
	}
	if math.Abs(s.ThroughputPerSecond-60) > 1e-9 {
		t.Errorf("ThroughputPerSecond = %g, want 60", s.ThroughputPerSecond)
	}
	if want := 1.5 / 3.0; math.Abs(s.Distribution-want) > 1e-12 {
		t.Errorf("Distribution = %g, want %g", s.Distribution, want)
	}
	if s.TotalElapsed != 3*time.Second {
		t.Errorf("TotalElapsed = %s, want 3s", s.TotalElapsed)
	}
	if s.TotalElapsedMs != 3000 {
		t.Errorf("TotalElapsedMs = %g, want 3000", s.TotalElapsedMs)
	}
}

func TestAggregateZeroDenominators(t *testing.T) {
	tests := []struct {
		name    string
		results []workload.Result
	}{
		{"no workers", nil},
		{"no measured runs", []workload.Result{{}}},
		{"no customer interactions", []workload.Result{{MeasuredRuns: 10, SuccessfulInteractions: 10, Elapsed: time.Second}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := metrics.Aggregate(tt.results)
			for name, v := range map[string]float64{
				"SuccessRate":         s.SuccessRate,
				"CustomerSuccessRate": s.CustomerSuccessRate,
				"Throughput":          s.Throughput,
				"Distribution":        s.Distribution,
			} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("%s = %g, want finite", name, v)
				}
				if v < 0 || v > 1 {
					t.Errorf("%s = %g, want within [0,1]", name, v)
				}
			}
		})
	}
}

func TestAggregateAllFailing(t *testing.T) {
	results := []workload.Result{
		{MeasuredRuns: 50, TotalCustomerInteractions: 50, Elapsed: time.Second, TransactionTime: time.Second / 2},
		{MeasuredRuns: 50, TotalCustomerInteractions: 50, Elapsed: time.Second, TransactionTime: time.Second / 2},
	}
	s := metrics.Aggregate(results)
	if s.SuccessRate != 0 || s.CustomerSuccessRate != 0 || s.Throughput != 0 {
		t.Fatalf("summary = %+v, want zero rates", s)
	}
}
