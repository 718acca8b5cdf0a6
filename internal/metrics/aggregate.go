package metrics

import (
	"time"

	"github.com/certainbookstore/bookbench/internal/workload"
)

// Summary is the run-wide reduction of every worker result.
type Summary struct {
	Workers int `json:"workers" yaml:"workers"`

	MeasuredRuns                   int64 `json:"measured_runs" yaml:"measured_runs"`
	SuccessfulInteractions         int64 `json:"successful_interactions" yaml:"successful_interactions"`
	TotalCustomerInteractions      int64 `json:"total_customer_interactions" yaml:"total_customer_interactions"`
	SuccessfulCustomerInteractions int64 `json:"successful_customer_interactions" yaml:"successful_customer_interactions"`

	// TotalElapsed sums the measured-phase wall time of every worker.
	TotalElapsed    time.Duration `json:"-" yaml:"-"`
	TransactionTime time.Duration `json:"-" yaml:"-"`

	SuccessRate         float64 `json:"success_rate" yaml:"success_rate"`
	CustomerSuccessRate float64 `json:"customer_success_rate" yaml:"customer_success_rate"`
	// Throughput is the sum of every worker's successful customer interactions per
	// nanosecond of its own measured phase.
	Throughput          float64 `json:"throughput_per_ns" yaml:"throughput_per_ns"`
	ThroughputPerSecond float64 `json:"throughput_per_sec" yaml:"throughput_per_sec"`
	Distribution        float64 `json:"distribution" yaml:"distribution"`

	TotalElapsedMs    float64 `json:"total_elapsed_ms" yaml:"total_elapsed_ms"`
	TransactionTimeMs float64 `json:"transaction_time_ms" yaml:"transaction_time_ms"`
}

// Aggregate reduces worker results into a Summary. Ratios with a zero denominator are 0.
func Aggregate(results []workload.Result) Summary {
	s := Summary{Workers: len(results)}
	for _, r := range results {
		s.MeasuredRuns += r.MeasuredRuns
		s.SuccessfulInteractions += r.SuccessfulInteractions
		s.TotalCustomerInteractions += r.TotalCustomerInteractions
		s.SuccessfulCustomerInteractions += r.SuccessfulCustomerInteractions
		s.TotalElapsed += r.Elapsed
		s.TransactionTime += r.TransactionTime
		if r.Elapsed > 0 {
			s.Throughput += float64(r.SuccessfulCustomerInteractions) / float64(r.Elapsed.Nanoseconds())
		}
	}

	s.SuccessRate = ratio(s.SuccessfulInteractions, s.MeasuredRuns)
	s.CustomerSuccessRate = ratio(s.SuccessfulCustomerInteractions, s.TotalCustomerInteractions)
	s.Distribution = ratio(s.TransactionTime.Nanoseconds(), s.TotalElapsed.Nanoseconds())
	s.ThroughputPerSecond = s.Throughput * float64(time.Second)
	s.TotalElapsedMs = float64(s.TotalElapsed) / float64(time.Millisecond)
	s.TransactionTimeMs = float64(s.TransactionTime) / float64(time.Millisecond)
	return s
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
