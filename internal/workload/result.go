package workload

import "time"

// Result summarizes the measured phase of one worker.
type Result struct {
	Worker int `json:"worker" yaml:"worker"`

	// SuccessfulInteractions counts measured iterations of any kind that completed.
	SuccessfulInteractions int64 `json:"successful_interactions" yaml:"successful_interactions"`
	MeasuredRuns           int64 `json:"measured_runs" yaml:"measured_runs"`

	SuccessfulCustomerInteractions int64 `json:"successful_customer_interactions" yaml:"successful_customer_interactions"`
	TotalCustomerInteractions      int64 `json:"total_customer_interactions" yaml:"total_customer_interactions"`

	// Elapsed is the wall time of the whole measured phase.
	Elapsed time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
	// TransactionTime sums the latency of every measured customer interaction.
	TransactionTime time.Duration `json:"transaction_ns" yaml:"transaction_ns"`
}
