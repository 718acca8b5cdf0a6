// Package metrics turns worker results and measured interactions into run statistics.
//
// [Aggregate] is a pure reduction over the per-worker results of a run:
//
//	successRate         = Σ successful / Σ measured runs
//	customerSuccessRate = Σ successful customer / Σ customer attempts
//	throughput          = Σ (successful customer_i / elapsed_i)   per nanosecond
//	distribution        = Σ transaction time / Σ elapsed
//
// The [Collector] is a workload.Observer that keeps an HDR histogram per interaction
// for latency percentiles, success counts and failure reasons. It is safe to call
// RecordInteraction from multiple goroutines and Stats while a run is in progress.
package metrics
