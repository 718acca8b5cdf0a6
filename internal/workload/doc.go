// Package workload implements the per-worker bookstore workload.
//
// A [Worker] runs two phases against a shared, read-only [Configuration]. The warm-up
// phase executes WarmUpRuns interactions and discards every outcome. Counters are then
// reset and the measured phase executes MeasuredRuns interactions, timing each one and
// the phase as a whole. The worker returns a single [Result].
//
// # Routing
//
// Each iteration draws r uniformly from [0, 100) and picks an interaction with [Route]:
//
//	r < RareThreshold      -> InteractionRare     (stock replenishment)
//	r < FrequentThreshold  -> InteractionFrequent (stock top-up)
//	otherwise              -> InteractionCustomer (editor picks purchase)
//
// # Failures
//
// A [*bookstore.Error] returned by the service, or [generator.ErrEmptySample] when
// there is nothing to buy, fails only the current iteration. Any other error or a panic
// becomes a [*CatastrophicError] and stops the worker. Context cancellation stops the
// worker with the context's error.
package workload
