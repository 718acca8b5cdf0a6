// Package runner provides the coordinator that executes a bookbench run.
//
// A [Coordinator] starts exactly Options.Workers workers, one goroutine each, waits for
// all of them and returns their results in worker order:
//
//	c, err := runner.New(runner.Options{
//		Workers:       10,
//		Configuration: &cfg,
//		RatePerSecond: 200,
//	})
//	if err != nil {
//		return err
//	}
//	res, err := c.Run(ctx)
//
// # Isolation
//
// Every worker owns its routing source, its sampling generator and a disjoint range of
// synthetic ISBNs. Both sources derive from Options.RandomSeed, so a run with a fixed seed
// routes identically every time. Only the workload.Configuration and the pacer are shared.
//
// # Arrival Models
//
// When RatePerSecond is set the workers share one pacer:
//   - [ArrivalModelUniform]: a token bucket from golang.org/x/time/rate
//   - [ArrivalModelPoisson]: exponentially distributed gaps between iterations
//
// # Failure Policy
//
// A worker that fails catastrophically, hits its WorkerTimeout or is canceled fails the
// whole run. The other workers are canceled and no partial results are returned.
package runner
