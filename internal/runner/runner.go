package runner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
	"github.com/certainbookstore/bookbench/internal/workload"
)

// isbnStride separates the synthetic ISBN ranges of workers.
const isbnStride = 1_000_000

// Result holds the per-worker results of a completed run, in worker order.
type Result struct {
	Workers  []workload.Result
	Duration time.Duration // wall clock of the whole coordinator run
	Seed     int64         // base seed actually used
}

// Coordinator runs a fixed pool of workers to completion.
type Coordinator struct {
	opt     Options
	arrival workload.Pacer
}

// New validates opt and returns a Coordinator.
func New(opt Options) (*Coordinator, error) {
	opt.normalize()
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &Coordinator{opt: opt, arrival: newArrivalController(opt)}, nil
}

// Seed returns the base seed the workers derive their random sources from.
func (c *Coordinator) Seed() int64 {
	return c.opt.RandomSeed
}

// Run starts every worker and blocks until all of them finish. If any worker fails the
// remaining ones are canceled and the first error is returned with no results.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	workers := c.workers()
	results := make([]workload.Result, len(workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(workers))
	for i, w := range workers {
		g.Go(func() error {
			wctx := gctx
			if c.opt.WorkerTimeout > 0 {
				var cancel context.CancelFunc
				wctx, cancel = context.WithTimeout(gctx, c.opt.WorkerTimeout)
				defer cancel()
			}
			res, err := w.Run(wctx)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Workers:  results,
		Duration: time.Since(start),
		Seed:     c.opt.RandomSeed,
	}, nil
}

// workers builds one worker per slot, each with private routing and sampling sources
// and a disjoint synthetic ISBN range.
func (c *Coordinator) workers() []*workload.Worker {
	opts := []workload.Option{
		workload.WithPacer(c.arrival),
		workload.WithObserver(c.opt.Observer),
		workload.WithFailureLogger(c.opt.FailureLogger),
		workload.WithTracer(c.opt.Tracer),
	}

	workers := make([]*workload.Worker, c.opt.Workers)
	for i := range workers {
		seed := c.opt.RandomSeed + int64(2*i)
		gen := generator.New(rand.New(rand.NewSource(seed+1)), bookstore.ISBN((i+1)*isbnStride))
		workers[i] = workload.NewWorker(i, c.opt.Configuration, gen, rand.New(rand.NewSource(seed)), opts...)
	}
	return workers
}
