package runner

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/certainbookstore/bookbench/internal/workload"
)

// ArrivalModel selects how iterations are spaced when a rate is set.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// ErrNoWorkers is returned by New when fewer than one worker is requested.
var ErrNoWorkers = errors.New("runner: worker count must be at least 1")

// Options configure the Coordinator.
type Options struct {
	Workers       int                     // number of workers, one goroutine each
	Configuration *workload.Configuration // shared read-only by every worker (required)
	RandomSeed    int64                   // base seed for routing and sampling (0 picks one from the clock)
	WorkerTimeout time.Duration           // per-worker deadline (0 means none)

	RatePerSecond  int                         // iterations per second across all workers (0 means unlimited)
	ArrivalModel   ArrivalModel                // spacing of paced iterations
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	PoissonSampler func() float64              // optional injection for tests

	Observer      workload.Observer
	FailureLogger workload.FailureLogger
	Tracer        trace.Tracer
}

func (o *Options) normalize() {
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.WorkerTimeout < 0 {
		o.WorkerTimeout = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func (o *Options) validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("%w, got %d", ErrNoWorkers, o.Workers)
	}
	if o.Configuration == nil {
		return fmt.Errorf("%w: configuration is required", workload.ErrInvalidConfiguration)
	}
	switch o.ArrivalModel {
	case ArrivalModelUniform, ArrivalModelPoisson:
	default:
		return fmt.Errorf("runner: unknown arrival model %q", o.ArrivalModel)
	}
	return o.Configuration.Validate()
}
