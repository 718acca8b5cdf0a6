package runner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/runner"
	"github.com/certainbookstore/bookbench/internal/workload"
)

// fakeStore serves a fixed set of editor picks and counts purchases.
type fakeStore struct {
	picks   []bookstore.Book
	buys    int64
	buyErr  error
	latency time.Duration
}

func (f *fakeStore) GetBooks(context.Context) ([]bookstore.StockBook, error) { return nil, nil }
func (f *fakeStore) AddBooks(context.Context, []bookstore.StockBook) error   { return nil }
func (f *fakeStore) AddCopies(context.Context, []bookstore.BookCopy) error   { return nil }

func (f *fakeStore) GetEditorPicks(_ context.Context, n int) ([]bookstore.Book, error) {
	if n > len(f.picks) {
		n = len(f.picks)
	}
	return f.picks[:n], nil
}

func (f *fakeStore) BuyBooks(ctx context.Context, _ []bookstore.BookCopy) error {
	atomic.AddInt64(&f.buys, 1)
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.buyErr
}

func newFakeStore() *fakeStore {
	f := &fakeStore{}
	for i := 1; i <= 10; i++ {
		f.picks = append(f.picks, bookstore.Book{ISBN: bookstore.ISBN(i)})
	}
	return f
}

func customerConfig(svc bookstore.Service, measured int) *workload.Configuration {
	return &workload.Configuration{
		RareThreshold:      0,
		FrequentThreshold:  0,
		MeasuredRuns:       measured,
		EditorPicksToFetch: 10,
		DistinctBooksToBuy: 5,
		CopiesPerBookToBuy: 1,
		StockManager:       svc,
		BookStore:          svc,
	}
}

func TestCoordinatorRunsEveryWorkerToCompletion(t *testing.T) {
	svc := newFakeStore()
	c, err := runner.New(runner.Options{
		Workers:       4,
		Configuration: customerConfig(svc, 1000),
		RandomSeed:    99,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Workers) != 4 {
		t.Fatalf("got %d worker results, want 4", len(res.Workers))
	}
	for i, w := range res.Workers {
		if w.Worker != i {
			t.Errorf("result %d belongs to worker %d", i, w.Worker)
		}
		if w.TotalCustomerInteractions != 1000 || w.SuccessfulCustomerInteractions != 1000 {
			t.Errorf("worker %d customer = %d/%d, want 1000/1000", i, w.SuccessfulCustomerInteractions, w.TotalCustomerInteractions)
		}
		if w.SuccessfulInteractions != w.MeasuredRuns {
			t.Errorf("worker %d successful = %d of %d", i, w.SuccessfulInteractions, w.MeasuredRuns)
		}
	}
	if got := atomic.LoadInt64(&svc.buys); got != 4000 {
		t.Errorf("BuyBooks called %d times, want 4000", got)
	}
	if res.Seed != 99 || res.Duration <= 0 {
		t.Errorf("Seed = %d, Duration = %s", res.Seed, res.Duration)
	}
}

func TestCoordinatorSameSeedSameRouting(t *testing.T) {
	run := func() []workload.Result {
		store := bookstore.NewMemStore(1)
		cfg := customerConfig(store, 300)
		cfg.RareThreshold, cfg.FrequentThreshold = 10, 30
		c, err := runner.New(runner.Options{Workers: 3, Configuration: cfg, RandomSeed: 42})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		res, err := c.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return res.Workers
	}

	a, b := run(), run()
	for i := range a {
		if a[i].TotalCustomerInteractions != b[i].TotalCustomerInteractions {
			t.Fatalf("worker %d routed %d vs %d customer interactions", i, a[i].TotalCustomerInteractions, b[i].TotalCustomerInteractions)
		}
	}
}

// brokenStore fails with an error that is not a bookstore error.
type brokenStore struct{ *fakeStore }

func (brokenStore) GetEditorPicks(context.Context, int) ([]bookstore.Book, error) {
	return nil, errors.New("disk on fire")
}

func TestCoordinatorAbortsOnCatastrophicFailure(t *testing.T) {
	healthy := newFakeStore()
	healthy.latency = time.Millisecond
	broken := brokenStore{newFakeStore()}

	cfg := customerConfig(healthy, 1_000_000)
	cfg.BookStore = broken
	c, err := runner.New(runner.Options{Workers: 3, Configuration: cfg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := c.Run(context.Background())
	var cat *workload.CatastrophicError
	if !errors.As(err, &cat) {
		t.Fatalf("Run() error = %v, want *workload.CatastrophicError", err)
	}
	if res.Workers != nil {
		t.Fatalf("expected no partial results, got %d", len(res.Workers))
	}
}

func TestCoordinatorWorkerTimeout(t *testing.T) {
	svc := newFakeStore()
	svc.latency = 5 * time.Millisecond
	c, err := runner.New(runner.Options{
		Workers:       2,
		Configuration: customerConfig(svc, 1_000_000),
		WorkerTimeout: 30 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	_, err = c.Run(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, run took %s", elapsed)
	}
}

func TestRateLimiterCapsIterations(t *testing.T) {
	svc := newFakeStore()
	rateLimit := 100
	c, err := runner.New(runner.Options{
		Workers:        8,
		Configuration:  customerConfig(svc, 1_000_000),
		RatePerSecond:  rateLimit,
		WorkerTimeout:  100 * time.Millisecond,
		LimiterFactory: func(rps int) *rate.Limiter { return rate.NewLimiter(rate.Limit(rps), 1) },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, _ = c.Run(context.Background())
	// 100 rps for 100ms across all workers, with slack for scheduling.
	maxExpected := int64(float64(rateLimit) * 0.1 * 1.5)
	if got := atomic.LoadInt64(&svc.buys); got > maxExpected {
		t.Fatalf("rate limiter exceeded: buys=%d max=%d", got, maxExpected)
	}
}
