package workload

import (
	"context"
	"sync"

	"github.com/certainbookstore/bookbench/internal/bookstore"
)

// fakeService is a scriptable bookstore.Service recording every mutating call.
type fakeService struct {
	mu sync.Mutex

	books []bookstore.StockBook
	picks []bookstore.Book

	getErr  error
	addErr  error
	copyErr error
	pickErr error
	buyErr  error

	added  [][]bookstore.StockBook
	copied [][]bookstore.BookCopy
	bought [][]bookstore.BookCopy
}

func (f *fakeService) GetBooks(ctx context.Context) ([]bookstore.StockBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]bookstore.StockBook, len(f.books))
	copy(out, f.books)
	return out, nil
}

func (f *fakeService) AddBooks(ctx context.Context, books []bookstore.StockBook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, books)
	return f.addErr
}

func (f *fakeService) AddCopies(ctx context.Context, copies []bookstore.BookCopy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copied = append(f.copied, copies)
	return f.copyErr
}

func (f *fakeService) GetEditorPicks(ctx context.Context, n int) ([]bookstore.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pickErr != nil {
		return nil, f.pickErr
	}
	if n > len(f.picks) {
		n = len(f.picks)
	}
	out := make([]bookstore.Book, n)
	copy(out, f.picks[:n])
	return out, nil
}

func (f *fakeService) BuyBooks(ctx context.Context, order []bookstore.BookCopy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bought = append(f.bought, order)
	return f.buyErr
}

func (f *fakeService) buyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bought)
}

func newPickService(n int) *fakeService {
	f := &fakeService{}
	for i := 1; i <= n; i++ {
		f.picks = append(f.picks, bookstore.Book{ISBN: bookstore.ISBN(i)})
	}
	return f
}

func customerOnly(svc bookstore.Service, measured int) *Configuration {
	return &Configuration{
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
