package bookstore

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// MemStore is a thread-safe in-memory bookstore implementing both
// StockManager and BookStore.
type MemStore struct {
	mu    sync.RWMutex
	books map[ISBN]*StockBook
	rnd   *rand.Rand
}

// NewMemStore creates an empty store. A zero seed picks a time-based seed.
func NewMemStore(seed int64) *MemStore {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MemStore{
		books: make(map[ISBN]*StockBook),
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

var _ Service = (*MemStore)(nil)

func (s *MemStore) GetBooks(ctx context.Context) ([]StockBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]StockBook, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out, nil
}

func (s *MemStore) AddBooks(ctx context.Context, books []StockBook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[ISBN]struct{}, len(books))
	for _, b := range books {
		if !b.ISBN.Valid() {
			return Errorf(CodeInvalidISBN, "isbn %d is not valid", b.ISBN)
		}
		if b.NumCopies < 0 {
			return Errorf(CodeInvalidQuantity, "isbn %d: copies must be >= 0", b.ISBN)
		}
		if _, ok := s.books[b.ISBN]; ok {
			return Errorf(CodeDuplicateISBN, "isbn %d already exists", b.ISBN)
		}
		if _, ok := seen[b.ISBN]; ok {
			return Errorf(CodeDuplicateISBN, "isbn %d repeated in request", b.ISBN)
		}
		seen[b.ISBN] = struct{}{}
	}
	for _, b := range books {
		book := b
		s.books[b.ISBN] = &book
	}
	return nil
}

func (s *MemStore) AddCopies(ctx context.Context, copies []BookCopy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range copies {
		if !c.ISBN.Valid() {
			return Errorf(CodeInvalidISBN, "isbn %d is not valid", c.ISBN)
		}
		if c.NumCopies <= 0 {
			return Errorf(CodeInvalidQuantity, "isbn %d: copies must be > 0", c.ISBN)
		}
		if _, ok := s.books[c.ISBN]; !ok {
			return Errorf(CodeUnknownISBN, "isbn %d not found", c.ISBN)
		}
	}
	for _, c := range copies {
		s.books[c.ISBN].NumCopies += c.NumCopies
	}
	return nil
}

func (s *MemStore) GetEditorPicks(ctx context.Context, n int) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, Errorf(CodeInvalidRequest, "number of editor picks must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	picks := make([]Book, 0)
	for _, b := range s.books {
		if b.EditorPick {
			picks = append(picks, b.Book)
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].ISBN < picks[j].ISBN })
	s.rnd.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	if len(picks) > n {
		picks = picks[:n]
	}
	return picks, nil
}

func (s *MemStore) BuyBooks(ctx context.Context, copies []BookCopy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[ISBN]int, len(copies))
	for _, c := range copies {
		if !c.ISBN.Valid() {
			return Errorf(CodeInvalidISBN, "isbn %d is not valid", c.ISBN)
		}
		if c.NumCopies <= 0 {
			return Errorf(CodeInvalidQuantity, "isbn %d: copies must be > 0", c.ISBN)
		}
		if _, ok := s.books[c.ISBN]; !ok {
			return Errorf(CodeUnknownISBN, "isbn %d not found", c.ISBN)
		}
		want[c.ISBN] += c.NumCopies
	}

	var short []ISBN
	for isbn, n := range want {
		if s.books[isbn].NumCopies < n {
			short = append(short, isbn)
		}
	}
	if len(short) > 0 {
		// Record the misses even though nothing is sold.
		for _, isbn := range short {
			s.books[isbn].NumSaleMisses += want[isbn] - s.books[isbn].NumCopies
		}
		return Errorf(CodeInsufficientStock, "%d book(s) lack enough copies", len(short))
	}
	for isbn, n := range want {
		b := s.books[isbn]
		b.NumCopies -= n
		b.NumSold += n
	}
	return nil
}

// Len returns the number of titles in the store.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
