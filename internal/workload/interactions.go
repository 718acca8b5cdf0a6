package workload

import (
	"context"
	"sort"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
)

// rareStockReplenishment re-submits the existing books whose ISBNs do not collide with
// a freshly synthesized batch. The synthesized books themselves are never added.
func (w *Worker) rareStockReplenishment(ctx context.Context) error {
	books, err := w.cfg.StockManager.GetBooks(ctx)
	if err != nil {
		return err
	}

	synthetic := w.gen.NextStockBooks(w.cfg.BooksToAdd)
	fresh := make(map[bookstore.ISBN]struct{}, len(synthetic))
	for _, b := range synthetic {
		fresh[b.ISBN] = struct{}{}
	}

	batch := make([]bookstore.StockBook, 0, len(books))
	for _, b := range books {
		if _, ok := fresh[b.ISBN]; !ok {
			batch = append(batch, b)
		}
	}
	return w.cfg.StockManager.AddBooks(ctx, batch)
}

// frequentStockTopup adds CopiesToAdd copies to each of the BooksWithLeastCopies books
// with the fewest copies. Ties keep the order the service returned.
func (w *Worker) frequentStockTopup(ctx context.Context) error {
	books, err := w.cfg.StockManager.GetBooks(ctx)
	if err != nil {
		return err
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].NumCopies < books[j].NumCopies
	})
	n := w.cfg.BooksWithLeastCopies
	if n > len(books) {
		n = len(books)
	}

	copies := make([]bookstore.BookCopy, n)
	for i, b := range books[:n] {
		copies[i] = bookstore.BookCopy{ISBN: b.ISBN, NumCopies: w.cfg.CopiesToAdd}
	}
	return w.cfg.StockManager.AddCopies(ctx, copies)
}

// customerPurchase buys CopiesPerBookToBuy copies of a random sample of editor picks.
func (w *Worker) customerPurchase(ctx context.Context) error {
	picks, err := w.cfg.BookStore.GetEditorPicks(ctx, w.cfg.EditorPicksToFetch)
	if err != nil {
		return err
	}

	isbns, err := w.gen.SampleISBNs(generator.ISBNSet(picks), w.cfg.DistinctBooksToBuy)
	if err != nil {
		return err
	}

	order := make([]bookstore.BookCopy, len(isbns))
	for i, isbn := range isbns {
		order[i] = bookstore.BookCopy{ISBN: isbn, NumCopies: w.cfg.CopiesPerBookToBuy}
	}
	return w.cfg.BookStore.BuyBooks(ctx, order)
}
