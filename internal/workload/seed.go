package workload

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
)

// Seed adds n editor-pick books to the store so customer purchases have something to buy.
// ISBNs start above the highest ISBN already in stock so repeated seeding never collides.
func Seed(ctx context.Context, sm bookstore.StockManager, rnd *rand.Rand, n int) ([]bookstore.StockBook, error) {
	if n <= 0 {
		return nil, nil
	}

	existing, err := sm.GetBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed: list books: %w", err)
	}
	var highest bookstore.ISBN
	for _, b := range existing {
		if b.ISBN > highest {
			highest = b.ISBN
		}
	}

	books := generator.New(rnd, highest+1).NextStockBooks(n)
	for i := range books {
		books[i].EditorPick = true
	}
	if err := sm.AddBooks(ctx, books); err != nil {
		return nil, fmt.Errorf("seed: add books: %w", err)
	}
	return books, nil
}
