package bookstore

import "context"

// StockManager is the inventory administration capability.
type StockManager interface {
	// GetBooks lists every book in inventory. Order is not guaranteed.
	GetBooks(ctx context.Context) ([]StockBook, error)
	// AddBooks inserts new titles. The whole batch is rejected if any ISBN
	// is invalid or already present.
	AddBooks(ctx context.Context, books []StockBook) error
	// AddCopies increases stock for existing titles. The whole batch is
	// rejected if any ISBN is unknown.
	AddCopies(ctx context.Context, copies []BookCopy) error
}

// BookStore is the customer-facing capability.
type BookStore interface {
	// GetEditorPicks returns up to n editor-picked books.
	GetEditorPicks(ctx context.Context, n int) ([]Book, error)
	// BuyBooks purchases every request in the batch or none of them.
	BuyBooks(ctx context.Context, copies []BookCopy) error
}

// Service is satisfied by stores that expose both capabilities.
type Service interface {
	StockManager
	BookStore
}
