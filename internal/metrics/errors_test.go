package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
)

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"service error", bookstore.Errorf(bookstore.CodeInsufficientStock, "isbn 3"), "insufficient stock"},
		{"wrapped service error", fmt.Errorf("buy: %w", bookstore.Errorf(bookstore.CodeUnknownISBN, "isbn 9")), "unknown isbn"},
		{"transport", bookstore.Errorf(bookstore.CodeTransport, "connection refused"), "transport"},
		{"empty sample", generator.ErrEmptySample, "no books to buy"},
		{"wrapped empty sample", fmt.Errorf("customer: %w", generator.ErrEmptySample), "no books to buy"},
		{"plain", errors.New("x"), reasonUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureReason(tt.err); got != tt.want {
				t.Errorf("FailureReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
