package workload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/certainbookstore/bookbench/internal/bookstore"
)

// ErrInvalidConfiguration is wrapped by every error returned from Configuration.Validate.
var ErrInvalidConfiguration = errors.New("invalid workload configuration")

// Configuration is shared read-only by every worker of a run.
type Configuration struct {
	RareThreshold     float64
	FrequentThreshold float64

	WarmUpRuns   int
	MeasuredRuns int

	BooksToAdd           int
	BooksWithLeastCopies int
	CopiesToAdd          int
	EditorPicksToFetch   int
	DistinctBooksToBuy   int
	CopiesPerBookToBuy   int

	StockManager bookstore.StockManager
	BookStore    bookstore.BookStore
}

// Validate checks the threshold ordering, non-negative counts and service handles.
func (c *Configuration) Validate() error {
	var issues []string
	if !isPercentage(c.RareThreshold) {
		issues = append(issues, fmt.Sprintf("rare threshold %g outside [0,100]", c.RareThreshold))
	}
	if !isPercentage(c.FrequentThreshold) {
		issues = append(issues, fmt.Sprintf("frequent threshold %g outside [0,100]", c.FrequentThreshold))
	}
	// Written positively so NaN fails the ordering check as well.
	if !(c.RareThreshold <= c.FrequentThreshold) {
		issues = append(issues, fmt.Sprintf("rare threshold %g exceeds frequent threshold %g", c.RareThreshold, c.FrequentThreshold))
	}

	counts := []struct {
		name  string
		value int
	}{
		{"warm-up runs", c.WarmUpRuns},
		{"measured runs", c.MeasuredRuns},
		{"books to add", c.BooksToAdd},
		{"books with least copies", c.BooksWithLeastCopies},
		{"copies to add", c.CopiesToAdd},
		{"editor picks to fetch", c.EditorPicksToFetch},
		{"distinct books to buy", c.DistinctBooksToBuy},
		{"copies per book to buy", c.CopiesPerBookToBuy},
	}
	for _, count := range counts {
		if count.value < 0 {
			issues = append(issues, fmt.Sprintf("%s must be >= 0, got %d", count.name, count.value))
		}
	}

	if c.StockManager == nil {
		issues = append(issues, "stock manager is required")
	}
	if c.BookStore == nil {
		issues = append(issues, "bookstore is required")
	}

	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(issues, "; "))
}

// isPercentage reports whether v lies in [0, 100]. NaN is not a percentage.
func isPercentage(v float64) bool {
	return v >= 0 && v <= 100
}
