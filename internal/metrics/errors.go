package metrics

import (
	"errors"
	"strings"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
)

// reasonUnclassified labels failures that are neither rejections nor empty samples.
const reasonUnclassified = "unclassified"

// FailureReason returns a short label for a failed interaction: the bookstore error code
// for service rejections and "no books to buy" for an empty purchase sample.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, generator.ErrEmptySample):
		return "no books to buy"
	}
	if code := bookstore.CodeOf(err); code != "" {
		return strings.ReplaceAll(string(code), "_", " ")
	}
	return reasonUnclassified
}
