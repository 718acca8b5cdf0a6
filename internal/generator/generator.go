// Package generator synthesizes stock books and samples ISBN subsets for the workload.
//
// A BookSetGenerator is owned by exactly one worker. Its ISBN counter is atomic so an
// accidentally shared instance still never hands out the same ISBN twice, but the
// underlying *rand.Rand is not safe for concurrent use.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/certainbookstore/bookbench/internal/bookstore"
)

const (
	// MinCopies and MaxCopies bound the stock of a synthesized book, MaxCopies exclusive.
	MinCopies = 10
	MaxCopies = 30

	defaultPrice  = 10.0
	defaultAuthor = "Bookbench Press"
)

// ErrEmptySample is returned when a sample is requested from an empty set or with a
// non-positive count. Callers treat it as "nothing to do this iteration".
var ErrEmptySample = errors.New("generator: empty sample")

// BookSetGenerator produces random ISBN subsets and batches of new stock books.
type BookSetGenerator struct {
	rnd  *rand.Rand
	next atomic.Int64
}

// New returns a generator drawing from rnd whose synthesized books start at firstISBN.
// Generators used side by side must be given disjoint ISBN ranges.
func New(rnd *rand.Rand, firstISBN bookstore.ISBN) *BookSetGenerator {
	if rnd == nil {
		panic("generator: nil random source")
	}
	if firstISBN < 1 {
		firstISBN = 1
	}
	g := &BookSetGenerator{rnd: rnd}
	g.next.Store(int64(firstISBN))
	return g
}

// SampleISBNs draws count ISBNs uniformly with replacement from set. Duplicate draws
// collapse, so the result may hold fewer than count ISBNs. The result is sorted.
func (g *BookSetGenerator) SampleISBNs(set map[bookstore.ISBN]struct{}, count int) ([]bookstore.ISBN, error) {
	if len(set) == 0 || count <= 0 {
		return nil, ErrEmptySample
	}

	// Map iteration order is random; sort so a seeded source is reproducible.
	pool := make([]bookstore.ISBN, 0, len(set))
	for isbn := range set {
		pool = append(pool, isbn)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })

	picked := make(map[bookstore.ISBN]struct{}, count)
	for i := 0; i < count; i++ {
		picked[pool[g.rnd.Intn(len(pool))]] = struct{}{}
	}

	out := make([]bookstore.ISBN, 0, len(picked))
	for isbn := range picked {
		out = append(out, isbn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NextStockBooks synthesizes count new stock books with fresh ISBNs and a random number
// of copies in [MinCopies, MaxCopies).
func (g *BookSetGenerator) NextStockBooks(count int) []bookstore.StockBook {
	if count <= 0 {
		return nil
	}
	books := make([]bookstore.StockBook, count)
	for i := range books {
		seq := g.next.Add(1) - 1
		books[i] = bookstore.StockBook{
			Book: bookstore.Book{
				ISBN:   bookstore.ISBN(seq),
				Title:  fmt.Sprintf("Collected Benchmarks, Volume %d", seq),
				Author: defaultAuthor,
				Price:  defaultPrice,
			},
			NumCopies: MinCopies + g.rnd.Intn(MaxCopies-MinCopies),
		}
	}
	return books
}

// ISBNSet collects the ISBNs of books into a set.
func ISBNSet(books []bookstore.Book) map[bookstore.ISBN]struct{} {
	set := make(map[bookstore.ISBN]struct{}, len(books))
	for _, b := range books {
		set[b.ISBN] = struct{}{}
	}
	return set
}
