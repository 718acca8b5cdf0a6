package bookstore

// ISBN uniquely identifies a book. Uniqueness is enforced by the service.
type ISBN int

// Valid reports whether the identifier is usable by a store.
func (i ISBN) Valid() bool {
	return i > 0
}

// Book is the storefront view of a title.
type Book struct {
	ISBN   ISBN    `json:"isbn"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// StockBook is the inventory view of a title. The workload only reads ISBN and
// NumCopies; the remaining attributes are passed through untouched.
type StockBook struct {
	Book
	NumCopies     int  `json:"num_copies"`
	NumSaleMisses int  `json:"num_sale_misses"`
	NumTimesRated int  `json:"num_times_rated"`
	TotalRating   int  `json:"total_rating"`
	NumSold       int  `json:"num_sold"`
	EditorPick    bool `json:"editor_pick"`
}

// BookCopy pairs an ISBN with a quantity. It is used both to add copies to
// inventory and to request purchases.
type BookCopy struct {
	ISBN      ISBN `json:"isbn"`
	NumCopies int  `json:"num_copies"`
}

// ISBNs returns the identifiers of books in order.
func ISBNs(books []StockBook) []ISBN {
	out := make([]ISBN, 0, len(books))
	for _, b := range books {
		out = append(out, b.ISBN)
	}
	return out
}
