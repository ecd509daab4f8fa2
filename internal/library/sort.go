package library

import "slices"

// Sort returns a new slice ordered by Compare. The sort is stable and the
// input is left untouched.
func Sort(books []Book) []Book {
	out := make([]Book, len(books))
	copy(out, books)
	slices.SortStableFunc(out, Compare)
	return out
}

// FilterSort runs the filter and sort stages in order.
func FilterSort(books []Book, query string, langs LanguageSet) []Book {
	return Sort(Filter(books, query, langs))
}
