package state

import (
	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/stats"
)

// depKey is the tuple of input versions a view was computed from.
type depKey struct {
	books, search, languages uint64
	extra                    int
}

type memo[T any] struct {
	valid bool
	key   depKey
	value T
}

// get returns the cached value when key matches, else recomputes it.
func (m *memo[T]) get(key depKey, compute func() T) T {
	if m.valid && m.key == key {
		return m.value
	}
	m.value = compute()
	m.key = key
	m.valid = true
	return m.value
}

func (s *Store) count(view string) {
	s.computes[view]++
}

func (s *Store) filterKey() depKey {
	return depKey{books: s.v.books, search: s.v.search, languages: s.v.languages}
}

// filteredSorted must be called with s.mu held.
func (s *Store) filteredSorted() []library.Book {
	return s.filtered.get(s.filterKey(), func() []library.Book {
		s.count("filtered")
		langs := library.NewLanguageSet(s.inputs.Languages...)
		return library.FilterSort(s.books, s.inputs.Search, langs)
	})
}

// FilteredSorted is the collection after the search and language filters,
// in canonical order.
func (s *Store) FilteredSorted() []library.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredSorted()
}

// AuthorGroups groups the filtered collection by author and series.
func (s *Store) AuthorGroups() library.AuthorGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.get(s.filterKey(), func() library.AuthorGroups {
		s.count("groups")
		return library.GroupByAuthorSeries(s.filteredSorted())
	})
}

// SeriesList lists the series present in the filtered collection.
func (s *Store) SeriesList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seriesList.get(s.filterKey(), func() []string {
		s.count("series")
		return library.ListSeries(s.filteredSorted())
	})
}

// BooksInSeries returns the filtered members of the named series. Results
// for every requested name are kept until the filtered collection changes.
func (s *Store) BooksInSeries(name string) []library.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.filterKey()
	if s.inSeries == nil || s.inSeriesKey != key {
		s.inSeries = make(map[string][]library.Book)
		s.inSeriesKey = key
	}
	if books, ok := s.inSeries[name]; ok {
		return books
	}
	s.count("in_series")
	books := library.BooksInSeries(s.filteredSorted(), name)
	s.inSeries[name] = books
	return books
}

// RainbowSorted orders the filtered collection by cover hue.
func (s *Store) RainbowSorted() []library.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rainbow.get(s.filterKey(), func() []library.Book {
		s.count("rainbow")
		return library.SortByHue(s.filteredSorted())
	})
}

// Statistics summarises the whole collection. It ignores the filters.
func (s *Store) Statistics() stats.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statistics.get(depKey{books: s.v.books}, func() stats.Report {
		s.count("statistics")
		return stats.Compute(s.books)
	})
}

// Suggestions returns up to n names close to the current search text.
func (s *Store) Suggestions(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggest(n)
}

// Snapshot is the filtered collection together with the inputs it was
// computed from.
type Snapshot struct {
	Inputs      Inputs
	Books       []library.Book
	Total       int
	Suggestions []string
}

// Snapshot reads the filtered view and its inputs under one lock. When
// nothing matches it also carries up to n suggestions for the same search.
func (s *Store) Snapshot(n int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Inputs: s.copyInputs(),
		Books:  s.filteredSorted(),
		Total:  len(s.books),
	}
	if len(snap.Books) == 0 {
		snap.Suggestions = s.suggest(n)
	}
	return snap
}

func (s *Store) suggest(n int) []string {
	return s.suggestions.get(depKey{books: s.v.books, search: s.v.search, extra: n}, func() []string {
		s.count("suggestions")
		return library.Suggest(s.books, s.inputs.Search, n)
	})
}
