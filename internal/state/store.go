// Package state holds the live inputs of a browsing session (collection,
// search text, language selection) and serves the views derived from them.
// Derived views are memoized on the versions of the inputs they read, so a
// view is recomputed only when one of its inputs actually changed.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/stats"
)

// Inputs are the user-controllable inputs. An empty Languages selection
// means every language.
type Inputs struct {
	Search    string   `json:"search"`
	Languages []string `json:"languages"`
}

// Loader resolves the catalog once per Load.
type Loader interface {
	Books(ctx context.Context) ([]library.Book, error)
	LoadLanguages(ctx context.Context) ([]string, error)
}

// input version counters
type versions struct {
	books     uint64
	available uint64
	search    uint64
	languages uint64
}

// Store is safe for concurrent use. Slices returned by its views are shared
// with the cache and must not be modified.
type Store struct {
	mu sync.Mutex

	books     []library.Book
	available []string
	inputs    Inputs
	v         versions

	filtered    memo[[]library.Book]
	groups      memo[library.AuthorGroups]
	seriesList  memo[[]string]
	rainbow     memo[[]library.Book]
	statistics  memo[stats.Report]
	suggestions memo[[]string]
	inSeries    map[string][]library.Book
	inSeriesKey depKey

	// computes counts recomputations per view
	computes map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		books:     []library.Book{},
		available: []string{},
		computes:  make(map[string]int),
	}
}

// Load resolves the loader and installs the result. When the books cannot be
// loaded the collection keeps its previous value and the error is returned.
// A languages failure only leaves the available languages unchanged.
func (s *Store) Load(ctx context.Context, loader Loader) error {
	books, err := loader.Books(ctx)
	if err != nil {
		slog.Error("Failed to load books", "error", err)
		return fmt.Errorf("load books: %w", err)
	}
	s.SetBooks(books)

	langs, err := loader.LoadLanguages(ctx)
	if err != nil {
		slog.Warn("Failed to load languages", "error", err)
		return nil
	}
	s.SetAvailableLanguages(langs)

	slog.Info("Library loaded", "books", len(books), "languages", len(langs))
	return nil
}

// SetBooks replaces the canonical collection.
func (s *Store) SetBooks(books []library.Book) {
	if books == nil {
		books = []library.Book{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.EqualFunc(s.books, books, sameBook) {
		return
	}
	s.books = slices.Clone(books)
	s.v.books++
}

// SetAvailableLanguages replaces the languages offered as filter choices.
func (s *Store) SetAvailableLanguages(codes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Equal(s.available, codes) {
		return
	}
	s.available = append([]string{}, codes...)
	s.v.available++
}

// SetSearch replaces the search text.
func (s *Store) SetSearch(text string) {
	s.Update(func(in *Inputs) { in.Search = text })
}

// SetSelectedLanguages replaces the language selection.
func (s *Store) SetSelectedLanguages(codes []string) {
	s.Update(func(in *Inputs) { in.Languages = codes })
}

// ToggleLanguage adds code to the selection, or removes it when present.
func (s *Store) ToggleLanguage(code string) {
	s.Update(func(in *Inputs) {
		if i := slices.Index(in.Languages, code); i >= 0 {
			in.Languages = slices.Delete(in.Languages, i, i+1)
			return
		}
		in.Languages = append(in.Languages, code)
	})
}

// ClearLanguages selects every language again.
func (s *Store) ClearLanguages() {
	s.Update(func(in *Inputs) { in.Languages = nil })
}

// Update applies fn to a copy of the inputs and publishes every change it
// made at once. Readers never see a partially applied update.
func (s *Store) Update(fn func(*Inputs)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Inputs{
		Search:    s.inputs.Search,
		Languages: slices.Clone(s.inputs.Languages),
	}
	fn(&next)

	if next.Search != s.inputs.Search {
		s.inputs.Search = next.Search
		s.v.search++
	}
	if !slices.Equal(next.Languages, s.inputs.Languages) {
		s.inputs.Languages = slices.Clone(next.Languages)
		s.v.languages++
	}
}

// Inputs returns a copy of the current inputs.
func (s *Store) Inputs() Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyInputs()
}

func (s *Store) copyInputs() Inputs {
	return Inputs{Search: s.inputs.Search, Languages: slices.Clone(s.inputs.Languages)}
}

// Books returns the canonical collection.
func (s *Store) Books() []library.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books
}

// AvailableLanguages returns the languages offered as filter choices.
func (s *Store) AvailableLanguages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func sameBook(a, b library.Book) bool {
	if a.ID != b.ID || a.Author != b.Author || a.Title != b.Title || a.Series != b.Series ||
		a.CoverPath != b.CoverPath || a.IsRead != b.IsRead || a.Language != b.Language {
		return false
	}
	if (a.SeriesIndex == nil) != (b.SeriesIndex == nil) || (a.CoverColor == nil) != (b.CoverColor == nil) {
		return false
	}
	if a.SeriesIndex != nil && *a.SeriesIndex != *b.SeriesIndex {
		return false
	}
	return a.CoverColor == nil || *a.CoverColor == *b.CoverColor
}
