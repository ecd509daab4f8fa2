package library

import "strings"

// LanguageSet is a set of language codes. An empty set means every language.
type LanguageSet map[string]struct{}

// NewLanguageSet builds a set from the given codes.
func NewLanguageSet(codes ...string) LanguageSet {
	set := make(LanguageSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Contains reports whether code is in the set.
func (s LanguageSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Filter applies the free-text query and then the language set. When both
// are no-ops the input slice is returned as is.
func Filter(books []Book, query string, langs LanguageSet) []Book {
	return FilterLanguages(FilterQuery(books, query), langs)
}

// FilterQuery keeps books whose author, title or series contains query,
// ignoring case. A blank query returns books unchanged.
func FilterQuery(books []Book, query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books
	}

	out := make([]Book, 0, len(books))
	for _, b := range books {
		if matchesQuery(b, q) {
			out = append(out, b)
		}
	}
	return out
}

// FilterLanguages keeps books whose language is in langs. Books without a
// language match only the empty code. An empty set returns books unchanged.
func FilterLanguages(books []Book, langs LanguageSet) []Book {
	if len(langs) == 0 {
		return books
	}

	out := make([]Book, 0, len(books))
	for _, b := range books {
		if langs.Contains(b.Language) {
			out = append(out, b)
		}
	}
	return out
}

func matchesQuery(b Book, q string) bool {
	return strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Series), q)
}
