package library

import (
	"slices"
	"strings"
)

// SeriesGroup is one series bucket inside an author group.
type SeriesGroup struct {
	Name  string `json:"name"`
	Books []Book `json:"books"`
}

// AuthorGroup holds an author's series buckets in first-seen order.
type AuthorGroup struct {
	Author string        `json:"author"`
	Series []SeriesGroup `json:"series"`
}

// SeriesNamed returns the bucket with the given name.
func (g AuthorGroup) SeriesNamed(name string) (SeriesGroup, bool) {
	for _, s := range g.Series {
		if s.Name == name {
			return s, true
		}
	}
	return SeriesGroup{}, false
}

// AuthorGroups is an insertion-ordered author -> series -> books grouping.
type AuthorGroups []AuthorGroup

// Author returns the group for the given author key.
func (g AuthorGroups) Author(name string) (AuthorGroup, bool) {
	for _, a := range g {
		if a.Author == name {
			return a, true
		}
	}
	return AuthorGroup{}, false
}

// Books flattens the grouping back into a list in group order.
func (g AuthorGroups) Books() []Book {
	var out []Book
	for _, a := range g {
		for _, s := range a.Series {
			out = append(out, s.Books...)
		}
	}
	return out
}

// GroupByAuthorSeries groups books by author and then by series. Groups
// appear in the order their first book appears in the input, so callers pass
// an already sorted list. Books without a series land in the "Various"
// bucket, which a real series of that name shares.
func GroupByAuthorSeries(books []Book) AuthorGroups {
	groups := AuthorGroups{}
	authorPos := make(map[string]int)
	seriesPos := make(map[string]map[string]int)

	for _, b := range books {
		author := b.AuthorKey()
		series := seriesKey(b)

		ai, ok := authorPos[author]
		if !ok {
			ai = len(groups)
			authorPos[author] = ai
			seriesPos[author] = make(map[string]int)
			groups = append(groups, AuthorGroup{Author: author})
		}

		si, ok := seriesPos[author][series]
		if !ok {
			si = len(groups[ai].Series)
			seriesPos[author][series] = si
			groups[ai].Series = append(groups[ai].Series, SeriesGroup{Name: series})
		}
		groups[ai].Series[si].Books = append(groups[ai].Series[si].Books, b)
	}

	for ai := range groups {
		for si := range groups[ai].Series {
			slices.SortStableFunc(groups[ai].Series[si].Books, CompareInSeries)
		}
	}
	return groups
}

func seriesKey(b Book) string {
	if strings.TrimSpace(b.Series) == "" {
		return VariousSeries
	}
	return b.Series
}

// ListSeries returns the distinct non-empty series names in collation order.
func ListSeries(books []Book) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, b := range books {
		name := strings.TrimSpace(b.Series)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	slices.SortStableFunc(names, CompareText)
	return names
}

// BooksInSeries returns the members of the named series ordered by series
// index and title.
func BooksInSeries(books []Book, series string) []Book {
	out := []Book{}
	for _, b := range books {
		if strings.TrimSpace(b.Series) == series {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, CompareInSeries)
	return out
}
