package library

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns up to limit author, series or title names that fuzzily
// match query, closest first. It is meant for "did you mean" hints when a
// search comes back empty.
func Suggest(books []Book, query string, limit int) []string {
	q := strings.TrimSpace(query)
	if q == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var candidates []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}
	for _, b := range books {
		add(b.Author)
		add(b.Series)
		add(b.Title)
	}

	ranks := fuzzy.RankFindFold(q, candidates)
	sort.Stable(ranks)

	out := make([]string, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
