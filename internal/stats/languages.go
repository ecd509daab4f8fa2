package stats

import (
	"slices"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

// UnknownLanguage is the bucket for books without a language.
const UnknownLanguage = "unknown"

// LanguageStat is one row of the language distribution.
type LanguageStat struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Languages returns the language distribution, largest first. Ties keep the
// order in which the language was first seen.
func Languages(books []library.Book) []LanguageStat {
	pos := make(map[string]int)
	out := []LanguageStat{}

	for _, b := range books {
		code := b.Language
		if code == "" {
			code = UnknownLanguage
		}
		i, ok := pos[code]
		if !ok {
			i = len(out)
			pos[code] = i
			out = append(out, LanguageStat{Code: code, Name: library.LanguageName(code)})
		}
		out[i].Count++
	}

	for i := range out {
		out[i].Percentage = percent(out[i].Count, len(books))
	}
	slices.SortStableFunc(out, func(a, b LanguageStat) int {
		return b.Count - a.Count
	})
	return out
}
