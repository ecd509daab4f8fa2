package library

import (
	"cmp"
	"math"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collators are pooled: a Collator keeps internal buffers and is not safe
// for concurrent use.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.English)
	},
}

// CompareText orders two strings using English collation rules.
func CompareText(a, b string) int {
	if a == b {
		return 0
	}
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// indexKey maps an absent index to +Inf so un-indexed books trail a series.
func indexKey(b Book) float64 {
	if b.SeriesIndex == nil {
		return math.Inf(1)
	}
	return *b.SeriesIndex
}

// Compare is the canonical ordering: author, series, series index, title.
func Compare(a, b Book) int {
	if c := CompareText(a.Author, b.Author); c != 0 {
		return c
	}
	if c := CompareText(a.Series, b.Series); c != 0 {
		return c
	}
	return CompareInSeries(a, b)
}

// CompareInSeries orders books whose author and series are already fixed:
// series index (absent last), then title.
func CompareInSeries(a, b Book) int {
	if c := cmp.Compare(indexKey(a), indexKey(b)); c != 0 {
		return c
	}
	return CompareText(a.Title, b.Title)
}
