// Package stats computes library-wide aggregates over the full, unfiltered
// book collection: language and author distributions, series completeness,
// reading progress and top-N rankings.
//
// Every function is total. Degenerate input produces zero values, never an
// error or a NaN.
package stats

import (
	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

const (
	topAuthorsLimit = 15
	topSeriesLimit  = 10
)

// Report is the complete statistics surface for one collection.
type Report struct {
	TotalBooks         int `json:"total_books"`
	UniqueAuthors      int `json:"unique_authors"`
	UniqueSeries       int `json:"unique_series"`
	BooksWithoutSeries int `json:"books_without_series"`

	Languages     []LanguageStat `json:"languages"`
	TopAuthors    []AuthorCount  `json:"top_authors"`
	AuthorMetrics AuthorMetrics  `json:"author_metrics"`

	Series          []SeriesInfo    `json:"series"`
	ReadingProgress ReadingProgress `json:"reading_progress"`
	LargestSeries   []SeriesInfo    `json:"largest_series"`
	BeingRead       []SeriesInfo    `json:"being_read"`
	FinishedSeries  []SeriesInfo    `json:"finished_series"`

	AuthorDistribution []Bucket `json:"author_distribution"`
	SeriesDistribution []Bucket `json:"series_distribution"`
	MaxAuthorBucket    int      `json:"max_author_bucket"`
	MaxSeriesBucket    int      `json:"max_series_bucket"`
}

// Compute builds the full report. Series and author tallies are computed
// once and shared by the derived sections.
func Compute(books []library.Book) Report {
	authors := AuthorCounts(books)
	series := Series(books)

	authorDist := AuthorDistribution(authors)
	seriesDist := SeriesDistribution(series)

	return Report{
		TotalBooks:         len(books),
		UniqueAuthors:      UniqueAuthors(books),
		UniqueSeries:       len(series),
		BooksWithoutSeries: BooksWithoutSeries(books),

		Languages:     Languages(books),
		TopAuthors:    TopAuthors(authors, topAuthorsLimit),
		AuthorMetrics: Metrics(authors),

		Series:          series,
		ReadingProgress: Progress(books, series),
		LargestSeries:   LargestSeries(series, topSeriesLimit),
		BeingRead:       BeingRead(series, topSeriesLimit),
		FinishedSeries:  FinishedSeries(series, topSeriesLimit),

		AuthorDistribution: authorDist,
		SeriesDistribution: seriesDist,
		MaxAuthorBucket:    MaxBucketCount(authorDist),
		MaxSeriesBucket:    MaxBucketCount(seriesDist),
	}
}

// UniqueAuthors counts distinct non-empty authors.
func UniqueAuthors(books []library.Book) int {
	seen := make(map[string]struct{})
	for _, b := range books {
		if b.Author != "" {
			seen[b.Author] = struct{}{}
		}
	}
	return len(seen)
}

// BooksWithoutSeries counts standalone books.
func BooksWithoutSeries(books []library.Book) int {
	n := 0
	for _, b := range books {
		if !b.HasSeries() {
			n++
		}
	}
	return n
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
