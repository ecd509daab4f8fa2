package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

func book(author, series string, idx *float64, read bool) library.Book {
	b := library.Book{Author: author, Title: author + series, Series: series, SeriesIndex: idx}
	if read {
		b.IsRead = 1
	}
	return b
}

func seriesByName(t *testing.T, series []SeriesInfo, name string) SeriesInfo {
	t.Helper()
	for _, s := range series {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "series not found", "%q", name)
	return SeriesInfo{}
}

func TestSeriesCompleteness(t *testing.T) {
	f := library.Float
	books := []library.Book{
		book("A", "Foo", f(1), false),
		book("A", "Foo", f(2), false),
		book("A", "Foo", f(3), false),
		book("B", "Bar", f(1), false),
		book("B", "Bar", f(3), false),
		book("C", "Baz", f(2), false),
		book("C", "Baz", f(3), false),
		book("C", "Baz", f(4), false),
		book("D", "Qux", nil, false),
	}

	series := Series(books)
	require.Len(t, series, 4)

	testCases := []struct {
		name     string
		complete bool
		count    int
	}{
		{name: "Foo", complete: true, count: 3},
		{name: "Bar", complete: false, count: 2},
		{name: "Baz", complete: false, count: 3},
		{name: "Qux", complete: false, count: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := seriesByName(t, series, tc.name)
			assert.Equal(t, tc.complete, s.IsComplete)
			assert.Equal(t, tc.count, s.Count)
			assert.False(t, s.IsStarted)
			assert.False(t, s.IsFinished)
		})
	}
}

func TestSeriesCompletenessIgnoresOddIndices(t *testing.T) {
	f := library.Float
	books := []library.Book{
		book("A", "Frac", f(1), false),
		book("A", "Frac", f(1.5), false),
		book("A", "Frac", f(2), false),
		book("A", "Zero", f(0), false),
		book("A", "Zero", f(1), false),
		book("A", "Dup", f(1), false),
		book("A", "Dup", f(1), false),
		book("A", "Dup", f(2), false),
		book("A", "OnlyFrac", f(0.5), false),
	}

	series := Series(books)

	frac := seriesByName(t, series, "Frac")
	assert.True(t, frac.IsComplete)
	assert.Equal(t, 3, frac.Count)

	assert.True(t, seriesByName(t, series, "Zero").IsComplete)
	assert.False(t, seriesByName(t, series, "Dup").IsComplete)
	assert.False(t, seriesByName(t, series, "OnlyFrac").IsComplete)
}

func readingScenario() []library.Book {
	f := library.Float
	return []library.Book{
		book("S1", "", nil, true),
		book("S2", "", nil, true),
		book("S3", "", nil, false),
		book("S4", "", nil, false),
		book("X", "X", f(1), true),
		book("X", "X", f(2), true),
		book("X", "X", f(3), true),
		book("Y", "Y", f(1), true),
		book("Y", "Y", f(2), false),
		book("Y", "Y", f(3), false),
	}
}

func TestReadingProgress(t *testing.T) {
	books := readingScenario()

	p := Progress(books, Series(books))

	assert.Equal(t, SeriesProgress{Total: 2, Started: 2, Finished: 1, InProgress: 1, NotStarted: 0}, p.Series)
	assert.Equal(t, Split{Read: 2, Total: 4, Percentage: 50}, p.Standalone)
	assert.Equal(t, Split{Read: 4, Total: 6, Percentage: float64(4) / 6 * 100}, p.InSeries)
	assert.Equal(t, 6, p.TotalBooksRead)
	assert.InDelta(t, 60.0, p.ReadPercentage, 1e-9)
}

func TestTopSeries(t *testing.T) {
	books := readingScenario()
	books = append(books,
		book("Z", "Z", library.Float(1), false),
		book("Z", "Z", library.Float(2), false),
		book("Z", "Z", library.Float(3), false),
		book("Z", "Z", library.Float(4), false),
	)
	series := Series(books)

	names := func(in []SeriesInfo) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = s.Name
		}
		return out
	}

	assert.Equal(t, []string{"Z", "X", "Y"}, names(LargestSeries(series, 10)))
	assert.Equal(t, []string{"Z"}, names(LargestSeries(series, 1)))
	assert.Equal(t, []string{"Y"}, names(BeingRead(series, 10)))
	assert.Equal(t, []string{"X"}, names(FinishedSeries(series, 10)))
}

func TestLanguages(t *testing.T) {
	books := []library.Book{
		{Language: "eng"}, {Language: "eng"}, {Language: "fra"}, {}, {Language: "eng"},
	}

	got := Languages(books)

	assert.Equal(t, []LanguageStat{
		{Code: "eng", Name: "English", Count: 3, Percentage: 60},
		{Code: "fra", Name: "French", Count: 1, Percentage: 20},
		{Code: "unknown", Name: "UNKNOWN", Count: 1, Percentage: 20},
	}, got)
}

func TestAuthorMetrics(t *testing.T) {
	testCases := []struct {
		name     string
		counts   []int
		expected AuthorMetrics
	}{
		{name: "empty", counts: nil, expected: AuthorMetrics{Average: "0.0", Median: 0}},
		{name: "odd", counts: []int{5, 1, 3}, expected: AuthorMetrics{Average: "3.0", Median: 3}},
		{name: "even rounds half up", counts: []int{1, 2}, expected: AuthorMetrics{Average: "1.5", Median: 2}},
		{name: "even exact", counts: []int{4, 1, 2, 7}, expected: AuthorMetrics{Average: "3.5", Median: 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var counts []AuthorCount
			for i, c := range tc.counts {
				counts = append(counts, AuthorCount{Author: string(rune('a' + i)), Count: c})
			}
			assert.Equal(t, tc.expected, Metrics(counts))
		})
	}
}

func TestAuthorCountsAndTop(t *testing.T) {
	books := []library.Book{
		{Author: "B"}, {Author: "A"}, {}, {Author: "A"}, {Author: "C"}, {Author: "B"},
	}

	counts := AuthorCounts(books)
	assert.Equal(t, []AuthorCount{
		{Author: "B", Count: 2}, {Author: "A", Count: 2}, {Author: library.UnknownAuthor, Count: 1}, {Author: "C", Count: 1},
	}, counts)

	assert.Equal(t, []AuthorCount{{Author: "B", Count: 2}, {Author: "A", Count: 2}}, TopAuthors(counts, 2))
	assert.Equal(t, 3, UniqueAuthors(books))
}

func TestDistributions(t *testing.T) {
	counts := []AuthorCount{{"a", 3}, {"b", 1}, {"c", 3}, {"d", 2}, {"e", 3}}

	dist := AuthorDistribution(counts)

	assert.Equal(t, []Bucket{{Size: 1, Count: 1}, {Size: 2, Count: 1}, {Size: 3, Count: 3}}, dist)
	assert.Equal(t, 3, MaxBucketCount(dist))
	assert.InDelta(t, 100.0/3, dist[0].Percent(MaxBucketCount(dist)), 1e-9)

	assert.Equal(t, 1, MaxBucketCount(nil))
	assert.Equal(t, 0.0, Bucket{Size: 1, Count: 1}.Percent(0))
}

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil)

	assert.Equal(t, 0, r.TotalBooks)
	assert.Equal(t, 0, r.UniqueAuthors)
	assert.Equal(t, AuthorMetrics{Average: "0.0", Median: 0}, r.AuthorMetrics)
	assert.Equal(t, 0.0, r.ReadingProgress.ReadPercentage)
	assert.Equal(t, 0.0, r.ReadingProgress.Standalone.Percentage)
	assert.Equal(t, 0.0, r.ReadingProgress.InSeries.Percentage)
	assert.Equal(t, 1, r.MaxAuthorBucket)
	assert.Equal(t, 1, r.MaxSeriesBucket)
	assert.Empty(t, r.Languages)
	assert.Empty(t, r.TopAuthors)
	assert.Empty(t, r.LargestSeries)
}

func TestCompute(t *testing.T) {
	books := readingScenario()
	books[0].Language = "eng"

	r := Compute(books)

	assert.Equal(t, 10, r.TotalBooks)
	assert.Equal(t, 6, r.UniqueAuthors)
	assert.Equal(t, 2, r.UniqueSeries)
	assert.Equal(t, 4, r.BooksWithoutSeries)
	assert.Equal(t, "1.7", r.AuthorMetrics.Average)
	assert.Equal(t, 1, r.AuthorMetrics.Median)
	assert.Equal(t, []Bucket{{Size: 3, Count: 2}}, r.SeriesDistribution)
	assert.Equal(t, 2, r.MaxSeriesBucket)
	require.Len(t, r.Languages, 2)
	assert.Equal(t, UnknownLanguage, r.Languages[0].Code)
}
