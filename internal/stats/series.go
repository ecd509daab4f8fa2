package stats

import (
	"math"
	"slices"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

// SeriesInfo aggregates one series.
type SeriesInfo struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	IsComplete bool   `json:"is_complete"`
	BooksRead  int    `json:"books_read"`
	IsStarted  bool   `json:"is_started"`
	IsFinished bool   `json:"is_finished"`
}

// Series returns one SeriesInfo per distinct non-empty series, in the order
// each series is first encountered.
func Series(books []library.Book) []SeriesInfo {
	pos := make(map[string]int)
	out := []SeriesInfo{}
	indices := [][]int{}

	for _, b := range books {
		if !b.HasSeries() {
			continue
		}
		i, ok := pos[b.Series]
		if !ok {
			i = len(out)
			pos[b.Series] = i
			out = append(out, SeriesInfo{Name: b.Series})
			indices = append(indices, nil)
		}
		out[i].Count++
		if b.Read() {
			out[i].BooksRead++
		}
		if idx, ok := positiveInt(b); ok {
			indices[i] = append(indices[i], idx)
		}
	}

	for i := range out {
		out[i].IsComplete = isComplete(indices[i])
		out[i].IsStarted = out[i].BooksRead > 0
		out[i].IsFinished = out[i].Count > 0 && out[i].BooksRead == out[i].Count
	}
	return out
}

// positiveInt returns the series index when it is a whole number >= 1.
// Fractional and non-positive indices never take part in completeness.
func positiveInt(b library.Book) (int, bool) {
	idx, ok := b.Index()
	if !ok || idx < 1 || idx != math.Trunc(idx) || idx > math.MaxInt32 {
		return 0, false
	}
	return int(idx), true
}

// isComplete reports whether indices start at 1 and form a gapless run.
// A repeated index counts as a gap.
func isComplete(indices []int) bool {
	if len(indices) == 0 {
		return false
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	if sorted[0] != 1 {
		return false
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

// LargestSeries returns the n series with the most books.
func LargestSeries(series []SeriesInfo, n int) []SeriesInfo {
	return topSeries(series, n, func(SeriesInfo) bool { return true })
}

// BeingRead returns the n largest series that are started but not finished.
func BeingRead(series []SeriesInfo, n int) []SeriesInfo {
	return topSeries(series, n, func(s SeriesInfo) bool { return s.IsStarted && !s.IsFinished })
}

// FinishedSeries returns the n largest fully read series.
func FinishedSeries(series []SeriesInfo, n int) []SeriesInfo {
	return topSeries(series, n, func(s SeriesInfo) bool { return s.IsFinished })
}

func topSeries(series []SeriesInfo, n int, keep func(SeriesInfo) bool) []SeriesInfo {
	out := []SeriesInfo{}
	for _, s := range series {
		if keep(s) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b SeriesInfo) int {
		return b.Count - a.Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
