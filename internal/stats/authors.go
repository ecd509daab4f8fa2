package stats

import (
	"math"
	"slices"
	"strconv"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

// AuthorCount is the number of books by one author.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// AuthorMetrics summarises books per author. Average is formatted with one
// decimal place.
type AuthorMetrics struct {
	Average string `json:"average"`
	Median  int    `json:"median"`
}

// AuthorCounts tallies books per author in encounter order. Books without an
// author count towards "Unknown".
func AuthorCounts(books []library.Book) []AuthorCount {
	pos := make(map[string]int)
	out := []AuthorCount{}
	for _, b := range books {
		key := b.AuthorKey()
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, AuthorCount{Author: key})
		}
		out[i].Count++
	}
	return out
}

// TopAuthors returns the n most prolific authors. Ties keep encounter order.
func TopAuthors(counts []AuthorCount, n int) []AuthorCount {
	out := slices.Clone(counts)
	slices.SortStableFunc(out, func(a, b AuthorCount) int {
		return b.Count - a.Count
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []AuthorCount{}
	}
	return out
}

// Metrics computes the mean and median number of books per author.
func Metrics(counts []AuthorCount) AuthorMetrics {
	if len(counts) == 0 {
		return AuthorMetrics{Average: "0.0"}
	}

	total := 0
	values := make([]int, len(counts))
	for i, c := range counts {
		total += c.Count
		values[i] = c.Count
	}
	avg := float64(total) / float64(len(counts))

	return AuthorMetrics{
		Average: strconv.FormatFloat(avg, 'f', 1, 64),
		Median:  median(values),
	}
}

// median of the values; the mean of the middle pair is rounded half up.
func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int(math.Floor(float64(sorted[mid-1]+sorted[mid])/2 + 0.5))
}
