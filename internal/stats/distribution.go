package stats

import (
	"slices"
)

// Bucket is one bar of a distribution: Count entities have exactly Size books.
type Bucket struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}

// Percent is the bar width relative to the largest bucket.
func (b Bucket) Percent(largest int) float64 {
	return percent(b.Count, largest)
}

// AuthorDistribution maps books-per-author to the number of authors.
func AuthorDistribution(counts []AuthorCount) []Bucket {
	sizes := make([]int, len(counts))
	for i, c := range counts {
		sizes[i] = c.Count
	}
	return distribution(sizes)
}

// SeriesDistribution maps books-per-series to the number of series.
func SeriesDistribution(series []SeriesInfo) []Bucket {
	sizes := make([]int, len(series))
	for i, s := range series {
		sizes[i] = s.Count
	}
	return distribution(sizes)
}

// MaxBucketCount is the largest bucket cardinality, or 1 for an empty
// distribution so it can always be divided by.
func MaxBucketCount(buckets []Bucket) int {
	largest := 0
	for _, b := range buckets {
		if b.Count > largest {
			largest = b.Count
		}
	}
	if largest == 0 {
		return 1
	}
	return largest
}

func distribution(sizes []int) []Bucket {
	tally := make(map[int]int)
	for _, s := range sizes {
		tally[s]++
	}

	out := make([]Bucket, 0, len(tally))
	for size, count := range tally {
		out = append(out, Bucket{Size: size, Count: count})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		return a.Size - b.Size
	})
	return out
}
