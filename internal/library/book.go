// Package library holds the canonical book model and the pure query stages
// (normalize, compare, filter, sort, group) that every view is built from.
package library

import "fmt"

// Placeholders used when a grouping key is missing.
const (
	UnknownAuthor = "Unknown"
	VariousSeries = "Various"
)

// Color is an RGB triple with components in 0-255.
type Color [3]int

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// RawBook is a decoded, loosely typed catalog record as found in books.json.
type RawBook = map[string]any

// Book is a normalized catalog entry. Values are treated as immutable once
// produced by Normalize.
type Book struct {
	ID          int      `json:"id"`
	Author      string   `json:"author"`
	Title       string   `json:"title"`
	Series      string   `json:"series"`
	SeriesIndex *float64 `json:"series_index"`
	CoverPath   string   `json:"cover_path"`
	IsRead      int      `json:"is_read"`
	Language    string   `json:"language,omitempty"`
	CoverColor  *Color   `json:"cover_color,omitempty"`
}

// Read reports whether the book is marked as read.
func (b Book) Read() bool {
	return b.IsRead == 1
}

// HasSeries reports whether the book belongs to a series.
func (b Book) HasSeries() bool {
	return b.Series != ""
}

// Index returns the series index and whether one is present.
func (b Book) Index() (float64, bool) {
	if b.SeriesIndex == nil {
		return 0, false
	}
	return *b.SeriesIndex, true
}

// AuthorKey is the author used for grouping and author statistics.
func (b Book) AuthorKey() string {
	if b.Author == "" {
		return UnknownAuthor
	}
	return b.Author
}

// Raw returns the book in catalog record form. Normalizing the result yields
// an identical Book.
func (b Book) Raw() RawBook {
	raw := RawBook{
		"id":         float64(b.ID),
		"author":     b.Author,
		"title":      b.Title,
		"series":     b.Series,
		"cover_path": b.CoverPath,
		"is_read":    float64(b.IsRead),
	}
	if b.SeriesIndex != nil {
		raw["series_index"] = *b.SeriesIndex
	}
	if b.Language != "" {
		raw["language"] = b.Language
	}
	if b.CoverColor != nil {
		c := *b.CoverColor
		raw["cover_color"] = []any{float64(c[0]), float64(c[1]), float64(c[2])}
	}
	return raw
}

// Float returns a pointer to v, for building series indexes.
func Float(v float64) *float64 {
	return &v
}
