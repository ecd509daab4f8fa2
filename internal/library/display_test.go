package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHue(t *testing.T) {
	testCases := []struct {
		name     string
		color    *Color
		expected int
	}{
		{name: "absent", color: nil, expected: 0},
		{name: "grey", color: &Color{128, 128, 128}, expected: 0},
		{name: "red", color: &Color{255, 0, 0}, expected: 0},
		{name: "green", color: &Color{0, 255, 0}, expected: 120},
		{name: "blue", color: &Color{0, 0, 255}, expected: 240},
		{name: "magenta wraps", color: &Color{255, 0, 128}, expected: 330},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Hue(tc.color))
		})
	}
}

func TestSortByHue(t *testing.T) {
	books := []Book{
		{ID: 1, CoverColor: &Color{0, 0, 255}},
		{ID: 2},
		{ID: 3, CoverColor: &Color{0, 255, 0}},
		{ID: 4, CoverColor: &Color{255, 0, 0}},
	}

	assert.Equal(t, []int{2, 4, 3, 1}, ids(SortByHue(books)))
	assert.Equal(t, 1, books[0].ID, "input is not reordered")
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Mort", DisplayTitle(Book{Title: "Mort"}))
	assert.Equal(t, "4 · Mort", DisplayTitle(Book{Title: "Mort", SeriesIndex: Float(4)}))
	assert.Equal(t, "1.5 · Interlude", DisplayTitle(Book{Title: "Interlude", SeriesIndex: Float(1.5)}))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName("eng"))
	assert.Equal(t, "German", LanguageName("DE"))
	assert.Equal(t, "Norwegian Bokmål", LanguageName("nob"))
	assert.Equal(t, "XYZ", LanguageName("xyz"))
}

func TestGoodreadsURL(t *testing.T) {
	url := GoodreadsURL(Book{Title: "Mort", Author: "Terry Pratchett"})
	assert.Equal(t, "https://www.goodreads.com/search?q=Mort+Terry+Pratchett", url)
}

func TestSuggest(t *testing.T) {
	books := sampleBooks()

	suggestions := Suggest(books, "dscwrld", 3)
	assert.Equal(t, []string{"Discworld"}, suggestions)

	assert.Nil(t, Suggest(books, "  ", 3))
	assert.Len(t, Suggest(books, "e", 2), 2)
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff0080", Color{255, 0, 128}.Hex())
	assert.Equal(t, "#000000", Color{}.Hex())
}
