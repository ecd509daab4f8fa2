package library

import (
	"cmp"
	"math"
	"slices"
)

// Hue returns the hue of the cover colour in whole degrees (0-359). Books
// without a colour, and greys, have hue 0.
func Hue(c *Color) int {
	if c == nil {
		return 0
	}
	r := float64(c[0]) / 255
	g := float64(c[1]) / 255
	b := float64(c[2]) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC
	if delta == 0 {
		return 0
	}

	var h float64
	switch maxC {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}

	deg := int(math.Round(h * 60))
	if deg < 0 {
		deg += 360
	}
	return deg
}

// SortByHue returns a copy of books in rainbow order of their cover colour.
// Equal hues keep their input order.
func SortByHue(books []Book) []Book {
	out := make([]Book, len(books))
	copy(out, books)
	slices.SortStableFunc(out, func(a, b Book) int {
		return cmp.Compare(Hue(a.CoverColor), Hue(b.CoverColor))
	})
	return out
}
