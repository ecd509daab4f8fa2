package library

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizeAll converts raw catalog records into canonical books, keeping
// length and order.
func NormalizeAll(raw []RawBook) []Book {
	books := make([]Book, len(raw))
	for i, r := range raw {
		books[i] = Normalize(r)
	}
	return books
}

// Normalize converts a single raw record into a Book. It never fails: values
// that cannot be coerced fall back to their zero or absent state.
func Normalize(raw RawBook) Book {
	return Book{
		ID:          toInt(raw["id"]),
		Author:      toString(raw["author"]),
		Title:       toString(raw["title"]),
		Series:      toString(raw["series"]),
		SeriesIndex: toIndex(raw["series_index"]),
		CoverPath:   toString(raw["cover_path"]),
		IsRead:      toReadFlag(raw["is_read"]),
		Language:    toString(raw["language"]),
		CoverColor:  toColor(raw["cover_color"]),
	}
}

// toNumber coerces numbers and numeric strings. The bool result is false for
// anything that is not a finite number.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) int {
	f, ok := toNumber(v)
	if !ok {
		return 0
	}
	return int(f)
}

func toIndex(v any) *float64 {
	if v == nil {
		return nil
	}
	f, ok := toNumber(v)
	if !ok {
		return nil
	}
	if _, isBool := v.(bool); isBool {
		return nil
	}
	return &f
}

func toReadFlag(v any) int {
	f, ok := toNumber(v)
	if ok && f == 1 {
		return 1
	}
	return 0
}

// toString mirrors loose string coercion: falsy values become "", everything
// else is rendered and trimmed.
func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case bool:
		if s {
			return "true"
		}
		return ""
	case json.Number:
		return strings.TrimSpace(s.String())
	}
	if f, ok := toNumber(v); ok {
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func toColor(v any) *Color {
	var parts []any
	switch c := v.(type) {
	case []any:
		parts = c
	case []float64:
		for _, f := range c {
			parts = append(parts, f)
		}
	case []int:
		for _, i := range c {
			parts = append(parts, i)
		}
	case Color:
		parts = []any{c[0], c[1], c[2]}
	case *Color:
		if c == nil {
			return nil
		}
		parts = []any{c[0], c[1], c[2]}
	default:
		return nil
	}
	if len(parts) != 3 {
		return nil
	}

	var color Color
	for i, p := range parts {
		if _, isBool := p.(bool); isBool {
			return nil
		}
		f, ok := toNumber(p)
		if !ok {
			return nil
		}
		color[i] = clampChannel(f)
	}
	return &color
}

func clampChannel(f float64) int {
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
