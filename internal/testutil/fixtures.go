package testutil

import (
	"encoding/json"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// SampleCatalog returns raw catalog records in the loose shape books.json
// uses: numbers as floats, absent fields, null indexes and one odd record.
func SampleCatalog() []map[string]any {
	return []map[string]any{
		{"id": 1.0, "author": "Terry Pratchett", "title": "Mort", "series": "Discworld", "series_index": 4.0,
			"cover_path": "Terry Pratchett/Mort (1)/cover.jpg", "is_read": 1.0, "language": "eng"},
		{"id": 2.0, "author": "Terry Pratchett", "title": "The Colour of Magic", "series": "Discworld", "series_index": 1.0,
			"cover_path": "Terry Pratchett/The Colour of Magic (2)/cover.jpg", "is_read": 1.0, "language": "eng",
			"cover_color": []any{200.0, 40.0, 40.0}},
		{"id": 3.0, "author": "Jules Verne", "title": "Le Tour du monde en quatre-vingts jours", "series": "",
			"series_index": nil, "cover_path": "", "is_read": 0.0, "language": "fra"},
		{"id": 4.0, "author": "Ann Leckie", "title": "Ancillary Justice", "series": "Imperial Radch", "series_index": 1.0,
			"cover_path": "Ann Leckie/Ancillary Justice (4)/cover.jpg", "is_read": 0.0, "language": "eng"},
		{"id": "5", "author": " ", "title": "Beowulf", "is_read": "0"},
	}
}

// WriteJSON marshals v into a file within the test environment.
func (e *TestEnv) WriteJSON(path string, v any) {
	e.t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		e.t.Fatalf("failed to marshal %q: %v", path, err)
	}
	e.WriteFile(path, data)
}

// WriteCatalog writes books.json and languages.json and returns their paths.
func (e *TestEnv) WriteCatalog(books []map[string]any, languages []string) (string, string) {
	e.t.Helper()

	e.WriteJSON("books.json", books)
	e.WriteJSON("languages.json", languages)
	return e.Path("books.json"), e.Path("languages.json")
}

// WriteCover writes a solid-colour cover image. The format follows the
// file extension.
func (e *TestEnv) WriteCover(path string, c color.Color) string {
	e.t.Helper()

	absPath := e.Path(path)
	e.MkdirAll(filepath.Dir(path))

	img := imaging.New(12, 18, c)
	if err := imaging.Save(img, absPath); err != nil {
		e.t.Fatalf("failed to write cover %q: %v", absPath, err)
	}
	return absPath
}
