package cmdutil

import (
	"github.com/Dakoina/CalibreBookGrid/internal/datastore"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/stats"
)

// BookRecord maps a book to a library_books row.
func BookRecord(b library.Book) map[string]any {
	row := Row(b)
	row["series_index"] = nil
	if idx, ok := b.Index(); ok {
		row["series_index"] = idx
	}
	row["cover_color"] = nil
	if b.CoverColor != nil {
		row["cover_color"] = b.CoverColor.Hex()
	}
	row["hue"] = library.Hue(b.CoverColor)
	return row
}

// SeriesRecord maps a series summary to a library_series row.
func SeriesRecord(s stats.SeriesInfo) map[string]any {
	return Row(s)
}

// ExportLibrary writes the books and their series summaries to the
// configured datastore. It is a no-op when datasette export is disabled.
func ExportLibrary(books []library.Book) error {
	if err := WriteToDatastore(books, datastore.BooksSchema, datastore.BooksTable, "books", BookRecord); err != nil {
		return err
	}
	return WriteToDatastore(stats.Series(books), datastore.SeriesSchema, datastore.SeriesTable, "series", SeriesRecord)
}
