package datastore

// Database is the database name used for Datasette inserts.
const Database = "bookgrid"

// Export tables
const (
	BooksTable  = "library_books"
	SeriesTable = "library_series"
)

// BooksSchema holds one row per catalog book.
const BooksSchema = `
CREATE TABLE IF NOT EXISTS library_books (
	id INTEGER PRIMARY KEY,
	author TEXT NOT NULL,
	title TEXT NOT NULL,
	series TEXT NOT NULL DEFAULT '',
	series_index REAL,
	cover_path TEXT NOT NULL DEFAULT '',
	is_read INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT '',
	cover_color TEXT,
	hue INTEGER NOT NULL DEFAULT 0
);
`

// SeriesSchema holds the per-series completeness summary.
const SeriesSchema = `
CREATE TABLE IF NOT EXISTS library_series (
	name TEXT PRIMARY KEY NOT NULL,
	count INTEGER NOT NULL,
	is_complete INTEGER NOT NULL,
	books_read INTEGER NOT NULL,
	is_started INTEGER NOT NULL,
	is_finished INTEGER NOT NULL
);
`
