// Package catalog reads a Calibre catalog export (books.json and
// languages.json) from local files or http(s) URLs.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/cache"
	"github.com/Dakoina/CalibreBookGrid/internal/config"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/ratelimit"
	"github.com/spf13/viper"
)

const (
	defaultAttempts      = 3
	defaultRatePerSecond = 2
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Loader resolves the catalog sources. The zero value reads nothing;
// set at least BooksSource.
type Loader struct {
	BooksSource     string
	LanguagesSource string
	// CoverRoot is the directory cover_path values are relative to.
	CoverRoot string
	// DeriveColors fills in cover_color from the cover image when missing.
	DeriveColors bool
	// Attempts bounds remote fetches, including the first try.
	Attempts int

	httpClient HTTPDoer
	limiters   *ratelimit.Hosts
	backoff    func(attempt int, err error) time.Duration
}

// Option is a functional option for configuring the Loader.
type Option func(*Loader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(l *Loader) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithRateLimit sets the per-host request rate for remote sources.
func WithRateLimit(requestsPerSecond int) Option {
	return func(l *Loader) {
		if requestsPerSecond > 0 {
			l.limiters = ratelimit.NewHosts(requestsPerSecond)
		}
	}
}

// New creates a Loader for the given sources.
func New(booksSource, languagesSource string, opts ...Option) *Loader {
	l := &Loader{
		BooksSource:     booksSource,
		LanguagesSource: languagesSource,
		Attempts:        defaultAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromConfig builds a Loader from the global configuration.
func FromConfig(opts ...Option) *Loader {
	rps := viper.GetInt("catalog.rps")
	if rps <= 0 {
		rps = defaultRatePerSecond
	}

	l := New(config.BooksSource, config.LanguagesSource, append([]Option{WithRateLimit(rps)}, opts...)...)
	l.CoverRoot = config.CoverRoot
	l.DeriveColors = config.DeriveColors
	if attempts := viper.GetInt("catalog.attempts"); attempts > 0 {
		l.Attempts = attempts
	}
	return l
}

// LoadBooks returns the raw catalog records in file order.
func (l *Loader) LoadBooks(ctx context.Context) ([]library.RawBook, error) {
	if l.BooksSource == "" {
		return nil, fmt.Errorf("no books source configured")
	}

	var elems []any
	if err := l.load(ctx, l.BooksSource, cache.CatalogTable, &elems); err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	raw := toRawBooks(elems)

	if l.DeriveColors {
		l.deriveColors(raw)
	}

	slog.Info("Loaded catalog", "source", l.BooksSource, "books", len(raw))
	return raw, nil
}

// Books loads and normalizes the catalog.
func (l *Loader) Books(ctx context.Context) ([]library.Book, error) {
	raw, err := l.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}
	return library.NormalizeAll(raw), nil
}

// LoadLanguages returns the language codes listed in the languages source.
// An unset source yields an empty list.
func (l *Loader) LoadLanguages(ctx context.Context) ([]string, error) {
	if l.LanguagesSource == "" {
		return []string{}, nil
	}

	var langs []string
	if err := l.load(ctx, l.LanguagesSource, cache.LanguagesTable, &langs); err != nil {
		return nil, fmt.Errorf("failed to load languages: %w", err)
	}
	if langs == nil {
		langs = []string{}
	}
	return langs, nil
}

func (l *Loader) load(ctx context.Context, source, table string, target any) error {
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return err
		}
		return decode(source, data, target)
	}

	// Remote payloads go through the fetch cache; only well-formed JSON is
	// stored.
	payload, fromCache, err := cache.GetOrFetchWithPolicy(table, source, func() (json.RawMessage, error) {
		return l.fetch(ctx, source)
	}, func(data json.RawMessage) bool { return json.Valid(data) })
	if err != nil {
		return err
	}
	if fromCache {
		slog.Debug("Catalog source served from cache", "source", source)
	}
	return decode(source, payload, target)
}

func decode(source string, data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", source, err)
	}
	return nil
}

// toRawBooks keeps one record per array element. Elements that are not
// objects become empty records so their position is preserved.
func toRawBooks(elems []any) []library.RawBook {
	raw := make([]library.RawBook, len(elems))
	for i, e := range elems {
		if m, ok := e.(map[string]any); ok {
			raw[i] = m
			continue
		}
		slog.Debug("Catalog record is not an object", "index", i)
		raw[i] = library.RawBook{}
	}
	return raw
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
