package catalog

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/cache"
	"github.com/Dakoina/CalibreBookGrid/internal/config"
	"github.com/Dakoina/CalibreBookGrid/internal/errors"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, env *testutil.TestEnv) {
	t.Helper()

	testutil.ResetConfig(t)
	testutil.SetupTestCache(t, env)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })
}

func fastLoader(books, langs string, opts ...Option) *Loader {
	l := New(books, langs, append([]Option{WithRateLimit(1000)}, opts...)...)
	l.backoff = func(int, error) time.Duration { return 0 }
	return l
}

func TestLoadFromFiles(t *testing.T) {
	env := testutil.NewTestEnv(t)
	booksPath, langsPath := env.WriteCatalog(testutil.SampleCatalog(), []string{"eng", "fra"})

	l := New(booksPath, langsPath)

	books, err := l.Books(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 5)
	assert.Equal(t, "Mort", books[0].Title)
	assert.Equal(t, &library.Color{200, 40, 40}, books[1].CoverColor)
	assert.Nil(t, books[2].SeriesIndex)
	assert.Equal(t, 5, books[4].ID)
	assert.Equal(t, "", books[4].Author)

	langs, err := l.LoadLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "fra"}, langs)
}

func TestLoadErrors(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("bad.json", "{not json")
	env.WriteFileString("object.json", `{"books": []}`)

	_, err := New(env.Path("missing.json"), "").LoadBooks(context.Background())
	assert.Error(t, err)

	_, err = New(env.Path("bad.json"), "").LoadBooks(context.Background())
	assert.ErrorContains(t, err, "invalid JSON")

	_, err = New(env.Path("object.json"), "").LoadBooks(context.Background())
	assert.Error(t, err)

	_, err = New("", "").LoadBooks(context.Background())
	assert.Error(t, err)

	langs, err := New("x", "").LoadLanguages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, langs)
}

func TestLoadEmptyAndNullCatalog(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("null.json", "null")
	env.WriteFileString("empty.json", "[]")

	for _, name := range []string{"null.json", "empty.json"} {
		books, err := New(env.Path(name), env.Path(name)).Books(context.Background())
		require.NoError(t, err, name)
		assert.NotNil(t, books)
		assert.Empty(t, books)

		langs, err := New("", env.Path(name)).LoadLanguages(context.Background())
		require.NoError(t, err, name)
		assert.NotNil(t, langs)
	}
}

func TestLoadKeepsNonObjectRecords(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("mixed.json", `[{"id":1,"title":"a"},"junk",{"id":2},42,[1,2]]`)

	books, err := New(env.Path("mixed.json"), "").Books(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 5)
	assert.Equal(t, 1, books[0].ID)
	assert.Equal(t, "a", books[0].Title)
	assert.Equal(t, library.Book{}, books[1])
	assert.Equal(t, 2, books[2].ID)
	assert.Equal(t, library.Book{}, books[3])
	assert.Equal(t, library.Book{}, books[4])
}

func TestLoadRemoteIsCached(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/books.json":
			_ = json.NewEncoder(w).Encode(testutil.SampleCatalog())
		case "/languages.json":
			_, _ = w.Write([]byte(`["eng","fra"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := fastLoader(srv.URL+"/books.json", srv.URL+"/languages.json")

	books, err := l.Books(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 5)

	again, err := l.Books(context.Background())
	require.NoError(t, err)
	assert.Equal(t, books, again)
	assert.Equal(t, int32(1), hits.Load())

	langs, err := l.LoadLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "fra"}, langs)
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoadRemoteWaitsForRateLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`["eng"]`))
	}))
	defer srv.Close()

	l := fastLoader(srv.URL+"/books.json", srv.URL+"/languages.json", WithRateLimit(1))

	_, err := l.LoadLanguages(context.Background())
	require.NoError(t, err)

	// The single token is spent; the next request has to wait past the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.LoadBooks(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "rate limit wait")
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadRemoteRetriesServerErrors(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "try later", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id": 1, "title": "Mort"}]`))
	}))
	defer srv.Close()

	books, err := fastLoader(srv.URL, "").Books(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Mort", books[0].Title)
	assert.Equal(t, int32(3), hits.Load())
}

func TestLoadRemoteGivesUpAfterAttempts(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	l := fastLoader(srv.URL, "")
	l.Attempts = 2

	_, err := l.LoadBooks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRateLimitError(err))
	assert.ErrorContains(t, err, "retry after 2s")
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoadRemoteDoesNotRetryClientErrors(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastLoader(srv.URL, "").LoadBooks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.False(t, errors.IsRetryable(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadRemoteCancelledContext(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := New(srv.URL, "", WithRateLimit(1000))
	l.backoff = func(int, error) time.Duration {
		cancel()
		return time.Hour
	}

	_, err := l.LoadBooks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveColors(t *testing.T) {
	env := testutil.NewTestEnv(t)
	setupCache(t, env)
	env.WriteCover("Ann Leckie/Ancillary Justice (4)/cover.jpg", color.NRGBA{R: 10, G: 20, B: 200, A: 255})
	booksPath, _ := env.WriteCatalog(testutil.SampleCatalog(), nil)

	l := New(booksPath, "")
	l.CoverRoot = env.RootDir()
	l.DeriveColors = true

	books, err := l.Books(context.Background())
	require.NoError(t, err)

	// Existing colours are kept, missing covers stay nil.
	assert.Equal(t, &library.Color{200, 40, 40}, books[1].CoverColor)
	assert.Nil(t, books[0].CoverColor)
	require.NotNil(t, books[3].CoverColor)
	assert.InDelta(t, 200, books[3].CoverColor[2], 6)
}

func TestFromConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env)
	testutil.SetViperValue(t, "catalog.attempts", 5)
	config.DeriveColors = true

	l := FromConfig()
	assert.Equal(t, env.Path("books.json"), l.BooksSource)
	assert.Equal(t, env.Path("languages.json"), l.LanguagesSource)
	assert.Equal(t, env.RootDir(), l.CoverRoot)
	assert.True(t, l.DeriveColors)
	assert.Equal(t, 5, l.Attempts)
	assert.NotNil(t, l.limiters)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Equal(t, time.Duration(0), retryAfter("soon"))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	assert.InDelta(t, float64(time.Minute), float64(retryAfter(future)), float64(2*time.Second))
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, time.Second, backoffDelay(1, nil))
	assert.Equal(t, 4*time.Second, backoffDelay(3, nil))
	assert.Equal(t, maxBackoff, backoffDelay(10, nil))
	assert.Equal(t, 7*time.Second, backoffDelay(1, errors.NewRateLimitErrorWithRetry("x", 7*time.Second)))
	assert.Equal(t, maxBackoff, backoffDelay(1, errors.NewRateLimitErrorWithRetry("x", time.Minute)))
}
