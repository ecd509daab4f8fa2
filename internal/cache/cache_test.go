package cache

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/testutil"
	"github.com/spf13/viper"
)

type TestData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func setupTestCache(t *testing.T) *CacheDB {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	ValidCacheTableNames["test_cache"] = true
	t.Cleanup(func() {
		delete(ValidCacheTableNames, "test_cache")
	})

	env := testutil.NewTestEnv(t)
	cache, err := NewCacheDB(filepath.Join(env.RootDir(), "test_cache.db"))
	if err != nil {
		t.Fatalf("Failed to create cache database: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	testSchema := `
		CREATE TABLE IF NOT EXISTS test_cache (
			cache_key TEXT PRIMARY KEY NOT NULL,
			data TEXT NOT NULL,
			ttl_seconds INTEGER NOT NULL DEFAULT 0,
			cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if err := cache.CreateTable(testSchema); err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}

	viper.Set("cache.ttl", "1h")
	return cache
}

func withGlobalCache(t *testing.T, cache *CacheDB) {
	t.Helper()

	oldCache := globalCache
	globalCache = cache
	globalCacheOnce = sync.Once{}
	globalCacheOnce.Do(func() {})

	t.Cleanup(func() {
		globalCache = oldCache
		globalCacheOnce = sync.Once{}
	})
}

func cacheExists(t *testing.T, cache *CacheDB, tableName, key string) bool {
	t.Helper()

	var exists int
	err := cache.db.QueryRow("SELECT 1 FROM "+tableName+" WHERE cache_key = ? LIMIT 1", key).Scan(&exists)
	return err == nil
}

func setCachedAt(t *testing.T, cache *CacheDB, tableName, key string, at time.Time) {
	t.Helper()

	if _, err := cache.db.Exec("UPDATE "+tableName+" SET cached_at = ? WHERE cache_key = ?", at.UTC(), key); err != nil {
		t.Fatalf("Failed to update cached_at: %v", err)
	}
}

func TestGetOrFetchWithPolicy_CacheHit(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	if err := cache.Set("test_cache", "books.json", `{"id":1,"name":"Test"}`, 0); err != nil {
		t.Fatalf("Failed to pre-populate cache: %v", err)
	}

	fetchCalled := false
	result, fromCache, err := GetOrFetchWithPolicy("test_cache", "books.json", func() (TestData, error) {
		fetchCalled = true
		return TestData{}, nil
	}, nil)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected fromCache to be true")
	}
	if fetchCalled {
		t.Error("Expected fetch function not to be called")
	}
	if result != (TestData{ID: 1, Name: "Test"}) {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestGetOrFetchWithPolicy_CacheMiss(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	expectedData := TestData{ID: 2, Name: "Fetched"}
	fetchCalled := 0
	fetchFunc := func() (TestData, error) {
		fetchCalled++
		return expectedData, nil
	}

	result, fromCache, err := GetOrFetchWithPolicy("test_cache", "key", fetchFunc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false")
	}
	if result != expectedData {
		t.Errorf("Expected %+v, got %+v", expectedData, result)
	}
	if !cacheExists(t, cache, "test_cache", "key") {
		t.Error("Expected cache entry to be created")
	}

	result, fromCache, err = GetOrFetchWithPolicy("test_cache", "key", fetchFunc, nil)
	if err != nil {
		t.Fatalf("Expected no error on second call, got %v", err)
	}
	if !fromCache {
		t.Error("Expected second call to return from cache")
	}
	if fetchCalled != 1 {
		t.Errorf("Expected fetch not to be called again, got %d calls", fetchCalled)
	}
	if result != expectedData {
		t.Errorf("Expected %+v from cache, got %+v", expectedData, result)
	}
}

func TestGetOrFetchWithPolicy_RespectsTTLExpiration(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	if err := cache.Set("test_cache", "key", `{"id":1,"name":"stale"}`, 0); err != nil {
		t.Fatalf("Failed to seed stale cache: %v", err)
	}
	setCachedAt(t, cache, "test_cache", "key", time.Now().Add(-2*time.Hour))

	freshData := TestData{ID: 2, Name: "Fresh"}
	result, fromCache, err := GetOrFetchWithPolicy("test_cache", "key", func() (TestData, error) {
		return freshData, nil
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Fatal("Expected cache miss due to TTL expiration")
	}
	if result != freshData {
		t.Fatalf("Expected fresh data, got %+v", result)
	}

	cached, hit, err := cache.Get("test_cache", "key", time.Hour)
	if err != nil || !hit {
		t.Fatalf("Expected refreshed entry, hit=%v err=%v", hit, err)
	}
	var cachedData TestData
	if err := json.Unmarshal([]byte(cached), &cachedData); err != nil {
		t.Fatalf("Failed to unmarshal cached data: %v", err)
	}
	if cachedData != freshData {
		t.Fatalf("Expected cached data %+v, got %+v", freshData, cachedData)
	}
}

func TestGetOrFetchWithPolicy_FetchError(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	result, fromCache, err := GetOrFetchWithPolicy("test_cache", "key", func() (TestData, error) {
		return TestData{}, &testError{"fetch failed"}
	}, nil)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if fromCache {
		t.Error("Expected fromCache to be false")
	}
	if result != (TestData{}) {
		t.Errorf("Expected zero value, got %+v", result)
	}
	if cacheExists(t, cache, "test_cache", "key") {
		t.Error("Failed fetches must not be cached")
	}
}

func TestGetOrFetchWithPolicy_SkipCaching(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	fetches := 0
	fetch := func() ([]string, error) {
		fetches++
		return []string{}, nil
	}
	nonEmpty := func(v []string) bool { return len(v) > 0 }

	for i := 0; i < 2; i++ {
		if _, fromCache, err := GetOrFetchWithPolicy("test_cache", "empty", fetch, nonEmpty); err != nil || fromCache {
			t.Fatalf("call %d: fromCache=%v err=%v", i, fromCache, err)
		}
	}
	if fetches != 2 {
		t.Errorf("Expected 2 fetches for uncached values, got %d", fetches)
	}
	if cacheExists(t, cache, "test_cache", "empty") {
		t.Error("Expected empty value to be skipped")
	}
}

func TestGetOrFetchWithTTL_NegativeCaching(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)
	viper.Set("cache.ttl", "24h")

	selector := SelectNegativeCacheTTL(func(v *TestData) bool { return v == nil })

	_, _, err := GetOrFetchWithTTL("test_cache", "missing", func() (*TestData, error) {
		return nil, nil
	}, selector)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, _, err = GetOrFetchWithTTL("test_cache", "found", func() (*TestData, error) {
		return &TestData{ID: 1}, nil
	}, selector)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Two hours old: past the negative TTL but within the configured one.
	setCachedAt(t, cache, "test_cache", "missing", time.Now().Add(-2*time.Hour))
	setCachedAt(t, cache, "test_cache", "found", time.Now().Add(-2*time.Hour))

	if _, hit, _ := cache.Get("test_cache", "missing", ConfiguredTTL()); hit {
		t.Error("Expected negative entry to expire after NegativeCacheTTL")
	}
	if _, hit, _ := cache.Get("test_cache", "found", ConfiguredTTL()); !hit {
		t.Error("Expected positive entry to use the configured TTL")
	}
}

func TestConfiguredTTL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if got := ConfiguredTTL(); got != DefaultCacheTTL {
		t.Errorf("Expected default TTL, got %v", got)
	}

	viper.Set("cache.ttl", "90m")
	if got := ConfiguredTTL(); got != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", got)
	}

	viper.Set("cache.ttl", "soon")
	if got := ConfiguredTTL(); got != DefaultCacheTTL {
		t.Errorf("Expected default TTL for invalid value, got %v", got)
	}
}

func TestCacheDB_ClearExpired(t *testing.T) {
	cache := setupTestCache(t)

	_ = cache.Set("test_cache", "old", `{}`, 0)
	_ = cache.Set("test_cache", "new", `{}`, 0)
	_ = cache.Set("test_cache", "negative", `null`, NegativeCacheTTL)
	setCachedAt(t, cache, "test_cache", "old", time.Now().Add(-48*time.Hour))
	setCachedAt(t, cache, "test_cache", "negative", time.Now().Add(-2*time.Hour))

	deleted, err := cache.ClearExpired("test_cache", 24*time.Hour)
	if err != nil {
		t.Fatalf("ClearExpired failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 rows deleted, got %d", deleted)
	}
	if cacheExists(t, cache, "test_cache", "old") {
		t.Error("Expected old entry to be removed")
	}
	if cacheExists(t, cache, "test_cache", "negative") {
		t.Error("Expected entry past its own TTL to be removed")
	}
	if !cacheExists(t, cache, "test_cache", "new") {
		t.Error("Expected new entry to remain")
	}
}

func TestCacheDB_InvalidateSource(t *testing.T) {
	cache := setupTestCache(t)

	_ = cache.Set("test_cache", "key1", `{"id":1}`, 0)
	_ = cache.Set("test_cache", "key2", `{"id":2}`, 0)
	_ = cache.Set("test_cache", "key3", `{"id":3}`, 0)

	rowsDeleted, err := cache.InvalidateSource("test_cache")
	if err != nil {
		t.Fatalf("Failed to invalidate cache: %v", err)
	}
	if rowsDeleted != 3 {
		t.Errorf("Expected 3 rows deleted, got %d", rowsDeleted)
	}
	if cacheExists(t, cache, "test_cache", "key1") {
		t.Error("Expected key1 to be invalidated")
	}
}

func TestCacheDB_InvalidTableName(t *testing.T) {
	cache := setupTestCache(t)

	if _, err := cache.InvalidateSource("books; DROP TABLE x"); err == nil {
		t.Error("Expected error for invalid table name")
	}
	if err := cache.Set("nope", "k", "v", 0); err == nil {
		t.Error("Expected error for invalid table name on Set")
	}
	if _, _, err := cache.Get("nope", "k", time.Hour); err == nil {
		t.Error("Expected error for invalid table name on Get")
	}
}

func TestTablesFor(t *testing.T) {
	tables, err := tablesFor("covers")
	if err != nil || len(tables) != 1 || tables[0] != CoverColorTable {
		t.Fatalf("tablesFor(covers) = %v, %v", tables, err)
	}

	tables, err = tablesFor("all")
	if err != nil || len(tables) != 3 {
		t.Fatalf("tablesFor(all) = %v, %v", tables, err)
	}

	if _, err := tablesFor("steam"); err == nil {
		t.Fatal("Expected error for unknown source")
	}
}

func TestInvalidateCacheCmd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	env := testutil.NewTestEnv(t)
	viper.Set("cache.dbfile", env.Path("cache.db"))
	if err := ResetGlobalCache(); err != nil {
		t.Fatalf("ResetGlobalCache failed: %v", err)
	}
	t.Cleanup(func() { _ = ResetGlobalCache() })

	db, err := GetGlobalCache()
	if err != nil {
		t.Fatalf("GetGlobalCache failed: %v", err)
	}
	_ = db.Set(CatalogTable, "https://example.com/books.json", `[]`, 0)

	if err := (&InvalidateCacheCmd{Source: "catalog"}).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cacheExists(t, db, CatalogTable, "https://example.com/books.json") {
		t.Error("Expected catalog entry to be removed")
	}
}

func TestInvalidateCacheCmdExpiredOnly(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	env := testutil.NewTestEnv(t)
	viper.Set("cache.dbfile", env.Path("cache.db"))
	viper.Set("cache.ttl", "24h")
	if err := ResetGlobalCache(); err != nil {
		t.Fatalf("ResetGlobalCache failed: %v", err)
	}
	t.Cleanup(func() { _ = ResetGlobalCache() })

	db, err := GetGlobalCache()
	if err != nil {
		t.Fatalf("GetGlobalCache failed: %v", err)
	}
	_ = db.Set(CatalogTable, "https://example.com/old.json", `[]`, 0)
	_ = db.Set(CatalogTable, "https://example.com/new.json", `[]`, 0)
	setCachedAt(t, db, CatalogTable, "https://example.com/old.json", time.Now().Add(-48*time.Hour))

	if err := (&InvalidateCacheCmd{Source: "catalog", Expired: true}).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cacheExists(t, db, CatalogTable, "https://example.com/old.json") {
		t.Error("Expected expired entry to be removed")
	}
	if !cacheExists(t, db, CatalogTable, "https://example.com/new.json") {
		t.Error("Expected fresh entry to remain")
	}
}
