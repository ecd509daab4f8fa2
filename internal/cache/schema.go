package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency.
// ttl_seconds overrides the configured TTL for a single entry when > 0.

// CatalogCacheSchema caches remote books.json payloads keyed by source URL
const CatalogCacheSchema = `
CREATE TABLE IF NOT EXISTS catalog_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_catalog_cached_at ON catalog_cache(cached_at);
`

// LanguagesCacheSchema caches remote languages.json payloads keyed by source URL
const LanguagesCacheSchema = `
CREATE TABLE IF NOT EXISTS languages_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_languages_cached_at ON languages_cache(cached_at);
`

// CoverColorCacheSchema caches average cover colours keyed by cover path and
// modification time
const CoverColorCacheSchema = `
CREATE TABLE IF NOT EXISTS cover_color_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cover_color_cached_at ON cover_color_cache(cached_at);
`

// Table names
const (
	CatalogTable    = "catalog_cache"
	LanguagesTable  = "languages_cache"
	CoverColorTable = "cover_color_cache"
)

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	CatalogCacheSchema,
	LanguagesCacheSchema,
	CoverColorCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	CatalogTable:    true,
	LanguagesTable:  true,
	CoverColorTable: true,
}
