package cache

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// sourceTables maps the user-facing source names to cache tables.
var sourceTables = map[string]string{
	"catalog":   CatalogTable,
	"languages": LanguagesTable,
	"covers":    CoverColorTable,
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source  string `arg:"" help:"Cache source to invalidate: catalog, languages, covers, all" required:""`
	Expired bool   `help:"Only remove entries past their TTL"`
}

func (i *InvalidateCacheCmd) Run() error {
	slog.Info("Invalidating cache", "source", i.Source, "expired_only", i.Expired, "database", viper.GetString("cache.dbfile"))

	tables, err := tablesFor(i.Source)
	if err != nil {
		return err
	}

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	var total int64
	for _, table := range tables {
		var rowsDeleted int64
		if i.Expired {
			rowsDeleted, err = cacheInstance.ClearExpired(table, ConfiguredTTL())
		} else {
			rowsDeleted, err = cacheInstance.InvalidateSource(table)
		}
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
		total += rowsDeleted
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", total)
	return nil
}

func tablesFor(source string) ([]string, error) {
	if source == "all" {
		tables := make([]string, 0, len(sourceTables))
		for _, table := range sourceTables {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		return tables, nil
	}

	table, ok := sourceTables[source]
	if !ok {
		names := make([]string, 0, len(sourceTables))
		for name := range sourceTables {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("invalid cache source '%s'; valid sources are: %s, all", source, strings.Join(names, ", "))
	}
	return []string{table}, nil
}
