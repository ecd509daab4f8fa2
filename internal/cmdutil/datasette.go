package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/Dakoina/CalibreBookGrid/internal/datastore"
	"github.com/spf13/viper"
)

// WriteToDatastore exports items into table when datasette export is enabled.
// toMap turns one item into a row; description is used for logging.
func WriteToDatastore[T any](items []T, schema, table, description string, toMap func(T) map[string]any) error {
	if !viper.GetBool("datasette.enabled") {
		slog.Debug("Datasette export disabled, skipping", "table", table)
		return nil
	}

	store, err := datastore.FromConfig()
	if err != nil {
		return fmt.Errorf("failed to configure datastore: %w", err)
	}
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to datastore: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		records = append(records, toMap(item))
	}

	if err := store.BatchInsert(datastore.Database, table, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", description, err)
	}

	slog.Info("Exported to datastore", "what", description, "table", table, "rows", len(records))
	return nil
}
