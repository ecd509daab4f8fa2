package datastore

import (
	"fmt"

	"github.com/spf13/viper"
)

// Store is an export target: a local SQLite file or a remote Datasette.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(schema string) error

	// BatchInsert upserts multiple records into the specified table
	BatchInsert(database string, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}

// FromConfig picks the store named by datasette.mode ("local" or "remote").
func FromConfig() (Store, error) {
	switch mode := viper.GetString("datasette.mode"); mode {
	case "", "local":
		dbPath := viper.GetString("datasette.dbfile")
		if dbPath == "" {
			return nil, fmt.Errorf("datasette.dbfile is not set")
		}
		return NewSQLiteStore(dbPath), nil
	case "remote":
		remoteURL := viper.GetString("datasette.remote_url")
		if remoteURL == "" {
			return nil, fmt.Errorf("datasette.remote_url is not set")
		}
		return NewDatasetteClient(remoteURL, viper.GetString("datasette.api_token")), nil
	default:
		return nil, fmt.Errorf("unknown datasette mode %q", mode)
	}
}
