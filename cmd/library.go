package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Dakoina/CalibreBookGrid/internal/prefs"
	"github.com/Dakoina/CalibreBookGrid/internal/state"
	"github.com/spf13/viper"
)

var stdout io.Writer = os.Stdout

// loadLibrary builds a store from the configured catalog. A catalog that
// cannot be loaded leaves the store empty; commands still run.
func loadLibrary(ctx context.Context) *state.Store {
	store := state.New()
	if err := store.Load(ctx, newLoader()); err != nil {
		slog.Warn("Continuing with an empty library", "error", err)
	}
	return store
}

// openThumbSize reads the thumbnail preference from prefs.dbfile. When the
// database cannot be opened the preference lives in memory for this run.
func openThumbSize() (*prefs.ThumbnailSize, func()) {
	path := viper.GetString("prefs.dbfile")
	kv, err := prefs.OpenSQLite(path)
	if err != nil {
		slog.Warn("Preferences unavailable, changes will not be saved", "path", path, "error", err)
		return prefs.Load(prefs.NewMemoryKV()), func() {}
	}

	return prefs.Load(kv), func() {
		if err := kv.Close(); err != nil {
			slog.Debug("Failed to close preferences database", "error", err)
		}
	}
}
