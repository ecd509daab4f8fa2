package testutil

import (
	"testing"

	"github.com/Dakoina/CalibreBookGrid/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles  bool
	BooksSource     string
	LanguagesSource string
	CoverRoot       string
	DeriveColors    bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles:  config.OverwriteFiles,
		BooksSource:     config.BooksSource,
		LanguagesSource: config.LanguagesSource,
		CoverRoot:       config.CoverRoot,
		DeriveColors:    config.DeriveColors,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.BooksSource = state.BooksSource
	config.LanguagesSource = state.LanguagesSource
	config.CoverRoot = state.CoverRoot
	config.DeriveColors = state.DeriveColors
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig resets config and points every file-backed setting into env.
func SetTestConfig(t *testing.T, env *TestEnv) {
	t.Helper()

	ResetConfig(t)
	config.SetDefaults()

	config.OverwriteFiles = true
	config.BooksSource = env.Path("books.json")
	config.LanguagesSource = env.Path("languages.json")
	config.CoverRoot = env.RootDir()
	config.DeriveColors = false

	viper.Set("books.source", config.BooksSource)
	viper.Set("languages.source", config.LanguagesSource)
	viper.Set("covers.root", config.CoverRoot)
	SetupTestCache(t, env)
	SetupPrefsDB(t, env)
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so an unset key stays at the test value
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestCache configures viper for test caching with a temporary directory.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	viper.Set("cache.dbfile", env.Path("cache", "test-cache.db"))
	viper.Set("cache.ttl", "24h")

	return env.Path("cache")
}

// SetupPrefsDB points the preference store at a temporary database.
func SetupPrefsDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("prefs.db")
	viper.Set("prefs.dbfile", dbPath)
	return dbPath
}

// SetupDatasetteDB enables local datasette export into a temporary database.
// Returns the database path.
func SetupDatasetteDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("test.db")

	SetViperValue(t, "datasette.enabled", true)
	SetViperValue(t, "datasette.mode", "local")
	SetViperValue(t, "datasette.dbfile", dbPath)

	return dbPath
}
