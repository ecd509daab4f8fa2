// Package config holds the process-wide settings resolved from viper.
package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing report and thumbnail files are replaced
	OverwriteFiles bool
	// BooksSource is the path or URL of books.json
	BooksSource string
	// LanguagesSource is the path or URL of languages.json
	LanguagesSource string
	// CoverRoot is the directory cover_path values are relative to
	CoverRoot string
	// DeriveColors fills missing cover colours from the cover images
	DeriveColors bool
)

// SetDefaults registers the default value of every known key.
func SetDefaults() {
	viper.SetDefault("books.source", "books.json")
	viper.SetDefault("languages.source", "languages.json")
	viper.SetDefault("covers.root", ".")
	viper.SetDefault("covers.derive", false)
	viper.SetDefault("catalog.attempts", 3)
	viper.SetDefault("catalog.rps", 2)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("prefs.dbfile", "./prefs.db")
	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./bookgrid.db")
	viper.SetDefault("datasette.remote_url", "")
	viper.SetDefault("datasette.api_token", "")
	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.jsondir", "json")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("OverwriteFiles", false)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	OverwriteFiles = viper.GetBool("OverwriteFiles")
	BooksSource = viper.GetString("books.source")
	LanguagesSource = viper.GetString("languages.source")
	CoverRoot = viper.GetString("covers.root")
	DeriveColors = viper.GetBool("covers.derive")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}
