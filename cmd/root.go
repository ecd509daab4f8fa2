package cmd

import (
	"log/slog"
	"os"

	"github.com/Dakoina/CalibreBookGrid/internal/cache"
	"github.com/Dakoina/CalibreBookGrid/internal/catalog"
	"github.com/Dakoina/CalibreBookGrid/internal/cmdutil"
	"github.com/Dakoina/CalibreBookGrid/internal/config"
	"github.com/Dakoina/CalibreBookGrid/internal/server"
	"github.com/Dakoina/CalibreBookGrid/internal/state"
	"github.com/Dakoina/CalibreBookGrid/internal/tui"
	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var (
	newLoader     = func() state.Loader { return catalog.FromConfig() }
	runBrowser    = tui.Browse
	runServer     = server.Serve
	exportLibrary = cmdutil.ExportLibrary
)

// CLI represents the complete command structure for the bookgrid application
type CLI struct {
	// Catalog flags
	Books        string `help:"Path or URL of books.json (overrides books.source)"`
	Languages    string `help:"Path or URL of languages.json (overrides languages.source)"`
	CoverRoot    string `help:"Directory cover paths are relative to (overrides covers.root)"`
	DeriveColors bool   `help:"Derive missing cover colours from the cover images"`
	Overwrite    bool   `help:"Overwrite existing report and thumbnail files"`

	// Datasette flags
	Datasette   bool   `help:"Enable Datasette export"`
	DatasetteDB string `help:"Path to SQLite database file for the export"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 24h)"`
	PrefsDBFile string `help:"Path to preferences SQLite database file"`

	List    ListCmd    `cmd:"" help:"List books in canonical order"`
	Authors AuthorsCmd `cmd:"" help:"Show books grouped by author and series"`
	Series  SeriesCmd  `cmd:"" help:"List series, or the books of one series"`
	Rainbow RainbowCmd `cmd:"" help:"List books ordered by cover colour"`
	Stats   StatsCmd   `cmd:"" help:"Print library statistics"`
	Report  ReportCmd  `cmd:"" help:"Write the statistics report as a markdown note"`
	Export  ExportCmd  `cmd:"" help:"Export books and series to Datasette"`
	Browse  BrowseCmd  `cmd:"" help:"Browse the library interactively"`
	Serve   ServeCmd   `cmd:"" help:"Serve the library as a JSON API"`
	Size    SizeCmd    `cmd:"" help:"Show or change the thumbnail size preference"`
	Thumbs  ThumbsCmd  `cmd:"" help:"Render cover thumbnails"`
	Cache   CacheCmd   `cmd:"" help:"Manage the fetch cache"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Remove cached entries for a source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookgrid"),
		kong.Description("Query and summarise a Calibre library export."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"books.source":        "BOOKGRID_BOOKS",
	"languages.source":    "BOOKGRID_LANGUAGES",
	"covers.root":         "BOOKGRID_COVER_ROOT",
	"cache.dbfile":        "BOOKGRID_CACHE_DB",
	"prefs.dbfile":        "BOOKGRID_PREFS_DB",
	"server.addr":         "BOOKGRID_ADDR",
	"datasette.api_token": "DATASETTE_API_TOKEN",
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "key", key, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	setIfNotEmpty("books.source", cli.Books)
	setIfNotEmpty("languages.source", cli.Languages)
	setIfNotEmpty("covers.root", cli.CoverRoot)
	if cli.DeriveColors {
		viper.Set("covers.derive", true)
	}

	if cli.Datasette {
		viper.Set("datasette.enabled", true)
	}
	setIfNotEmpty("datasette.dbfile", cli.DatasetteDB)

	setIfNotEmpty("cache.dbfile", cli.CacheDBFile)
	setIfNotEmpty("cache.ttl", cli.CacheTTL)
	setIfNotEmpty("prefs.dbfile", cli.PrefsDBFile)

	config.InitConfig()
	if cli.Overwrite {
		config.SetOverwriteFiles(true)
	}
}

func setIfNotEmpty(key, value string) {
	if value != "" {
		viper.Set(key, value)
	}
}

func initLogging() {
	level := slog.LevelInfo
	if v := os.Getenv("BOOKGRID_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	}

	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
