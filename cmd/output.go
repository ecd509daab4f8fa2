package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/cmdutil"
	"github.com/Dakoina/CalibreBookGrid/internal/config"
	"github.com/Dakoina/CalibreBookGrid/internal/covers"
	"github.com/Dakoina/CalibreBookGrid/internal/fileutil"
	"github.com/Dakoina/CalibreBookGrid/internal/report"
	"github.com/spf13/viper"
)

const reportFilename = "Library Statistics.md"

var now = time.Now

// ReportCmd represents the report command
type ReportCmd struct {
	Output string `short:"o" help:"Report file (defaults to <output.dir>/report/Library Statistics.md)"`
	Title  string `help:"Report title" default:"Library Statistics"`
}

// ExportCmd represents the export command
type ExportCmd struct {
	JSON       bool   `help:"Also write the books to a JSON file"`
	JSONOutput string `help:"Path to JSON output file (defaults to <output.jsondir>/export.json)"`
}

// ThumbsCmd represents the thumbs command
type ThumbsCmd struct {
	Output string `short:"o" help:"Thumbnail directory under the output directory" default:"thumbs"`
	Size   int    `help:"Thumbnail width in pixels (defaults to the size preference)"`
}

func (r *ReportCmd) Run() error {
	path := r.Output
	if path == "" {
		cfg := cmdutil.BaseCommandConfig{ConfigKey: "report"}
		if err := cmdutil.SetupOutputDir(&cfg); err != nil {
			return err
		}
		path = filepath.Join(cfg.OutputDir, reportFilename)
	}

	store := loadLibrary(context.Background())
	opts := report.Options{
		Title:     r.Title,
		Source:    viper.GetString("books.source"),
		Generated: now(),
	}

	written, err := report.Write(path, store.Statistics(), opts, config.OverwriteFiles)
	if err != nil {
		return err
	}
	if written {
		slog.Info("Report written", "path", path, "books", len(store.Books()))
	}
	return nil
}

func (e *ExportCmd) Run() error {
	cfg := cmdutil.BaseCommandConfig{
		ConfigKey:  "export",
		JSONOutput: e.JSONOutput,
		WriteJSON:  e.JSON,
		Overwrite:  true,
	}
	if e.JSON {
		if err := cmdutil.SetupOutputDir(&cfg); err != nil {
			return err
		}
	}

	store := loadLibrary(context.Background())
	books := store.Books()

	if !viper.GetBool("datasette.enabled") && !e.JSON {
		slog.Warn("Datasette export is disabled; enable it with --datasette or datasette.enabled")
	}
	if err := exportLibrary(books); err != nil {
		return fmt.Errorf("failed to export library: %w", err)
	}

	if e.JSON {
		if _, err := fileutil.WriteJSONFile(books, cfg.JSONOutput, cfg.Overwrite); err != nil {
			return err
		}
		slog.Info("Wrote JSON export", "path", cfg.JSONOutput, "books", len(books))
	}
	return nil
}

func (t *ThumbsCmd) Run() error {
	cfg := cmdutil.BaseCommandConfig{OutputDir: t.Output, ConfigKey: "thumbs"}
	if err := cmdutil.SetupOutputDir(&cfg); err != nil {
		return err
	}

	size := t.Size
	if size <= 0 {
		thumb, closeFn := openThumbSize()
		size = thumb.Size()
		closeFn()
	}

	store := loadLibrary(context.Background())
	res := covers.WriteThumbnails(store.Books(), config.CoverRoot, cfg.OutputDir, size, config.OverwriteFiles)

	slog.Info("Thumbnails done",
		"dir", cfg.OutputDir,
		"size", size,
		"written", res.Written,
		"skipped", res.Skipped,
		"failed", res.Failed)
	if res.Failed > 0 && res.Written == 0 && res.Skipped == 0 {
		return fmt.Errorf("no thumbnails could be written (%d failed)", res.Failed)
	}
	return nil
}
