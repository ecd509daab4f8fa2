package catalog

import (
	"log/slog"

	"github.com/Dakoina/CalibreBookGrid/internal/covers"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

// deriveColors sets cover_color on records that have a cover but no colour.
func (l *Loader) deriveColors(raw []library.RawBook) {
	derived := 0
	for _, rec := range raw {
		if c, ok := rec["cover_color"]; ok && c != nil {
			continue
		}
		coverPath, _ := rec["cover_path"].(string)
		path := covers.Resolve(l.CoverRoot, coverPath)
		if path == "" {
			continue
		}

		c, err := covers.CachedColor(path)
		if err != nil {
			slog.Debug("Cover colour lookup failed", "path", path, "error", err)
			continue
		}
		if c == nil {
			continue
		}
		rec["cover_color"] = []any{float64(c[0]), float64(c[1]), float64(c[2])}
		derived++
	}
	if derived > 0 {
		slog.Info("Derived cover colours", "count", derived)
	}
}
