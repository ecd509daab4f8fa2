// Package covers derives data from cover images: the average colour used by
// the rainbow view and resized thumbnails.
package covers

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Dakoina/CalibreBookGrid/internal/cache"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/disintegration/imaging"
)

// AverageColor returns the mean colour of the image at path.
func AverageColor(path string) (library.Color, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return library.Color{}, fmt.Errorf("failed to open cover: %w", err)
	}
	return averageOf(img), nil
}

func averageOf(img image.Image) library.Color {
	// A box filter down to a single pixel averages every source pixel.
	px := imaging.Resize(img, 1, 1, imaging.Box).NRGBAAt(0, 0)
	return library.Color{int(px.R), int(px.G), int(px.B)}
}

// colorEntry is the cached form of a lookup. Missing covers are cached too,
// with a shorter TTL.
type colorEntry struct {
	Color *library.Color `json:"color"`
}

// CachedColor is AverageColor backed by the fetch cache. The key includes
// the file's size and modification time so a replaced cover is re-read.
// A missing or unreadable cover yields nil without an error.
func CachedColor(path string) (*library.Color, error) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("Cover not found", "path", path, "error", err)
		return nil, nil
	}

	entry, _, err := cache.GetOrFetchWithTTL(cache.CoverColorTable, colorKey(path, info), func() (colorEntry, error) {
		c, err := AverageColor(path)
		if err != nil {
			slog.Debug("Unreadable cover", "path", path, "error", err)
			return colorEntry{}, nil
		}
		return colorEntry{Color: &c}, nil
	}, cache.SelectNegativeCacheTTL(func(e colorEntry) bool { return e.Color == nil }))
	if err != nil {
		return nil, err
	}
	return entry.Color, nil
}

func colorKey(path string, info os.FileInfo) string {
	return path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

// Resolve joins a catalog cover_path onto root. Absolute paths are kept.
func Resolve(root, coverPath string) string {
	if coverPath == "" {
		return ""
	}
	if filepath.IsAbs(coverPath) || root == "" {
		return coverPath
	}
	return filepath.Join(root, filepath.FromSlash(coverPath))
}

// Thumbnail writes a copy of src scaled to width size, keeping the aspect
// ratio. The output format follows dst's extension.
func Thumbnail(src, dst string, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid thumbnail size %d", size)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open cover: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	thumb := imaging.Resize(img, size, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}
