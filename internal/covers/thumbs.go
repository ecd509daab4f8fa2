package covers

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Dakoina/CalibreBookGrid/internal/fileutil"
	"github.com/Dakoina/CalibreBookGrid/internal/library"
)

// ThumbnailResult summarises a batch run.
type ThumbnailResult struct {
	Written int
	Skipped int
	Failed  int
}

// ThumbnailFilename is "<id> - <title>.jpg" with unsafe characters removed.
func ThumbnailFilename(b library.Book) string {
	name := fileutil.SanitizeFilename(fmt.Sprintf("%d - %s", b.ID, b.Title))
	return name + ".jpg"
}

// WriteThumbnails renders a thumbnail for every book with a cover into
// outDir. Existing files are kept unless overwrite is set. Per-book
// failures are logged and counted, never returned.
func WriteThumbnails(books []library.Book, root, outDir string, size int, overwrite bool) ThumbnailResult {
	var res ThumbnailResult

	for _, b := range books {
		src := Resolve(root, b.CoverPath)
		if src == "" {
			res.Skipped++
			continue
		}

		dst := filepath.Join(outDir, ThumbnailFilename(b))
		if !overwrite && fileutil.FileExists(dst) {
			slog.Debug("Thumbnail exists, skipping", "path", dst)
			res.Skipped++
			continue
		}

		if err := Thumbnail(src, dst, size); err != nil {
			slog.Warn("Failed to write thumbnail", "book", b.ID, "title", b.Title, "error", err)
			res.Failed++
			continue
		}
		res.Written++
	}

	slog.Info("Thumbnails done", "written", res.Written, "skipped", res.Skipped, "failed", res.Failed)
	return res
}
