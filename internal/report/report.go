// Package report renders library statistics as a markdown document with
// YAML frontmatter.
package report

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/fileutil"
	"github.com/Dakoina/CalibreBookGrid/internal/stats"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Library Statistics"

var defaultTags = []string{"library", "statistics"}

// Options control the document header.
type Options struct {
	Title     string
	Source    string
	Generated time.Time
}

// Build assembles the report note.
func Build(r stats.Report, opts Options) *Note {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	fm := NewFrontmatter()
	fm.Set("title", title)
	if !opts.Generated.IsZero() {
		fm.Set("generated", opts.Generated.UTC().Format(time.RFC3339))
	}
	if opts.Source != "" {
		fm.Set("source", opts.Source)
	}
	fm.Set("total_books", r.TotalBooks)
	fm.Set("unique_authors", r.UniqueAuthors)
	fm.Set("unique_series", r.UniqueSeries)
	fm.Set("books_read", r.ReadingProgress.TotalBooksRead)
	fm.Set("read_percentage", round1(r.ReadingProgress.ReadPercentage))
	fm.Set("tags", defaultTags)

	var b builder
	b.heading(1, title)
	writeSize(&b, r)
	writeLanguages(&b, r)
	writeAuthors(&b, r)
	writeProgress(&b, r)
	writeSeries(&b, "Largest series", r.LargestSeries)
	writeSeries(&b, "Currently reading", r.BeingRead)
	writeSeries(&b, "Finished series", r.FinishedSeries)
	writeDistribution(&b, "Books per author", "author", "authors", r.AuthorDistribution, r.MaxAuthorBucket)
	writeDistribution(&b, "Books per series", "series", "series", r.SeriesDistribution, r.MaxSeriesBucket)

	return &Note{Frontmatter: fm, Body: b.String()}
}

// Render builds and serializes the report.
func Render(r stats.Report, opts Options) ([]byte, error) {
	return Build(r, opts).Build()
}

// Write renders the report to path. Frontmatter keys a user added to an
// existing report are carried over; the generated keys are replaced.
// Returns false when the file exists and overwrite is off.
func Write(path string, r stats.Report, opts Options, overwrite bool) (bool, error) {
	note := Build(r, opts)

	if existing, err := os.ReadFile(path); err == nil && overwrite {
		previous, err := ParseMarkdown(existing)
		if err != nil {
			slog.Warn("Ignoring unreadable frontmatter in existing report", "path", path, "error", err)
		} else {
			mergeFrontmatter(note.Frontmatter, previous.Frontmatter)
		}
	}

	data, err := note.Build()
	if err != nil {
		return false, err
	}

	written, err := fileutil.WriteFileWithOverwrite(path, data, 0o644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write report: %w", err)
	}
	if !written {
		slog.Info("Report already exists, skipping", "path", path)
	}
	return written, nil
}

// mergeFrontmatter copies keys from previous that dst does not set, and
// unions the tag lists.
func mergeFrontmatter(dst, previous *Frontmatter) {
	for _, key := range previous.Keys() {
		val, _ := previous.Get(key)
		if key == "tags" {
			cur, _ := dst.Get("tags")
			dst.Set("tags", unionTags(stringsFromAny(cur), stringsFromAny(val)))
			continue
		}
		if _, ok := dst.Get(key); !ok {
			dst.Set(key, val)
		}
	}
}

func unionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func writeSize(b *builder, r stats.Report) {
	b.heading(2, "Library size")
	b.table([]string{"Metric", "Value"}, [][]string{
		{"Total books", strconv.Itoa(r.TotalBooks)},
		{"Unique authors", strconv.Itoa(r.UniqueAuthors)},
		{"Unique series", strconv.Itoa(r.UniqueSeries)},
		{"Books without series", strconv.Itoa(r.BooksWithoutSeries)},
	})
}

func writeLanguages(b *builder, r stats.Report) {
	b.heading(2, "Languages")
	rows := make([][]string, 0, len(r.Languages))
	for _, l := range r.Languages {
		rows = append(rows, []string{l.Name, l.Code, strconv.Itoa(l.Count), pct(l.Percentage)})
	}
	b.table([]string{"Language", "Code", "Books", "Share"}, rows)
}

func writeAuthors(b *builder, r stats.Report) {
	b.heading(2, "Top authors")
	rows := make([][]string, 0, len(r.TopAuthors))
	for i, a := range r.TopAuthors {
		rows = append(rows, []string{strconv.Itoa(i + 1), a.Author, strconv.Itoa(a.Count)})
	}
	b.table([]string{"#", "Author", "Books"}, rows)
	b.paragraph(fmt.Sprintf("Average books per author: %s. Median: %d.",
		r.AuthorMetrics.Average, r.AuthorMetrics.Median))
}

func writeProgress(b *builder, r stats.Report) {
	p := r.ReadingProgress
	b.heading(2, "Reading progress")
	b.table([]string{"Metric", "Value"}, [][]string{
		{"Series started", fmt.Sprintf("%d of %d", p.Series.Started, p.Series.Total)},
		{"Series finished", strconv.Itoa(p.Series.Finished)},
		{"Series in progress", strconv.Itoa(p.Series.InProgress)},
		{"Series not started", strconv.Itoa(p.Series.NotStarted)},
		{"Standalone books read", split(p.Standalone)},
		{"Series books read", split(p.InSeries)},
		{"Books read", fmt.Sprintf("%d (%s)", p.TotalBooksRead, pct(p.ReadPercentage))},
	})
}

func writeSeries(b *builder, title string, series []stats.SeriesInfo) {
	b.heading(2, title)
	rows := make([][]string, 0, len(series))
	for _, s := range series {
		complete := "no"
		if s.IsComplete {
			complete = "yes"
		}
		rows = append(rows, []string{s.Name, strconv.Itoa(s.Count), strconv.Itoa(s.BooksRead), complete})
	}
	b.table([]string{"Series", "Books", "Read", "Complete"}, rows)
}

func writeDistribution(b *builder, title, one, many string, buckets []stats.Bucket, largest int) {
	b.heading(2, title)
	lines := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		noun := many
		if bucket.Count == 1 {
			noun = one
		}
		lines = append(lines, fmt.Sprintf("%4d │ %s %d %s",
			bucket.Size, Bar(bucket.Percent(largest), barWidth), bucket.Count, noun))
	}
	b.code(lines)
}

func split(s stats.Split) string {
	return fmt.Sprintf("%d of %d (%s)", s.Read, s.Total, pct(s.Percentage))
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
