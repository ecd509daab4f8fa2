package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/report"
	"github.com/Dakoina/CalibreBookGrid/internal/state"
)

const suggestionCount = 3

// ListCmd represents the list command
type ListCmd struct {
	Search string   `short:"s" help:"Case-insensitive search over author, title and series"`
	Lang   []string `short:"l" help:"Only show books in these language codes (repeatable)"`
	JSON   bool     `help:"Print the books as JSON"`
}

// AuthorsCmd represents the authors command
type AuthorsCmd struct {
	JSON bool `help:"Print the groups as JSON"`
}

// SeriesCmd represents the series command
type SeriesCmd struct {
	Name string `arg:"" optional:"" help:"Series to list the books of"`
	JSON bool   `help:"Print the result as JSON"`
}

// RainbowCmd represents the rainbow command
type RainbowCmd struct {
	JSON bool `help:"Print the books as JSON"`
}

// StatsCmd represents the stats command
type StatsCmd struct {
	JSON bool `help:"Print the statistics as JSON"`
}

func (l *ListCmd) Run() error {
	store := loadLibrary(context.Background())
	store.Update(func(in *state.Inputs) {
		in.Search = l.Search
		in.Languages = l.Lang
	})

	books := store.FilteredSorted()
	if l.JSON {
		return printJSON(stdout, books)
	}
	if len(books) == 0 {
		printNoMatches(stdout, store)
		return nil
	}
	return printBooks(stdout, books)
}

func (a *AuthorsCmd) Run() error {
	store := loadLibrary(context.Background())
	groups := store.AuthorGroups()
	if a.JSON {
		return printJSON(stdout, groups)
	}

	for _, author := range groups {
		fmt.Fprintln(stdout, author.Author)
		for _, series := range author.Series {
			fmt.Fprintf(stdout, "  %s\n", series.Name)
			for _, b := range series.Books {
				fmt.Fprintf(stdout, "    %s%s\n", readMark(b), library.DisplayTitle(b))
			}
		}
	}
	return nil
}

func (s *SeriesCmd) Run() error {
	store := loadLibrary(context.Background())

	if s.Name == "" {
		names := store.SeriesList()
		if s.JSON {
			return printJSON(stdout, names)
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	books := store.BooksInSeries(s.Name)
	if s.JSON {
		return printJSON(stdout, books)
	}
	if len(books) == 0 {
		return fmt.Errorf("no books in series %q", s.Name)
	}
	return printBooks(stdout, books)
}

func (r *RainbowCmd) Run() error {
	store := loadLibrary(context.Background())
	books := store.RainbowSorted()
	if r.JSON {
		return printJSON(stdout, books)
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, b := range books {
		color := "-"
		if b.CoverColor != nil {
			color = b.CoverColor.Hex()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", color, library.Hue(b.CoverColor), b.AuthorKey(), library.DisplayTitle(b))
	}
	return w.Flush()
}

func (s *StatsCmd) Run() error {
	store := loadLibrary(context.Background())
	r := store.Statistics()
	if s.JSON {
		return printJSON(stdout, r)
	}

	note := report.Build(r, report.Options{})
	_, err := io.WriteString(stdout, note.Body)
	return err
}

func printBooks(out io.Writer, books []library.Book) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tTITLE\tSERIES\tLANG\tREAD")
	for _, b := range books {
		read := ""
		if b.Read() {
			read = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Author, library.DisplayTitle(b), b.Series, b.Language, read)
	}
	return w.Flush()
}

func printNoMatches(out io.Writer, store *state.Store) {
	fmt.Fprintln(out, "No books match.")
	if suggestions := store.Suggestions(suggestionCount); len(suggestions) > 0 {
		fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readMark(b library.Book) string {
	if b.Read() {
		return "✓ "
	}
	return "  "
}
