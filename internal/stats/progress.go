package stats

import "github.com/Dakoina/CalibreBookGrid/internal/library"

// SeriesProgress counts series by reading state.
type SeriesProgress struct {
	Total      int `json:"total"`
	Started    int `json:"started"`
	Finished   int `json:"finished"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
}

// Split is the read share of a subset of books.
type Split struct {
	Read       int     `json:"read"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ReadingProgress rolls up reading state across series and books.
type ReadingProgress struct {
	Series         SeriesProgress `json:"series"`
	Standalone     Split          `json:"standalone"`
	InSeries       Split          `json:"in_series"`
	TotalBooksRead int            `json:"total_books_read"`
	ReadPercentage float64        `json:"read_percentage"`
}

// Progress computes the rollup. series must be Series(books).
func Progress(books []library.Book, series []SeriesInfo) ReadingProgress {
	var p ReadingProgress

	p.Series.Total = len(series)
	for _, s := range series {
		if s.IsStarted {
			p.Series.Started++
		}
		if s.IsFinished {
			p.Series.Finished++
		}
	}
	p.Series.InProgress = p.Series.Started - p.Series.Finished
	p.Series.NotStarted = p.Series.Total - p.Series.Started

	for _, b := range books {
		split := &p.Standalone
		if b.HasSeries() {
			split = &p.InSeries
		}
		split.Total++
		if b.Read() {
			split.Read++
		}
	}
	p.Standalone.Percentage = percent(p.Standalone.Read, p.Standalone.Total)
	p.InSeries.Percentage = percent(p.InSeries.Read, p.InSeries.Total)

	p.TotalBooksRead = p.Standalone.Read + p.InSeries.Read
	p.ReadPercentage = percent(p.TotalBooksRead, len(books))
	return p
}
