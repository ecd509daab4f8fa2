package server

import (
	"net/http"
	"strings"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/prefs"
	"github.com/Dakoina/CalibreBookGrid/internal/state"
	"github.com/Dakoina/CalibreBookGrid/internal/stats"
	"github.com/gin-gonic/gin"
)

// Library is the state the API serves.
type Library interface {
	Books() []library.Book
	AuthorGroups() library.AuthorGroups
	SeriesList() []string
	BooksInSeries(name string) []library.Book
	RainbowSorted() []library.Book
	Statistics() stats.Report
	AvailableLanguages() []string
	Inputs() state.Inputs
	Snapshot(n int) state.Snapshot
	SetSearch(text string)
	SetSelectedLanguages(codes []string)
}

const suggestionCount = 5

// Handler serves the library views under /api.
type Handler struct {
	Store Library
	Thumb *prefs.ThumbnailSize
}

// NewHandler creates a Handler. A nil thumb uses an in-memory preference.
func NewHandler(store Library, thumb *prefs.ThumbnailSize) *Handler {
	if thumb == nil {
		thumb = prefs.Load(prefs.NewMemoryKV())
	}
	return &Handler{Store: store, Thumb: thumb}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.books)
	rg.GET("/authors", h.authors)
	rg.GET("/series", h.seriesList)
	rg.GET("/series/:name", h.series)
	rg.GET("/rainbow", h.rainbow)
	rg.GET("/statistics", h.statistics)
	rg.GET("/languages", h.languages)
	rg.GET("/state", h.state)
	rg.PUT("/state/search", h.setSearch)
	rg.PUT("/state/languages", h.setLanguages)
	rg.GET("/thumbnail", h.thumbnail)
	rg.POST("/thumbnail/increase", h.thumbnailStep(1))
	rg.POST("/thumbnail/decrease", h.thumbnailStep(-1))
}

type bookView struct {
	library.Book
	DisplayTitle string `json:"display_title"`
	GoodreadsURL string `json:"goodreads_url"`
}

func toViews(books []library.Book) []bookView {
	out := make([]bookView, len(books))
	for i, b := range books {
		out[i] = bookView{Book: b, DisplayTitle: library.DisplayTitle(b), GoodreadsURL: library.GoodreadsURL(b)}
	}
	return out
}

func (h *Handler) books(c *gin.Context) {
	snap := h.Store.Snapshot(suggestionCount)
	libraryBooks.Set(float64(snap.Total))
	filteredBooks.Set(float64(len(snap.Books)))

	resp := gin.H{
		"count":  len(snap.Books),
		"inputs": snap.Inputs,
		"books":  toViews(snap.Books),
	}
	if len(snap.Books) == 0 {
		resp["suggestions"] = nonNil(snap.Suggestions)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) authors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authors": h.Store.AuthorGroups()})
}

func (h *Handler) seriesList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"series": h.Store.SeriesList()})
}

func (h *Handler) series(c *gin.Context) {
	name := c.Param("name")
	books := h.Store.BooksInSeries(name)
	if len(books) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "count": len(books), "books": toViews(books)})
}

func (h *Handler) rainbow(c *gin.Context) {
	books := h.Store.RainbowSorted()
	c.JSON(http.StatusOK, gin.H{"count": len(books), "books": toViews(books)})
}

func (h *Handler) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Statistics())
}

type languageView struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

func (h *Handler) languages(c *gin.Context) {
	selected := make(map[string]bool)
	for _, code := range h.Store.Inputs().Languages {
		selected[code] = true
	}

	available := h.Store.AvailableLanguages()
	out := make([]languageView, len(available))
	for i, code := range available {
		out[i] = languageView{Code: code, Name: library.LanguageName(code), Selected: selected[code]}
	}
	c.JSON(http.StatusOK, gin.H{"languages": out})
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Inputs())
}

type searchReq struct {
	Search *string `json:"search"`
}

func (h *Handler) setSearch(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Search == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search required"})
		return
	}
	h.Store.SetSearch(*req.Search)
	c.JSON(http.StatusOK, h.Store.Inputs())
}

type languagesReq struct {
	Languages []string `json:"languages"`
}

func (h *Handler) setLanguages(c *gin.Context) {
	var req languagesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	codes := make([]string, 0, len(req.Languages))
	for _, code := range req.Languages {
		codes = append(codes, strings.TrimSpace(code))
	}
	h.Store.SetSelectedLanguages(codes)
	c.JSON(http.StatusOK, h.Store.Inputs())
}

func (h *Handler) thumbnail(c *gin.Context) {
	c.JSON(http.StatusOK, h.thumbnailBody())
}

func (h *Handler) thumbnailStep(delta int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if delta > 0 {
			h.Thumb.Increase()
		} else {
			h.Thumb.Decrease()
		}
		c.JSON(http.StatusOK, h.thumbnailBody())
	}
}

func (h *Handler) thumbnailBody() gin.H {
	return gin.H{"index": h.Thumb.Index(), "size": h.Thumb.Size(), "steps": prefs.Steps}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
