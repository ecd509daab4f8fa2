package library

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var languageNames = map[string]string{
	"eng": "English", "en": "English",
	"dut": "Dutch", "nl": "Dutch", "nld": "Dutch",
	"fra": "French", "fr": "French",
	"ger": "German", "de": "German", "deu": "German",
	"spa": "Spanish", "es": "Spanish",
	"ita": "Italian", "it": "Italian",
	"por": "Portuguese", "pt": "Portuguese",
	"rus": "Russian", "ru": "Russian",
	"jpn": "Japanese", "ja": "Japanese",
	"chi": "Chinese", "zh": "Chinese", "zho": "Chinese",
	"ara": "Arabic", "ar": "Arabic",
	"hin": "Hindi", "hi": "Hindi",
	"pol": "Polish", "pl": "Polish",
	"swe": "Swedish", "sv": "Swedish",
	"nor": "Norwegian", "no": "Norwegian",
	"nob": "Norwegian Bokmål",
	"dan": "Danish", "da": "Danish",
	"fin": "Finnish", "fi": "Finnish",
	"tur": "Turkish", "tr": "Turkish",
	"kor": "Korean", "ko": "Korean",
}

// LanguageName returns a display name for a language code, falling back to
// the upper-cased code.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// FormatIndex renders a series index without trailing zeros ("2", "1.5").
func FormatIndex(idx float64) string {
	return strconv.FormatFloat(idx, 'f', -1, 64)
}

// DisplayTitle prefixes the title with the series index when there is one.
func DisplayTitle(b Book) string {
	idx, ok := b.Index()
	if !ok {
		return b.Title
	}
	return fmt.Sprintf("%s · %s", FormatIndex(idx), b.Title)
}

// GoodreadsURL returns a Goodreads search link for the book.
func GoodreadsURL(b Book) string {
	q := url.QueryEscape(b.Title + " " + b.Author)
	return "https://www.goodreads.com/search?q=" + q
}
