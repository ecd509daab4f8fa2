package report

import (
	"fmt"
	"math"
	"strings"
)

const barWidth = 30

// builder accumulates the markdown body section by section.
type builder struct {
	sb strings.Builder
}

func (b *builder) heading(level int, text string) {
	fmt.Fprintf(&b.sb, "%s %s\n\n", strings.Repeat("#", level), text)
}

func (b *builder) paragraph(text string) {
	if text == "" {
		return
	}
	b.sb.WriteString(text)
	b.sb.WriteString("\n\n")
}

// table writes a pipe table. Rows shorter than the header are padded.
func (b *builder) table(header []string, rows [][]string) {
	if len(rows) == 0 {
		b.paragraph("_None._")
		return
	}
	b.sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		for i := range cells {
			cells[i] = escapeCell(cells[i])
		}
		b.sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.sb.WriteString("\n")
}

// code writes lines as a fenced block, used for the text bar charts.
func (b *builder) code(lines []string) {
	if len(lines) == 0 {
		b.paragraph("_None._")
		return
	}
	b.sb.WriteString("```\n")
	for _, line := range lines {
		b.sb.WriteString(line)
		b.sb.WriteString("\n")
	}
	b.sb.WriteString("```\n\n")
}

func (b *builder) String() string {
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Bar renders percent (0-100) as a bar of the given width.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
