package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Outcome glyphs — convey meaning without relying on color alone.
const (
	glyphPassed = "✓"
	glyphFailed = "✗"
	glyphError  = "!"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderTable right-pads the label column by display width so values line
// up even when labels carry wide runes.
func renderTable(rows [][2]string) string {
	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row[0]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(row[0], width))
		b.WriteString("  ")
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return b.String()
}
