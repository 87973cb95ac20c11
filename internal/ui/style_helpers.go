package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barPainter paints every segment of a status bar on one background color,
// including the spaces between words. See
// https://github.com/charmbracelet/lipgloss/discussions/78
type barPainter struct {
	fill lipgloss.Style
}

func newBarPainter(bgColor string) barPainter {
	return barPainter{fill: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// paint renders text word by word so inter-word gaps keep the background.
func (p barPainter) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(p.fill.GetBackground())
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, p.gap(1))
}

// gap returns n background-filled spaces.
func (p barPainter) gap(n int) string {
	if n <= 0 {
		return ""
	}
	return p.fill.Render(strings.Repeat(" ", n))
}

func (p barPainter) literal(s string) string {
	return p.fill.Render(s)
}

// join joins segments with n filled spaces.
func (p barPainter) join(segments []string, n int) string {
	return strings.Join(segments, p.gap(n))
}
