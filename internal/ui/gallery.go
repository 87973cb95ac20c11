package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// galleryRows is the number of list rows that fit under the search line.
func (m Model) galleryRows() int {
	return m.contentHeight() - 3
}

func (m Model) renderGallery() string {
	styles := m.theme.Styles()
	snap := m.gallerySnap

	var b strings.Builder

	// Search line
	switch {
	case m.searchInput.Focused():
		b.WriteString(m.searchInput.View())
	case snap.IsShowingSearchResults:
		b.WriteString(styles.AccentText.Render("Results for "))
		b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("%q", strings.TrimSpace(snap.SearchQuery))))
		b.WriteString(styles.FaintText.Render("  (c to clear)"))
	default:
		b.WriteString(styles.FaintText.Render("/ to search"))
	}
	b.WriteString("\n")

	if snap.ErrorMessage != "" {
		b.WriteString(styles.DangerText.Render(snap.ErrorMessage))
	}
	b.WriteString("\n")

	if len(snap.Images) == 0 {
		b.WriteString(m.renderGalleryEmpty())
		return b.String()
	}

	rows := max(m.galleryRows(), 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(snap.Images))

	titleWidth := max(m.width/2, 20)
	for i := start; i < end; i++ {
		img := snap.Images[i]
		title := lipgloss.NewStyle().Width(titleWidth).Render(truncate(img.Title, titleWidth-1))
		meta := img.Filename
		if img.Created != "" {
			meta += "  " + img.Created
		}
		line := title + truncate(meta, max(m.width-titleWidth-2, 0))
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Width(m.width).Render(line))
		} else {
			b.WriteString(styles.Text.Render(title) + styles.MutedText.Render(truncate(meta, max(m.width-titleWidth-2, 0))))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderGalleryEmpty() string {
	styles := m.theme.Styles()
	snap := m.gallerySnap
	switch {
	case snap.IsLoading:
		return m.spinner.View() + styles.MutedText.Render(" Loading images...")
	case snap.IsSearching:
		return m.spinner.View() + styles.MutedText.Render(" Searching...")
	case snap.IsShowingSearchResults:
		return styles.MutedText.Render("No images match this search.")
	default:
		return styles.MutedText.Render("No images yet. Press 2 to generate one.")
	}
}
