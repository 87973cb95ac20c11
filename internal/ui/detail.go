package ui

import (
	"fmt"
	"strings"
)

func (m Model) renderDetail() string {
	return m.detailViewport.View()
}

// updateDetailViewport rebuilds the detail content. The preview is cached per
// record and size since it is expensive to draw.
func (m *Model) updateDetailViewport() {
	styles := m.theme.Styles()
	snap := m.detailSnap
	rec := snap.Record

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(rec.Title))
	b.WriteString("\n")
	if rec.Prompt != "" {
		b.WriteString(styles.MutedText.Render("prompt  ") + styles.Text.Render(rec.Prompt))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render("file    ") + styles.Text.Render(rec.Filename))
	if rec.Created != "" {
		b.WriteString(styles.MutedText.Render("  created ") + styles.Text.Render(rec.Created))
	}
	b.WriteString("\n")

	switch {
	case snap.ShowPrintError:
		b.WriteString(styles.DangerText.Render("Could not create the print page. Press x to dismiss."))
	case snap.LastPrintPath != "":
		b.WriteString(styles.SuccessText.Render("Print page: ") + styles.Text.Render(truncateMiddle(snap.LastPrintPath, max(m.width-12, 10))))
	}
	b.WriteString("\n")

	const headerLines = 5
	switch {
	case snap.IsLoading:
		b.WriteString(m.spinner.View() + styles.MutedText.Render(" Loading image..."))
	case snap.LoadError:
		b.WriteString(styles.DangerText.Render("Failed to load image."))
	case snap.Loaded():
		cols := max(m.width-2, 1)
		rows := max(m.contentHeight()-headerLines, minPreviewRow)
		bounds := snap.Image.Bounds()
		key := fmt.Sprintf("%s|%dx%d|%d|%d", rec.ID, bounds.Dx(), bounds.Dy(), cols, rows)
		if key != m.previewKey {
			m.previewCache = renderPreview(snap.Image, cols, rows)
			m.previewKey = key
		}
		b.WriteString(m.previewCache)
	}

	m.detailViewport.SetContent(b.String())
}
