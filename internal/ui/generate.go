package ui

import (
	"strings"
)

func (m Model) renderGenerate() string {
	styles := m.theme.Styles()
	snap := m.genSnap

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Describe a coloring page"))
	b.WriteString("\n\n")
	b.WriteString(m.promptInput.View())
	b.WriteString("\n\n")

	switch {
	case snap.IsGenerating:
		b.WriteString(m.spinner.View())
		b.WriteString(styles.Text.Render(" Generating... "))
		b.WriteString(styles.FaintText.Render("esc to cancel"))
	case snap.ErrorMessage != "":
		b.WriteString(styles.DangerText.Render(snap.ErrorMessage))
	case snap.LastGenerated != nil:
		b.WriteString(styles.SuccessText.Render("Created "))
		b.WriteString(styles.Text.Render(snap.LastGenerated.Title))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("It is now first in the gallery. Press 1 to view it."))
	case !snap.CanGenerate():
		b.WriteString(styles.FaintText.Render("Type a prompt to enable generation."))
	default:
		b.WriteString(styles.MutedText.Render("Press enter to generate."))
	}
	return b.String()
}
