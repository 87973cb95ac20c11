package ui

import (
	"fmt"
	"strings"
)

func (m Model) renderSettings() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Server URL"))
	b.WriteString("\n")
	b.WriteString(m.serverInput.View())
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter to apply and save, esc to go back"))
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Server health"))
	b.WriteString("\n")
	h := m.healthSnap
	switch {
	case h.HasStatus:
		b.WriteString(styles.Text.Render(fmt.Sprintf("status %s, %s", h.Status.Status, pluralize(h.Status.ImagesCount, "image", "images"))))
	case h.LastError == nil:
		b.WriteString(styles.MutedText.Render("not checked yet"))
	}
	if h.LastError != nil {
		if h.HasStatus {
			b.WriteString("\n")
		}
		b.WriteString(styles.DangerText.Render(fmt.Sprintf("%s (%s)", h.LastError.Error(), pluralize(h.ConsecutiveFailures, "failure", "failures"))))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Other"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("theme       ") + styles.Text.Render(m.theme.Name))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("print dir   ") + styles.Text.Render(truncateMiddle(m.printDir, max(m.width-14, 10))))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("preferences ") + styles.Text.Render(truncateMiddle(m.prefsPath, max(m.width-14, 10))))
	return b.String()
}
