package ui

import (
	"fmt"
	"net/url"
	"time"
)

// renderHeader renders the status bar: logo, server, health and activity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBarPainter(m.theme.Surface)

	parts := []string{bg.paint("coloringbook", styles.Logo)}

	server := ""
	if m.gallery != nil {
		server = serverLabel(m.gallery.ServerURL())
	}
	parts = append(parts, bg.paint(truncateMiddle(server, 40), styles.MutedText))

	parts = append(parts, m.healthBadge(styles, bg))

	if badge := m.activityBadge(); badge != "" {
		parts = append(parts, badge)
	}

	snap := m.gallerySnap
	parts = append(parts,
		bg.paint("Images:", styles.MutedText)+bg.gap(1)+
			bg.paint(fmt.Sprintf("%d", len(snap.Images)), styles.Text))

	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.paint("updated "+humanizeDuration(time.Since(snap.LastUpdated)), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.join(parts, 2))
}

func (m Model) healthBadge(styles Styles, bg barPainter) string {
	h := m.healthSnap
	switch {
	case h.IsOffline():
		return bg.paint("● OFFLINE", styles.DangerText)
	case h.HasStatus:
		return bg.paint("● ONLINE", styles.SuccessText)
	case h.LastError != nil:
		return bg.paint("● RETRYING", styles.WarningText)
	default:
		return bg.paint("● CONNECTING", styles.WarningText)
	}
}

// activityBadge shows the most relevant running operation, if any.
func (m Model) activityBadge() string {
	styles := m.theme.Styles()
	switch {
	case m.genSnap.IsGenerating:
		return styles.StatusStyle("generating").Render("generating")
	case m.gallerySnap.IsSearching:
		return styles.StatusStyle("searching").Render("searching")
	case m.gallerySnap.IsLoading:
		return styles.StatusStyle("loading").Render("loading")
	case m.gallerySnap.IsShowingSearchResults:
		return styles.StatusStyle("search").Render("search")
	default:
		return ""
	}
}

func serverLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBarPainter(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewGenerate:
		commands = []cmd{
			{"enter", "Generate"},
			{"esc", "Cancel/Back"},
			{"tab", "Next view"},
		}
	case ViewDetail:
		commands = []cmd{
			{"p", "Print page"},
			{"x", "Dismiss"},
			{"j/k", "Scroll"},
			{"esc", "Back"},
		}
	case ViewLogs:
		follow := "Follow"
		if m.logFollow {
			follow = "Following"
		}
		commands = []cmd{
			{"j/k", "Scroll"},
			{"G", follow},
			{"g", "Top"},
			{"1", "Gallery"},
		}
	case ViewSettings:
		commands = []cmd{
			{"enter", "Apply"},
			{"esc", "Back"},
			{"tab", "Next view"},
		}
	default:
		if m.searchInput.Focused() {
			commands = []cmd{
				{"enter", "Search"},
				{"esc", "Done"},
			}
		} else {
			commands = []cmd{
				{"enter", "Open"},
				{"/", "Search"},
				{"c", "Clear"},
				{"r", "Reload"},
				{"2", "Generate"},
				{"3", "Logs"},
				{"4", "Settings"},
				{"?", "More"},
			}
		}
	}

	colon := bg.literal(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.paint(c.key, styles.AccentText)+colon+bg.paint(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.paint("T", styles.AccentText)+colon+bg.paint(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.join(segments, 2))
}
