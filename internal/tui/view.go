package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/dayflow/internal/domain"
)

// sparkBlocks maps commitment levels 1..10 onto bar heights.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// seriesWindow is how many recent levels the strip shows.
const seriesWindow = 14

// View handles view.
func (m Model) View() tea.View {
	view := tea.NewView(m.render())
	view.AltScreen = true
	return view
}

// render draws the whole screen as text.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	sections := []string{titleStyle.Render("dayflow") + "  " + m.renderHeader(accent, muted)}
	if m.hasDay {
		sections = append(sections, "", m.renderProgress(accent, muted), "", m.renderActivities(accent, muted))
	} else {
		sections = append(sections,
			"",
			"No day open.",
			"Press t to start today or n to add an activity.",
		)
	}
	if strip := renderSeries(m.series); strip != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(muted).Render("commitment ")+strip)
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, "", statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	fullContent := content + "\n" + helpLine
	if overlay := m.renderModeOverlay(accent, muted, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderHeader renders the date, state badge, and commitment level.
func (m Model) renderHeader(accent, muted color.Color) string {
	if !m.hasDay {
		return lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf("%d days recorded", len(m.days)))
	}
	dateStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Render("open")
	if m.current.Completed() {
		badge = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(
			fmt.Sprintf("finalized · commitment %.1f", levelOf(m.current)),
		)
	}
	parts := []string{dateStyle.Render(m.current.Date), badge}
	if len(m.current.Activities) == 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(muted).Render("(unsaved until the first activity)"))
	}
	return strings.Join(parts, "  ")
}

// renderProgress renders the daily goal bar.
func (m Model) renderProgress(accent, muted color.Color) string {
	const width = 20
	filled := clamp(int(m.progress.Percent*width/100), 0, width)
	bar := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(muted).Render(strings.Repeat("░", width-filled))
	line := fmt.Sprintf("goal %d/%d %s %3.0f%%", m.progress.Count, m.progress.Goal, bar, m.progress.Percent)
	switch {
	case m.progress.Reached:
		line += "  goal reached"
	case m.progress.HalfWay:
		line += "  halfway there"
	}
	return line
}

// renderActivities renders the day's activities in start-time order.
func (m Model) renderActivities(accent, muted color.Color) string {
	sorted := m.current.SortedActivities()
	if len(sorted) == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("No activities yet. Press n to add one.")
	}
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(accent)
	privateStyle := lipgloss.NewStyle().Foreground(muted).Italic(true)

	lines := make([]string, 0, len(sorted))
	for idx, a := range sorted {
		cursor := "  "
		desc := a.Description
		if idx == m.selected {
			cursor = "> "
			desc = selectedStyle.Render(desc)
		}
		line := cursor + timeStyle.Render(a.StartTime+"-"+a.EndTime) + "  " + desc
		for _, tag := range a.Tags {
			line += " " + renderTag(tag)
		}
		if a.IsPrivate {
			line += " " + privateStyle.Render("private")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderTag renders one tag in its palette color.
func renderTag(tag domain.Tag) string {
	style := lipgloss.NewStyle()
	if tag.Color != "" {
		style = style.Foreground(lipgloss.Color(tag.Color))
	}
	label := "#" + tag.Name
	if tag.Icon != "" {
		label = tag.Icon + " " + label
	}
	return style.Render(label)
}

// renderSeries renders the most recent commitment levels as a spark strip.
func renderSeries(series []domain.CommitmentData) string {
	if len(series) == 0 {
		return ""
	}
	if len(series) > seriesWindow {
		series = series[len(series)-seriesWindow:]
	}
	var b strings.Builder
	for _, point := range series {
		idx := int((point.Level-1)/9*float64(len(sparkBlocks)-1) + 0.5)
		b.WriteRune(sparkBlocks[clamp(idx, 0, len(sparkBlocks)-1)])
	}
	last := series[len(series)-1]
	fmt.Fprintf(&b, " %.1f", last.Level)
	return b.String()
}

// renderModeOverlay renders the prompt or panel for the active mode.
func (m Model) renderModeOverlay(accent, muted color.Color, maxWidth int) string {
	boxWidth := clamp(maxWidth, 30, 90)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(boxWidth)
	hint := lipgloss.NewStyle().Foreground(muted)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)

	switch m.mode {
	case modeQuickAdd:
		return box.Render(strings.Join([]string{
			title.Render("Add activity"),
			m.quickInput.View(),
			hint.Render("HH:MM-HH:MM description #tag • enter save • esc cancel"),
		}, "\n"))
	case modeConfirmReopen:
		return box.Render(strings.Join([]string{
			title.Render("Reopen " + m.current.Date + "?"),
			"The day is finalized. Reopen it to edit activities.",
			hint.Render("y reopen • n keep finalized"),
		}, "\n"))
	case modeInsight:
		body := m.markdown.render(m.insightText, boxWidth-4)
		return box.Render(strings.Join([]string{
			title.Render("Insight for " + m.current.Date),
			body,
			hint.Render("y copy • esc close"),
		}, "\n"))
	default:
		return ""
	}
}

// fitLines truncates or pads content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}
