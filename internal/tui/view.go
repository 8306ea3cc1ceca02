package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m *model) View() string {
	switch m.stage {
	case stageInput:
		return m.viewInput()
	case stageContent, stageExporting:
		return m.viewContent()
	case stageEditor:
		return m.viewEditor()
	default:
		return ""
	}
}

func (m *model) viewInput() string {
	recs := make([]string, 0, visibleRecommendations)
	for i, rec := range m.visibleRecommendations() {
		style := recommendStyle
		if i == m.recCursor {
			style = recommendFocusStyle
		}
		recs = append(recs, style.Render(rec))
	}
	recLine := lipgloss.JoinHorizontal(lipgloss.Center,
		append([]string{helperStyle.Render("추천: ")}, spaced(recs)...)...)

	parts := []string{
		m.heroView(),
		inputBoxStyle.Render(m.topicInput.View()),
		recLine + "  " + helperStyle.Render("(↑/↓ pick • Tab more)"),
	}
	parts = append(parts, m.messagesView(), m.recentExportsView(), m.statusBarView())
	return joinNonEmpty(parts)
}

func (m *model) viewContent() string {
	parts := []string{m.heroView(), m.searchBarView()}

	header := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("콘텐츠"),
		helperStyle.Render(trueSizeLabel))

	switch {
	case m.result.Data == nil && m.fetching:
		header = lipgloss.JoinVertical(lipgloss.Left,
			sectionHeaderStyle.Render(m.spinner.View()+" "+skeletonLabel),
			helperStyle.Render(trueSizeLabel))
		parts = append(parts, header, renderSkeleton())
	case len(m.tiles) > 0 && m.result.Data != nil:
		parts = append(parts, header, renderGrid(m.tiles, m.selection, m.grid, m.layout.visibleTiles))
		parts = append(parts, m.exportBarView())
	}
	parts = append(parts, m.messagesView())
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, m.statusBarView())
	return joinNonEmpty(parts)
}

func (m *model) viewEditor() string {
	if m.editIndex < 0 || m.editIndex >= len(m.tiles) {
		return m.viewContent()
	}
	body := renderEditor(m.tiles[m.editIndex], m.editIndex, len(m.cards), m.selection.At(m.editIndex), m.editor.pick)
	hints := helperStyle.Render("←/→/↑/↓ choose image • Enter apply • [ / ] prev/next card • Esc back")
	return joinNonEmpty([]string{m.heroView(), body, hints, m.messagesView(), m.statusBarView()})
}

func (m *model) searchBarView() string {
	if m.searchActive {
		return inputBoxStyle.Render(m.searchInput.View())
	}
	label := m.topic
	if label == "" {
		label = topicPlaceholder
	}
	return helperStyle.Render("/ search: ") + label
}

func (m *model) exportBarView() string {
	if m.stage == stageExporting {
		bar := progressBar(m.progressDone, m.progressTotal, 24)
		return fmt.Sprintf("%s %s %d/%d  %s", m.spinner.View(), bar, m.progressDone, m.progressTotal, helperStyle.Render("Esc cancels"))
	}
	line := buttonStyle.Render(exportButtonLabel) + helperStyle.Render("  press e")
	if m.lastExport != nil {
		line += "\n" + helperStyle.Render(fmt.Sprintf("last archive: %s (%d files)", m.lastExport.Path, len(m.lastExport.Files)))
	}
	return line
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m *model) messagesView() string {
	var parts []string
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.errorMessage, m.layout.contentWidth)))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() && m.stage != stageExporting {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(wordwrap.String(message, m.layout.contentWidth)))
	}
	return strings.Join(parts, "\n")
}

func (m *model) recentExportsView() string {
	if len(m.recent) == 0 {
		return ""
	}
	lines := []string{sectionHeaderStyle.Render("Recent exports")}
	for _, rec := range m.recent {
		lines = append(lines, helperStyle.Render(fmt.Sprintf("%s  %s  %d cards  %s",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"), trimmedTitle(rec.Topic, 24), rec.Cards, rec.Archive)))
	}
	return strings.Join(lines, "\n")
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

func (m *model) statusBarView() string {
	stats := []string{m.route}
	if m.topic != "" {
		stats = append(stats, fmt.Sprintf("Cards %d", len(m.cards)))
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	stats = append(stats, "? help")
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	kinds := make([]string, 0, len(m.jobStates))
	for kind := range m.jobStates {
		if kind == jobKindHistory {
			continue
		}
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		snap := m.jobStates[jobKind(kind)]
		badges = append(badges, fmt.Sprintf("%s %s", kind, snap.Status))
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"←/→", "Move"},
		{"Enter", "Edit card"},
		{"e", "Export all"},
		{"/", "New topic"},
		{"r", "Retry"},
		{"Esc", "Back"},
		{"q", "Quit"},
		{"?", "Toggle help"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 4
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
