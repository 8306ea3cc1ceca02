package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/cardstudio/internal/cards"
)

const (
	previewColumns = 36
	previewRows    = 15
	pickerWidth    = 30
)

type editorEventKind int

const (
	editorNone editorEventKind = iota
	editorBack
	editorNavigate
	editorSelect
)

// editorEvent is what the editor asks the parent to do. The editor never
// changes the card index or the selection itself.
type editorEvent struct {
	kind  editorEventKind
	index int
	image int
}

// editorModel tracks the highlighted candidate in the image picker.
type editorModel struct {
	pick int
}

func (e *editorModel) reset(selected int) {
	e.pick = selected
}

func previousIndex(i int) int {
	if i-1 < 0 {
		return 0
	}
	return i - 1
}

func nextIndex(i, total int) int {
	if total <= 0 {
		return 0
	}
	if i+1 > total-1 {
		return total - 1
	}
	return i + 1
}

// splitColumns lays candidate indexes out in two columns: even indexes on
// the left and odd on the right, each in array order.
func splitColumns(n int) (left, right []int) {
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func (e *editorModel) handleKey(key string, index, total int, tile cards.Tile) editorEvent {
	switch key {
	case "esc", "backspace", "b":
		return editorEvent{kind: editorBack, index: index}
	case "[", "p", "pgup":
		if index == 0 {
			return editorEvent{}
		}
		return editorEvent{kind: editorNavigate, index: previousIndex(index)}
	case "]", "n", "pgdown":
		if index >= total-1 {
			return editorEvent{}
		}
		return editorEvent{kind: editorNavigate, index: nextIndex(index, total)}
	}

	card, ok := tile.(cards.Card)
	if !ok {
		return editorEvent{}
	}
	n := len(card.ImageURLs)
	switch key {
	case "left", "h":
		if e.pick%2 == 1 {
			e.pick--
		}
	case "right", "l":
		if e.pick%2 == 0 && e.pick+1 < n {
			e.pick++
		}
	case "up", "k":
		if e.pick-2 >= 0 {
			e.pick -= 2
		}
	case "down", "j":
		if e.pick+2 < n {
			e.pick += 2
		}
	case "enter", " ":
		if e.pick >= 0 && e.pick < n {
			return editorEvent{kind: editorSelect, index: index, image: e.pick}
		}
	}
	return editorEvent{}
}

func renderEditor(tile cards.Tile, index, total, selected, pick int) string {
	card, ok := tile.(cards.Card)
	if !ok {
		return ""
	}
	preview := renderPreview(card, index, total, selected)
	picker := renderPicker(card, selected, pick)
	return lipgloss.JoinHorizontal(lipgloss.Top, preview, "    ", picker)
}

func renderPreview(card cards.Card, index, total, selected int) string {
	var lines []string
	if card.Subtitle != "" {
		lines = append(lines, tileSubtitleStyle.Render(wordwrap.String(card.Subtitle, previewColumns)))
	}
	lines = append(lines, previewTitleStyle.Render(wordwrap.String(card.Title, previewColumns)))
	if card.Body != "" {
		lines = append(lines, "", wordwrap.String(card.Body, previewColumns))
	}
	box := previewStyle.Width(previewColumns).Height(previewRows).Render(clampLines(strings.Join(lines, "\n"), previewRows))

	prev, next := navEnabledStyle.Render("‹ prev"), navEnabledStyle.Render("next ›")
	if index == 0 {
		prev = navDisabledStyle.Render("‹ prev")
	}
	if index >= total-1 {
		next = navDisabledStyle.Render("next ›")
	}
	nav := fmt.Sprintf("Page %d of %d   %s  %s", index+1, total, prev, next)
	imageLine := helperStyle.Render(trimmedTitle(card.Image(selected), previewColumns+2))
	return lipgloss.JoinVertical(lipgloss.Left, box, helperStyle.Render(nav), imageLine)
}

func renderPicker(card cards.Card, selected, pick int) string {
	left, right := splitColumns(len(card.ImageURLs))
	column := func(indexes []int) string {
		rows := make([]string, 0, len(indexes))
		for _, idx := range indexes {
			label := trimmedTitle(imageHost(card.ImageURLs[idx])+imagePath(card.ImageURLs[idx]), pickerWidth/2-4)
			marker := "  "
			if idx == selected {
				marker = "✓ "
			}
			style := candidateStyle
			if idx == pick {
				style = candidateFocusedStyle
			}
			rows = append(rows, style.Width(pickerWidth/2).Render(marker+label))
		}
		return strings.Join(rows, "\n")
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, column(left), " ", column(right))

	parts := []string{sectionHeaderStyle.Render("검색한 이미지"), grid}
	source, description := card.Attribution(pick)
	if source != "" || description != "" {
		attribution := []string{}
		if source != "" {
			attribution = append(attribution, "source: "+imageHost(source))
		}
		if description != "" {
			attribution = append(attribution, wordwrap.String(description, pickerWidth))
		}
		parts = append(parts, helperStyle.Render(strings.Join(attribution, "\n")))
	}
	if card.ImageKeyword != "" {
		parts = append(parts, helperStyle.Render("keyword: "+card.ImageKeyword))
	}
	return strings.Join(parts, "\n")
}

func imagePath(raw string) string {
	host := imageHost(raw)
	if host == raw {
		return ""
	}
	idx := strings.Index(raw, host)
	if idx < 0 {
		return ""
	}
	return raw[idx+len(host):]
}
