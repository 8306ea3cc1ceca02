package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/cardstudio/internal/cards"
	"github.com/csheth/cardstudio/internal/render"
)

// Terminal cells per preview pixel: one column is ~10px wide, one row ~30px tall.
const (
	pixelsPerColumn = 10
	pixelsPerRow    = 30
	tileGap         = 1
)

// tileSize returns the inner size of a grid tile in terminal cells.
func tileSize() (int, int) {
	w, h := render.DisplaySize()
	return w / pixelsPerColumn, h / pixelsPerRow
}

// gridModel is the horizontal strip of tiles. It only tracks the cursor and
// the first visible tile; cards and selections belong to the parent model.
type gridModel struct {
	cursor int
	offset int
}

func (g *gridModel) move(delta, total, visible int) {
	if total == 0 {
		g.cursor, g.offset = 0, 0
		return
	}
	g.cursor += delta
	g.clamp(total, visible)
}

func (g *gridModel) jump(idx, total, visible int) {
	g.cursor = idx
	g.clamp(total, visible)
}

func (g *gridModel) clamp(total, visible int) {
	if g.cursor >= total {
		g.cursor = total - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	if visible < 1 {
		visible = 1
	}
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+visible {
		g.offset = g.cursor - visible + 1
	}
	if maxOffset := total - visible; g.offset > maxOffset {
		g.offset = maxOffset
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

// activateTile reports the card index to edit. Placeholder tiles do nothing.
func activateTile(tiles []cards.Tile, idx int) (int, bool) {
	if idx < 0 || idx >= len(tiles) {
		return 0, false
	}
	switch tiles[idx].(type) {
	case cards.Card:
		return idx, true
	default:
		return 0, false
	}
}

func renderGrid(tiles []cards.Tile, sel cards.Selection, g gridModel, visible int) string {
	if len(tiles) == 0 {
		return ""
	}
	end := g.offset + visible
	if end > len(tiles) {
		end = len(tiles)
	}
	rendered := make([]string, 0, end-g.offset)
	for idx := g.offset; idx < end; idx++ {
		rendered = append(rendered, renderTile(tiles[idx], sel.At(idx), idx == g.cursor))
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Top, spaced(rendered)...)

	var scroll []string
	if g.offset > 0 {
		scroll = append(scroll, fmt.Sprintf("‹ %d more", g.offset))
	}
	if end < len(tiles) {
		scroll = append(scroll, fmt.Sprintf("%d more ›", len(tiles)-end))
	}
	if len(scroll) == 0 {
		return strip
	}
	return strip + "\n" + helperStyle.Render(strings.Join(scroll, "   "))
}

func spaced(blocks []string) []string {
	gap := strings.Repeat(" ", tileGap)
	out := make([]string, 0, len(blocks)*2)
	for i, block := range blocks {
		if i > 0 {
			out = append(out, gap)
		}
		out = append(out, block)
	}
	return out
}

func renderTile(tile cards.Tile, image int, focused bool) string {
	w, h := tileSize()
	switch t := tile.(type) {
	case cards.Card:
		style := tileStyle
		if focused {
			style = tileFocusedStyle
		}
		lines := []string{}
		if t.Subtitle != "" {
			lines = append(lines, tileSubtitleStyle.Render(trimmedTitle(t.Subtitle, w)))
		}
		lines = append(lines, tileTitleStyle.Render(wordwrap.String(t.Title, w)))
		body := strings.Join(lines, "\n")
		footer := helperStyle.Render(trimmedTitle("▣ "+imageHost(t.Image(image)), w))
		return style.Width(w).Height(h).Render(clampLines(body, h-1) + "\n" + footer)
	default:
		style := placeholderTileStyle
		if focused {
			style = placeholderFocusedStyle
		}
		return style.Width(w).Height(h).Render(placeholderLabelStyle.Width(w).Render("새로운 콘텐츠"))
	}
}

func renderSkeleton() string {
	w, h := tileSize()
	tiles := make([]string, 0, skeletonTiles)
	for i := 0; i < skeletonTiles; i++ {
		tiles = append(tiles, skeletonTileStyle.Width(w).Height(h).Render(""))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced(tiles)...)
}

// clampLines keeps the first n lines of s, padding with blank lines.
func clampLines(s string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func imageHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
