package tui

type pageLayout struct {
	windowWidth  int
	windowHeight int
	contentWidth int
	visibleTiles int
}

func newPageLayout() pageLayout {
	var l pageLayout
	l.Update(defaultWindowWidth, defaultWindowHeight)
	return l
}

// Update recomputes how many grid tiles fit side by side.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - horizontalPadding
	if inner < minContentWidth {
		inner = minContentWidth
	}
	l.contentWidth = inner
	tileWidth, _ := tileSize()
	const border = 2
	cell := tileWidth + border + tileGap
	l.visibleTiles = (inner + tileGap) / cell
	if l.visibleTiles < 1 {
		l.visibleTiles = 1
	}
}
