package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name         string
		width        int
		height       int
		contentWidth int
		visibleTiles int
	}{
		{name: "narrow", width: 30, height: 20, contentWidth: 40, visibleTiles: 1},
		{name: "default", width: 100, height: 32, contentWidth: 96, visibleTiles: 3},
		{name: "wide", width: 200, height: 40, contentWidth: 196, visibleTiles: 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.contentWidth != tc.contentWidth {
				t.Fatalf("content width mismatch: got %d want %d", layout.contentWidth, tc.contentWidth)
			}
			if layout.visibleTiles != tc.visibleTiles {
				t.Fatalf("visible tiles mismatch: got %d want %d", layout.visibleTiles, tc.visibleTiles)
			}
		})
	}
}
