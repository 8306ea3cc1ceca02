package render

import (
	"golang.org/x/image/font"

	"github.com/csheth/cardstudio/internal/cards"
)

func cardFixture() cards.Card {
	return cards.Card{
		Title:     "Weekend date course",
		Subtitle:  "Seoul",
		Body:      "A walk along the river, a late lunch and a gallery visit before sunset.",
		ImageURLs: []string{"https://img.example/1.png"},
	}
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
