package cards

import (
	"github.com/csheth/cardstudio/internal/api"
)

// PlaceholderImages stand in for candidate images when the service supplies
// none. Every normalized card has at least this many choices when it started
// with fewer than two images.
var PlaceholderImages = []string{
	"https://placekitten.com/600/400",
	"https://placekitten.com/601/401",
	"https://placekitten.com/602/402",
	"https://placekitten.com/603/403",
	"https://placekitten.com/604/404",
	"https://placekitten.com/605/405",
}

// Tile is one entry of the content strip: either a Card or the trailing
// Placeholder.
type Tile interface {
	tile()
}

// Card is a generated card after normalization. ImageURLs is never empty.
type Card struct {
	Title             string
	Subtitle          string
	Body              string
	ImageKeyword      string
	ImageURLs         []string
	SourceURLs        []string
	ImageDescriptions []string
}

// Placeholder is the non-editable "new content" tile appended to the strip.
type Placeholder struct{}

func (Card) tile()        {}
func (Placeholder) tile() {}

// Heading returns the most prominent text of the card.
func (c Card) Heading() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Subtitle
}

// Image returns the URL at idx, clamped into range.
func (c Card) Image(idx int) string {
	if len(c.ImageURLs) == 0 {
		return ""
	}
	if idx < 0 || idx >= len(c.ImageURLs) {
		idx = 0
	}
	return c.ImageURLs[idx]
}

// Attribution returns the source URL and description for image idx, if the
// service supplied them.
func (c Card) Attribution(idx int) (source, description string) {
	if idx >= 0 && idx < len(c.SourceURLs) {
		source = c.SourceURLs[idx]
	}
	if idx >= 0 && idx < len(c.ImageDescriptions) {
		description = c.ImageDescriptions[idx]
	}
	return source, description
}

// Tiles returns the cards followed by the placeholder tile.
func Tiles(list []Card) []Tile {
	tiles := make([]Tile, 0, len(list)+1)
	for _, c := range list {
		tiles = append(tiles, c)
	}
	return append(tiles, Placeholder{})
}

// Normalize maps a service payload to cards with a guaranteed non-empty image
// list. A nil payload yields no cards.
func Normalize(payload *api.Payload) []Card {
	if payload == nil {
		return nil
	}
	result := make([]Card, 0, len(payload.Cards))
	for _, raw := range payload.Cards {
		result = append(result, Card{
			Title:             raw.Title,
			Subtitle:          raw.Subtitle,
			Body:              raw.Body,
			ImageKeyword:      raw.ImageKeyword,
			ImageURLs:         normalizeImages(raw),
			SourceURLs:        raw.SourceURLs,
			ImageDescriptions: raw.ImageDescriptions,
		})
	}
	return result
}

// normalizeImages keeps lists of two or more images untouched. A single image,
// whether it came as a one-element img_urls or the legacy img_url field, is
// padded with the placeholder set minus its first slot.
func normalizeImages(raw api.RawCard) []string {
	if len(raw.ImageURLs) > 1 {
		return raw.ImageURLs
	}
	single := raw.ImageURL
	if len(raw.ImageURLs) == 1 {
		single = raw.ImageURLs[0]
	}
	if single != "" {
		images := make([]string, 0, len(PlaceholderImages))
		images = append(images, single)
		return append(images, PlaceholderImages[1:]...)
	}
	return append([]string(nil), PlaceholderImages...)
}
