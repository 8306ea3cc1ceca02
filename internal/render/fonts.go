package render

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Point sizes at scale 1.
const (
	titleSize    = 64
	subtitleSize = 36
	bodySize     = 34
)

type faces struct {
	title    font.Face
	subtitle font.Face
	body     font.Face
}

func loadFaces(path string, scale float64) (faces, error) {
	regular, bold := goregular.TTF, gobold.TTF
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return faces{}, fmt.Errorf("read font %s: %w", path, err)
		}
		regular, bold = data, data
	}
	boldFont, err := parseFont(bold)
	if err != nil {
		return faces{}, err
	}
	regularFont, err := parseFont(regular)
	if err != nil {
		return faces{}, err
	}

	var f faces
	if f.title, err = newFace(boldFont, titleSize*scale); err != nil {
		return faces{}, err
	}
	if f.subtitle, err = newFace(regularFont, subtitleSize*scale); err != nil {
		return faces{}, err
	}
	if f.body, err = newFace(regularFont, bodySize*scale); err != nil {
		return faces{}, err
	}
	return f, nil
}

// parseFont accepts a single font or the first font of a collection.
func parseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	coll, cerr := opentype.ParseCollection(data)
	if cerr != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return coll.Font(0)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.P(x, y)
}

// wrap breaks text into lines no wider than maxWidth pixels. Paragraph
// breaks are kept; words wider than a line are split between runes.
func wrap(face font.Face, text string, maxWidth int) []string {
	limit := fixed.I(maxWidth)
	var lines []string
	for _, para := range strings.Split(strings.TrimSpace(text), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if font.MeasureString(face, candidate) <= limit {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = ""
			for _, piece := range splitRunes(face, word, limit) {
				if current != "" {
					lines = append(lines, current)
				}
				current = piece
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func splitRunes(face font.Face, word string, limit fixed.Int26_6) []string {
	if font.MeasureString(face, word) <= limit {
		return []string{word}
	}
	var pieces []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		if i > start && font.MeasureString(face, word[start:i+size]) > limit {
			pieces = append(pieces, word[start:i])
			start = i
		}
		i += size
	}
	return append(pieces, word[start:])
}
