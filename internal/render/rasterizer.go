package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/vector"
)

const (
	// Width and Height are the true card size in pixels.
	Width  = 1080
	Height = 1350
	// DefaultScale is the oversampling factor used for export.
	DefaultScale = 2
	// DisplayScale is the factor the grid previews cards at.
	DisplayScale = 2.0 / 9.0

	cornerRadius = 32
)

var (
	fallbackFill  = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	titleColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	subtitleColor = color.RGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}
	bodyColor     = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// DisplaySize returns the on-screen size of a card preview.
func DisplaySize() (int, int) {
	return int(math.Round(Width * DisplayScale)), int(math.Round(Height * DisplayScale))
}

// ImageSource loads a background image by URL. *imagecache.Cache satisfies it.
type ImageSource interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// Options configure a Rasterizer.
type Options struct {
	Scale    int
	FontPath string
	Images   ImageSource
	Logger   *zap.Logger
}

// Rasterizer draws targets. It is safe for concurrent use but draws one card
// at a time.
type Rasterizer struct {
	scale  int
	images ImageSource
	logger *zap.Logger

	mu    sync.Mutex
	faces faces
}

// NewRasterizer loads the fonts. An empty FontPath selects the bundled Go
// fonts, which carry no Hangul glyphs.
func NewRasterizer(opts Options) (*Rasterizer, error) {
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	f, err := loadFaces(opts.FontPath, float64(opts.Scale))
	if err != nil {
		return nil, err
	}
	return &Rasterizer{scale: opts.Scale, images: opts.Images, logger: opts.Logger, faces: f}, nil
}

// Scale returns the oversampling factor.
func (r *Rasterizer) Scale() int {
	return r.scale
}

// Rasterize draws target. The background image is fully loaded before
// drawing starts; when it cannot be loaded the card is drawn without it.
func (r *Rasterizer) Rasterize(ctx context.Context, target Target) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := Width*r.scale, Height*r.scale

	var bg image.Image
	if target.Background.URL != "" && r.images != nil {
		img, err := r.images.Load(ctx, target.Background.URL)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			r.logger.Warn("background unavailable, drawing without it",
				zap.Int("card", target.Index), zap.String("url", target.Background.URL), zap.Error(err))
		default:
			bg = img
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(layer, layer.Bounds(), image.NewUniform(fallbackFill), image.Point{}, draw.Src)
	if bg != nil {
		drawBackground(layer, bg, target.Background.Fit)
	}
	drawGradient(layer)
	r.drawText(layer, target)

	canvas := image.NewRGBA(layer.Bounds())
	mask := roundedMask(w, h, float32(cornerRadius*r.scale))
	draw.DrawMask(canvas, canvas.Bounds(), layer, image.Point{}, mask, image.Point{}, draw.Over)
	return canvas, nil
}

func drawBackground(dst *image.RGBA, src image.Image, fit Fit) {
	b := dst.Bounds()
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	sx := float64(b.Dx()) / float64(sb.Dx())
	sy := float64(b.Dy()) / float64(sb.Dy())
	factor := math.Max(sx, sy)
	if fit == FitContain {
		factor = math.Min(sx, sy)
	}
	nw := int(math.Ceil(float64(sb.Dx()) * factor))
	nh := int(math.Ceil(float64(sb.Dy()) * factor))
	scaled := resize.Resize(uint(nw), uint(nh), src, resize.Bilinear)
	sc := scaled.Bounds()

	// Center in both directions; cover crops, contain letterboxes.
	offset := image.Pt((nw-b.Dx())/2, (nh-b.Dy())/2)
	if fit == FitContain {
		dr := image.Rect(0, 0, nw, nh).Add(image.Pt(-offset.X, -offset.Y))
		draw.Draw(dst, dr, scaled, sc.Min, draw.Src)
		return
	}
	draw.Draw(dst, b, scaled, sc.Min.Add(offset), draw.Src)
}

// drawGradient darkens the lower part of the card so text stays legible.
func drawGradient(dst *image.RGBA) {
	b := dst.Bounds()
	start := b.Min.Y + b.Dy()*35/100
	span := b.Max.Y - start
	for y := start; y < b.Max.Y; y++ {
		a := uint8(204 * (y - start) / span)
		if a == 0 {
			continue
		}
		row := image.Rect(b.Min.X, y, b.Max.X, y+1)
		draw.Draw(dst, row, image.NewUniform(color.NRGBA{A: a}), image.Point{}, draw.Over)
	}
}

func roundedMask(w, h int, r float32) *image.Alpha {
	fw, fh := float32(w), float32(h)
	z := vector.NewRasterizer(w, h)
	z.MoveTo(r, 0)
	z.LineTo(fw-r, 0)
	z.QuadTo(fw, 0, fw, r)
	z.LineTo(fw, fh-r)
	z.QuadTo(fw, fh, fw-r, fh)
	z.LineTo(r, fh)
	z.QuadTo(0, fh, 0, fh-r)
	z.LineTo(0, r)
	z.QuadTo(0, 0, r, 0)
	z.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

type textBlock struct {
	face  font.Face
	lines []string
	color color.Color
	gap   int
}

func (r *Rasterizer) drawText(dst *image.RGBA, target Target) {
	pad := 80 * r.scale
	maxWidth := dst.Bounds().Dx() - 2*pad

	blocks := []textBlock{
		{face: r.faces.subtitle, lines: limitLines(wrap(r.faces.subtitle, target.Card.Subtitle, maxWidth), 2), color: subtitleColor, gap: 16 * r.scale},
		{face: r.faces.title, lines: limitLines(wrap(r.faces.title, target.Card.Title, maxWidth), 3), color: titleColor, gap: 28 * r.scale},
		{face: r.faces.body, lines: limitLines(wrap(r.faces.body, target.Card.Body, maxWidth), 9), color: bodyColor},
	}

	total := 0
	for _, blk := range blocks {
		if len(blk.lines) == 0 {
			continue
		}
		total += len(blk.lines)*lineHeight(blk.face) + blk.gap
	}
	y := dst.Bounds().Max.Y - pad - total
	if y < pad {
		y = pad
	}

	for _, blk := range blocks {
		if len(blk.lines) == 0 {
			continue
		}
		lh := lineHeight(blk.face)
		ascent := blk.face.Metrics().Ascent.Ceil()
		d := font.Drawer{Dst: dst, Src: image.NewUniform(blk.color), Face: blk.face}
		for _, line := range blk.lines {
			d.Dot = fixedPoint(pad, y+ascent)
			d.DrawString(line)
			y += lh
		}
		y += blk.gap
	}
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil() * 5 / 4
}

func limitLines(lines []string, max int) []string {
	if len(lines) <= max {
		return lines
	}
	out := append([]string(nil), lines[:max]...)
	out[max-1] += "…"
	return out
}
