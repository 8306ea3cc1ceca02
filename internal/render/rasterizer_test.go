package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	img   image.Image
	err   error
	calls []string
}

func (s *stubSource) Load(ctx context.Context, url string) (image.Image, error) {
	s.calls = append(s.calls, url)
	return s.img, s.err
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func sampleTarget() Target {
	return Target{
		Index:      0,
		Card:       cardFixture(),
		Background: Background{URL: "https://img.example/1.png", Fit: FitCover},
	}
}

func TestRasterizeDrawsOversampledCard(t *testing.T) {
	src := &stubSource{img: solid(60, 40, color.RGBA{R: 255, A: 255})}
	r, err := NewRasterizer(Options{Scale: 1, Images: src})
	require.NoError(t, err)

	img, err := r.Rasterize(context.Background(), sampleTarget())
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
	require.Equal(t, []string{"https://img.example/1.png"}, src.calls)

	_, _, _, cornerAlpha := img.At(0, 0).RGBA()
	require.Zero(t, cornerAlpha, "corners are transparent")

	top := img.RGBAAt(Width/2, 40)
	require.Equal(t, uint8(255), top.A)
	require.Greater(t, top.R, top.G, "background should cover the top of the card")
}

func TestRasterizeDefaultScaleIsTwo(t *testing.T) {
	r, err := NewRasterizer(Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultScale, r.Scale())

	img, err := r.Rasterize(context.Background(), Target{Card: cardFixture()})
	require.NoError(t, err)
	require.Equal(t, Width*2, img.Bounds().Dx())
	require.Equal(t, Height*2, img.Bounds().Dy())
}

func TestRasterizeWithoutBackgroundOnLoadFailure(t *testing.T) {
	src := &stubSource{err: errors.New("404")}
	r, err := NewRasterizer(Options{Scale: 1, Images: src})
	require.NoError(t, err)

	img, err := r.Rasterize(context.Background(), sampleTarget())
	require.NoError(t, err)
	top := img.RGBAAt(Width/2, 40)
	require.Equal(t, fallbackFill, top)
}

func TestRasterizeHonorsCancellation(t *testing.T) {
	r, err := NewRasterizer(Options{Scale: 1})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Rasterize(ctx, sampleTarget())
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrapKeepsLinesWithinWidth(t *testing.T) {
	f, err := loadFaces("", 1)
	require.NoError(t, err)

	text := strings.Repeat("generated card content ", 20) + "\n" + strings.Repeat("x", 200)
	lines := wrap(f.body, text, 400)
	require.Greater(t, len(lines), 3)
	for _, line := range lines {
		require.LessOrEqual(t, measure(f.body, line), 400, line)
	}
	require.Empty(t, wrap(f.body, "   ", 400))
}

func TestLimitLinesMarksTruncation(t *testing.T) {
	got := limitLines([]string{"a", "b", "c"}, 2)
	require.Equal(t, []string{"a", "b…"}, got)
	require.Equal(t, []string{"a"}, limitLines([]string{"a"}, 2))
}
