// Package export rasterizes mounted card targets, packs the PNGs into a zip
// archive and saves it.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/cardstudio/internal/render"
)

// DefaultPrefix names exported files when no prefix is configured.
const DefaultPrefix = "content-card"

// Renderer draws one target. *render.Rasterizer satisfies it.
type Renderer interface {
	Rasterize(ctx context.Context, target render.Target) (*image.RGBA, error)
}

// Progress is called after each card with the number of cards done.
type Progress func(done, total int)

// Artifact is one file of the archive.
type Artifact struct {
	Name string
	Data []byte
}

// Result describes a finished export.
type Result struct {
	ArchiveName string
	Path        string
	Files       []Artifact
	Size        int
}

// FileNames returns the archive member names in order.
func (r Result) FileNames() []string {
	names := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		names = append(names, f.Name)
	}
	return names
}

// Options configure a Pipeline.
type Options struct {
	Logger   *zap.Logger
	Progress Progress
	Now      func() time.Time
}

// Pipeline runs exports. Cards are processed one at a time.
type Pipeline struct {
	renderer Renderer
	saver    Saver
	logger   *zap.Logger
	progress Progress
	now      func() time.Time
}

// New builds a pipeline.
func New(renderer Renderer, saver Saver, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{renderer: renderer, saver: saver, logger: opts.Logger, progress: opts.Progress, now: opts.Now}
}

// ArchiveName returns the zip name for prefix.
func ArchiveName(prefix string) string {
	return normalizePrefix(prefix) + "s.zip"
}

// FileName returns the PNG name of the card at idx.
func FileName(prefix string, idx int) string {
	return fmt.Sprintf("%s-%d.png", normalizePrefix(prefix), idx+1)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// Export rasterizes every mounted target in ascending card index, zips the
// PNGs and hands the archive to the saver. Unmounted indexes are skipped. The
// context is checked before each card; a cancelled export saves nothing.
func (p *Pipeline) Export(ctx context.Context, targets *render.Targets, prefix string) (Result, error) {
	return p.ExportWithProgress(ctx, targets, prefix, p.progress)
}

// ExportWithProgress is Export reporting to progress instead of the
// pipeline's configured callback.
func (p *Pipeline) ExportWithProgress(ctx context.Context, targets *render.Targets, prefix string, progress Progress) (Result, error) {
	list := targets.Ordered()
	result := Result{ArchiveName: ArchiveName(prefix)}
	p.logger.Info("export started", zap.Int("cards", len(list)), zap.String("archive", result.ArchiveName))

	for i, target := range list {
		if err := ctx.Err(); err != nil {
			p.logger.Info("export cancelled", zap.Int("done", i))
			return Result{}, err
		}
		img, err := p.renderer.Rasterize(ctx, target)
		if err != nil {
			return Result{}, fmt.Errorf("rasterize card %d: %w", target.Index+1, err)
		}
		data, err := encodePNG(img)
		if err != nil {
			return Result{}, fmt.Errorf("encode card %d: %w", target.Index+1, err)
		}
		result.Files = append(result.Files, Artifact{Name: FileName(prefix, target.Index), Data: data})
		if progress != nil {
			progress(i+1, len(list))
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	archive, err := p.buildArchive(result.Files)
	if err != nil {
		return Result{}, fmt.Errorf("build archive: %w", err)
	}
	path, err := p.saver.Save(ctx, result.ArchiveName, archive)
	if err != nil {
		return Result{}, fmt.Errorf("save %s: %w", result.ArchiveName, err)
	}
	result.Path = path
	result.Size = len(archive)
	p.logger.Info("export finished", zap.String("path", path), zap.Int("files", len(result.Files)), zap.Int("bytes", result.Size))
	return result, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildArchive stores the PNGs uncompressed; they are already deflated.
func (p *Pipeline) buildArchive(files []Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := p.now()
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Store, Modified: modified})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
