// Package imagecache keeps candidate background images on disk so that
// repeated exports of the same cards do not download them again.
package imagecache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	cacheSubdir        = "cardstudio/images"
	defaultTTL         = 24 * time.Hour
	defaultHTTPTimeout = 30 * time.Second
	// DefaultMaxBytes caps a single image download.
	DefaultMaxBytes = 32 << 20
)

// ErrTooLarge is returned when an image exceeds the size cap. Oversized
// images are never cached.
var ErrTooLarge = errors.New("image exceeds size limit")

// Options configure a Cache. Zero values select the defaults.
type Options struct {
	Dir      string
	TTL      time.Duration
	MaxBytes int64
	Client   *http.Client
	Logger   *zap.Logger
	Now      func() time.Time
}

// Cache is an on-disk image store keyed by URL. Concurrent requests for one
// URL share a single download.
type Cache struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
	client   *http.Client
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group
}

// record is the JSON side file stored next to each image.
type record struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	Size         int64     `json:"size"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// DefaultDir returns the user cache directory for images.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(os.TempDir(), "cardstudio-cache")
	}
	return filepath.Join(base, cacheSubdir)
}

// New creates the cache directory if needed.
func New(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultDir()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		dir:      opts.Dir,
		ttl:      opts.TTL,
		maxBytes: opts.MaxBytes,
		client:   opts.Client,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// entry locates one URL's files inside the cache directory.
type entry struct {
	key    string
	data   string
	record string
}

func (c *Cache) entryFor(imageURL string) entry {
	sum := sha256.Sum256([]byte(imageURL))
	key := hex.EncodeToString(sum[:])
	return entry{
		key:    key,
		data:   filepath.Join(c.dir, key+".img"),
		record: filepath.Join(c.dir, key+".json"),
	}
}

// load returns the stored record when both files exist and agree on size.
func (e entry) load() (record, bool) {
	raw, err := os.ReadFile(e.record)
	if err != nil {
		return record{}, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, false
	}
	info, err := os.Stat(e.data)
	if err != nil || info.Size() == 0 || info.Size() != rec.Size {
		return record{}, false
	}
	return rec, true
}

func (e entry) save(rec record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(e.record, bytes.NewReader(raw))
}

// Fetch returns the path of a complete local copy of imageURL. A copy older
// than the TTL is revalidated; when that fails the old copy is still served.
func (c *Cache) Fetch(ctx context.Context, imageURL string) (string, error) {
	e := c.entryFor(imageURL)
	rec, cached := e.load()
	if cached && c.now().Sub(rec.FetchedAt) < c.ttl {
		return e.data, nil
	}

	_, err, _ := c.group.Do(e.key, func() (any, error) {
		return nil, c.refresh(ctx, imageURL, e, rec, cached)
	})
	if err == nil {
		return e.data, nil
	}
	if cached {
		c.logger.Warn("serving stale image after failed refresh", zap.String("url", imageURL), zap.Error(err))
		return e.data, nil
	}
	return "", err
}

func (c *Cache) refresh(ctx context.Context, imageURL string, e entry, prev record, cached bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,image/gif,image/*;q=0.8")
	if cached {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && cached:
		prev.FetchedAt = c.now().UTC()
		return e.save(prev)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch image: %s", resp.Status)
	case resp.ContentLength > c.maxBytes:
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	body := &cappedReader{r: resp.Body, remaining: c.maxBytes}
	if err := atomic.WriteFile(e.data, body); err != nil {
		if body.exceeded() {
			return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.maxBytes)
		}
		return fmt.Errorf("store image: %w", err)
	}
	info, err := os.Stat(e.data)
	if err != nil {
		return err
	}
	rec := record{
		URL:          imageURL,
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  resp.Header.Get("Content-Type"),
		Size:         info.Size(),
		FetchedAt:    c.now().UTC(),
	}
	if err := e.save(rec); err != nil {
		return fmt.Errorf("store image record: %w", err)
	}
	c.logger.Debug("image cached", zap.String("url", imageURL), zap.Int64("bytes", rec.Size))
	return nil
}

// cappedReader fails with ErrTooLarge once more than remaining bytes are read.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}

func (c *cappedReader) exceeded() bool {
	return c.remaining < 0
}
