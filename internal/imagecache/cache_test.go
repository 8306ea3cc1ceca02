package imagecache

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, client *http.Client, opts Options) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts.Dir = t.TempDir()
	opts.Client = client
	opts.Now = clock.Now
	cache, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cache, clock
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func cachedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestImageCacheReusesFreshFile(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("image-bytes"))
	}))
	t.Cleanup(server.Close)

	cache, clock := newTestCache(t, server.Client(), Options{})
	ctx := context.Background()

	path, err := cache.Fetch(ctx, server.URL+"/600/400")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data, err := os.ReadFile(path); err != nil || string(data) != "image-bytes" {
		t.Fatalf("cached file = %q, %v", data, err)
	}
	clock.Advance(defaultTTL - time.Minute)
	path2, err := cache.Fetch(ctx, server.URL+"/600/400")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if path != path2 {
		t.Fatalf("paths differ: %s vs %s", path, path2)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected single download, got %d hits", got)
	}
}

func TestImageCacheRevalidatesStaleFile(t *testing.T) {
	var conditional, hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v2"` {
			atomic.AddInt32(&conditional, 1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v2"`)
		_, _ = w.Write([]byte("fresh"))
	}))
	t.Cleanup(server.Close)

	cache, clock := newTestCache(t, server.Client(), Options{})
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, server.URL+"/a.png"); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	clock.Advance(defaultTTL + time.Hour)
	path, err := cache.Fetch(ctx, server.URL+"/a.png")
	if err != nil {
		t.Fatalf("conditional fetch: %v", err)
	}
	if atomic.LoadInt32(&conditional) != 1 {
		t.Fatal("expected a conditional request for the stale copy")
	}
	if data, _ := os.ReadFile(path); string(data) != "fresh" {
		t.Fatalf("304 should keep the stored bytes, got %q", data)
	}

	// The 304 restarts the TTL.
	clock.Advance(time.Hour)
	if _, err := cache.Fetch(ctx, server.URL+"/a.png"); err != nil {
		t.Fatalf("fetch after revalidation: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestImageCacheServesStaleCopyOnFailure(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("cached"))
	}))
	t.Cleanup(server.Close)

	cache, clock := newTestCache(t, server.Client(), Options{})
	ctx := context.Background()
	path, err := cache.Fetch(ctx, server.URL+"/b.png")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	clock.Advance(defaultTTL + time.Hour)
	fail.Store(true)

	again, err := cache.Fetch(ctx, server.URL+"/b.png")
	if err != nil {
		t.Fatalf("stale copy should be served, got %v", err)
	}
	if again != path {
		t.Fatalf("unexpected path %s", again)
	}
	if _, err := cache.Fetch(ctx, server.URL+"/never-cached.png"); err == nil {
		t.Fatal("expected error without a cached copy")
	}
}

func TestImageCacheRejectsOversizedImage(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "declared length",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
			},
		},
		{
			name: "chunked body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("xxxx"))
				w.(http.Flusher).Flush()
				_, _ = w.Write(bytes.Repeat([]byte("y"), 60))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			t.Cleanup(server.Close)

			cache, _ := newTestCache(t, server.Client(), Options{MaxBytes: 16})
			_, err := cache.Fetch(context.Background(), server.URL+"/huge.png")
			if !errors.Is(err, ErrTooLarge) {
				t.Fatalf("expected ErrTooLarge, got %v", err)
			}
			if files := cachedFiles(t, cache.dir); len(files) != 0 {
				t.Fatalf("oversized image left files behind: %v", files)
			}
		})
	}
}

func TestImageCacheKeepsOldCopyWhenReplacementIsOversized(t *testing.T) {
	var grow atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if grow.Load() {
			_, _ = w.Write(bytes.Repeat([]byte("z"), 64))
			return
		}
		_, _ = w.Write([]byte("small"))
	}))
	t.Cleanup(server.Close)

	cache, clock := newTestCache(t, server.Client(), Options{MaxBytes: 16})
	ctx := context.Background()
	path, err := cache.Fetch(ctx, server.URL+"/c.png")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	clock.Advance(defaultTTL + time.Hour)
	grow.Store(true)

	if _, err := cache.Fetch(ctx, server.URL+"/c.png"); err != nil {
		t.Fatalf("old copy should be served, got %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "small" {
		t.Fatalf("cached bytes changed to %q", data)
	}
}

func TestImageCacheIgnoresIncompleteEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("complete"))
	}))
	t.Cleanup(server.Close)

	cache, _ := newTestCache(t, server.Client(), Options{})
	imageURL := server.URL + "/d.png"
	e := cache.entryFor(imageURL)
	if err := os.WriteFile(e.data, []byte("comp"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := e.save(record{URL: imageURL, Size: 8, FetchedAt: cache.now()}); err != nil {
		t.Fatalf("write record: %v", err)
	}

	path, err := cache.Fetch(context.Background(), imageURL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "complete" {
		t.Fatalf("size mismatch should force a download, got %q", data)
	}
	if filepath.Dir(path) != cache.dir {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestImageCacheSharesConcurrentDownloads(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte("shared"))
	}))
	t.Cleanup(server.Close)

	cache, _ := newTestCache(t, server.Client(), Options{})
	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Fetch(context.Background(), server.URL+"/e.png")
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one download, got %d", got)
	}
}

func TestLoadDecodesImage(t *testing.T) {
	body := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	cache, _ := newTestCache(t, server.Client(), Options{})
	img, err := cache.Load(context.Background(), server.URL+"/f.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoadRejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	t.Cleanup(server.Close)

	cache, _ := newTestCache(t, server.Client(), Options{})
	if _, err := cache.Load(context.Background(), server.URL+"/g.png"); err == nil {
		t.Fatal("expected decode error")
	}
}
