package imagecache

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// Load fetches imageURL through the cache and decodes it. The download has
// fully completed before decoding starts.
func (c *Cache) Load(ctx context.Context, imageURL string) (image.Image, error) {
	path, err := c.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", imageURL, err)
	}
	return img, nil
}
