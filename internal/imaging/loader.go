package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// DefaultMaxEntries is the cache capacity used by NewImageCache.
const DefaultMaxEntries = 32

// LoadedImage is a decoded scan together with facts about its encoded form.
type LoadedImage struct {
	// Buffer holds the decoded pixels. Buffers handed out by ImageCache are
	// shared; clone before mutating.
	Buffer *PixelBuffer

	// Format is the name reported by the decoder: "png", "jpeg" or "gif".
	Format string

	// EncodedLen is the length of the base64 form of the encoded payload. It
	// is the reference length that seeds region detection, so a file and the
	// same file sent inline as base64 produce the same regions.
	EncodedLen int

	// FileSizeBytes is the size of the encoded payload in bytes.
	FileSizeBytes int64
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The cache holds at most maxEntries images; when full, the entry loaded
// longest ago is evicted.
type ImageCache struct {
	mu         sync.RWMutex
	images     map[string]*LoadedImage
	order      []string
	maxEntries int
}

// NewImageCache creates an empty cache holding up to DefaultMaxEntries images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultMaxEntries)
}

// NewImageCacheSize creates an empty cache holding up to maxEntries images.
// A non-positive maxEntries means unbounded.
func NewImageCacheSize(maxEntries int) *ImageCache {
	return &ImageCache{
		images:     make(map[string]*LoadedImage),
		maxEntries: maxEntries,
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(path string) (*LoadedImage, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, ok := c.images[path]; !ok {
		c.order = append(c.order, path)
	}
	c.images[path] = img
	for c.maxEntries > 0 && len(c.order) > c.maxEntries {
		delete(c.images, c.order[0])
		c.order = c.order[1:]
	}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*LoadedImage)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// DecodeBytes decodes an encoded PNG, JPEG or GIF payload. EXIF orientation
// is applied so the pixels match what a viewer shows.
func DecodeBytes(data []byte) (*LoadedImage, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &LoadedImage{
		Buffer:        buf,
		Format:        format,
		EncodedLen:    base64.StdEncoding.EncodedLen(len(data)),
		FileSizeBytes: int64(len(data)),
	}, nil
}

// DecodeBase64 decodes a base64 image payload. A "data:image/...;base64,"
// prefix is accepted and stripped.
func DecodeBase64(payload string) (*LoadedImage, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	img.EncodedLen = len(payload)
	return img, nil
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoded format: "png", "jpeg" or "gif".
	Format string `json:"format"`

	// FileSizeBytes is the size of the encoded payload in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// ReferenceLength is the base64 payload length that seeds region
	// detection for this image.
	ReferenceLength int `json:"reference_length"`
}

// Info summarises a loaded image.
func (l *LoadedImage) Info() *ImageInfo {
	return &ImageInfo{
		Width:           l.Buffer.Width,
		Height:          l.Buffer.Height,
		Format:          l.Format,
		FileSizeBytes:   l.FileSizeBytes,
		ReferenceLength: l.EncodedLen,
	}
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// Dimensions returns the width and height of a loaded image.
func (l *LoadedImage) Dimensions() *DimensionsResult {
	return &DimensionsResult{
		Width:  l.Buffer.Width,
		Height: l.Buffer.Height,
	}
}
