package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// encodeTestPNG renders a solid image and returns its PNG bytes.
func encodeTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// createTestImage writes a solid PNG into the test's temp dir and returns its
// path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	if err := os.WriteFile(path, encodeTestPNG(t, width, height, c), 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
	if cache.maxEntries != DefaultMaxEntries {
		t.Errorf("maxEntries: got %d, want %d", cache.maxEntries, DefaultMaxEntries)
	}
	if cache.Len() != 0 {
		t.Errorf("new cache should be empty, got %d", cache.Len())
	}
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 100, 50, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if img.Buffer.Width != 100 || img.Buffer.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", img.Buffer.Width, img.Buffer.Height)
	}
	if img.Format != "png" {
		t.Errorf("format: got %s, want png", img.Format)
	}
	if got := img.Buffer.At(10, 10); got != (RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel: got %v, want red", got)
	}

	stat, _ := os.Stat(path)
	if img.FileSizeBytes != stat.Size() {
		t.Errorf("FileSizeBytes: got %d, want %d", img.FileSizeBytes, stat.Size())
	}
	if want := base64.StdEncoding.EncodedLen(int(stat.Size())); img.EncodedLen != want {
		t.Errorf("EncodedLen: got %d, want %d", img.EncodedLen, want)
	}
}

func TestImageCache_LoadCached(t *testing.T) {
	path := createTestImage(t, 10, 10, color.RGBA{0, 255, 0, 255})
	cache := NewImageCache()

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load should return the cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notImage, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.png")},
		{"not an image", notImage},
	}

	cache := NewImageCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cache.Load(tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads should not be cached, Len = %d", cache.Len())
	}
}

func TestImageCache_EvictsOldest(t *testing.T) {
	dir := t.TempDir()
	data := encodeTestPNG(t, 4, 4, color.White)
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("img-%d.png", i))
		if err := os.WriteFile(paths[i], data, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	cache := NewImageCacheSize(2)
	for _, p := range paths {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load(%s) failed: %v", p, err)
		}
	}

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	if _, ok := cache.images[paths[0]]; ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.images[paths[2]]; !ok {
		t.Error("newest entry should be cached")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	path := createTestImage(t, 5, 5, color.Black)
	cache := NewImageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}
	if len(cache.order) != 0 {
		t.Errorf("order after Evict: got %v", cache.order)
	}

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 20, 20, color.RGBA{0, 0, 255, 255})
	cache := NewImageCache()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestDecodeBase64(t *testing.T) {
	data := encodeTestPNG(t, 8, 6, color.RGBA{10, 20, 30, 255})
	payload := base64.StdEncoding.EncodeToString(data)

	tests := []struct {
		name    string
		payload string
		wantLen int
	}{
		{"bare", payload, len(payload)},
		{"data url", "data:image/png;base64," + payload, len(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBase64(tt.payload)
			if err != nil {
				t.Fatalf("DecodeBase64 failed: %v", err)
			}
			if img.Buffer.Width != 8 || img.Buffer.Height != 6 {
				t.Errorf("dimensions: got %dx%d, want 8x6", img.Buffer.Width, img.Buffer.Height)
			}
			if img.EncodedLen != tt.wantLen {
				t.Errorf("EncodedLen: got %d, want %d", img.EncodedLen, tt.wantLen)
			}
		})
	}
}

func TestDecodeBase64_MatchesFileReferenceLength(t *testing.T) {
	data := encodeTestPNG(t, 16, 16, color.RGBA{200, 100, 0, 255})

	fromBytes, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	fromBase64, err := DecodeBase64(base64.StdEncoding.EncodeToString(data))
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if fromBytes.EncodedLen != fromBase64.EncodedLen {
		t.Errorf("reference lengths differ: bytes %d, base64 %d", fromBytes.EncodedLen, fromBase64.EncodedLen)
	}
}

func TestDecodeBase64_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "!!!"},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBase64(tt.payload); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadedImage_Info(t *testing.T) {
	data := encodeTestPNG(t, 12, 7, color.White)
	img, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	info := img.Info()
	if info.Width != 12 || info.Height != 7 {
		t.Errorf("dimensions: got %dx%d, want 12x7", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes != int64(len(data)) {
		t.Errorf("FileSizeBytes: got %d, want %d", info.FileSizeBytes, len(data))
	}
	if info.ReferenceLength != img.EncodedLen {
		t.Errorf("ReferenceLength: got %d, want %d", info.ReferenceLength, img.EncodedLen)
	}

	dims := img.Dimensions()
	if dims.Width != 12 || dims.Height != 7 {
		t.Errorf("Dimensions: got %dx%d, want 12x7", dims.Width, dims.Height)
	}
}
