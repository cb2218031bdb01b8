// Package imaging provides the pixel-level stages of the scan overlay pipeline.
//
// All stages operate on PixelBuffer, a contiguous straight-alpha RGBA raster
// with its origin at the top-left corner, X increasing rightward and Y
// increasing downward.
//
// # Stages
//
//   - ToneTransform: desaturate and recolor a scan, then lay a green wash over it
//   - ExtractEdges: Sobel gradient magnitude, hard-thresholded into a highlight layer
//   - DrawGrid: measurement grid with optional ruler labels
//   - Compose: tinted base, dark wash, edge layer and ruler grid in one buffer
//
// Around them sit the loader cache (ImageCache), PNG encoding, region crops
// and outlines, and per-region color statistics.
//
// # Buffer Ownership
//
// ToneTransform, Wash, DrawGrid and DrawBoxes mutate the buffer they are
// given and return it. ExtractEdges, Compose and CropRect allocate a new
// buffer and leave their inputs untouched.
//
// # Compositing
//
// Every blend is source-over on straight alpha: out = src*a + dst*(1-a) for
// an opaque destination. Channel values are stored clamped to 0..255 and
// rounded half to even.
//
// # Error Handling
//
// Every stage validates its input and fails fast with a *BufferError (which
// matches ErrInvalidBuffer) on non-positive dimensions or a pixel slice of
// the wrong length. Decoding errors are reported by DecodeBytes,
// DecodeBase64 and ImageCache.Load.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Stages are stateless and may run
// concurrently on different buffers.
package imaging
