package detection

import (
	"encoding/json"
	"fmt"
	"image"
	"math/rand"
	"sync"
)

// ReferenceSize is the side of the square canvas region coordinates are
// expressed on. Callers scale regions to the actual image size.
const ReferenceSize = 384

// Kind classifies a region of interest.
type Kind int

const (
	KindCancer Kind = iota
	KindBenign
)

func (k Kind) String() string {
	switch k {
	case KindCancer:
		return "cancer"
	case KindBenign:
		return "benign"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its lower-case name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "cancer":
		*k = KindCancer
	case "benign":
		*k = KindBenign
	default:
		return fmt.Errorf("unknown region type %q", s)
	}
	return nil
}

// Region is a rectangular area flagged by the detector, on the
// ReferenceSize x ReferenceSize canvas.
type Region struct {
	ID         int     `json:"id"`     // 1-based, sequential within one detection
	X          int     `json:"x"`      // Left edge
	Y          int     `json:"y"`      // Top edge
	Width      int     `json:"width"`  // Horizontal extent
	Height     int     `json:"height"` // Vertical extent
	Confidence float64 `json:"confidence"`
	Kind       Kind    `json:"type"`
}

// Rect returns the region scaled from the reference canvas to an image of
// the given size.
func (r Region) Rect(width, height int) image.Rectangle {
	sx := float64(width) / ReferenceSize
	sy := float64(height) / ReferenceSize
	return image.Rect(
		int(float64(r.X)*sx),
		int(float64(r.Y)*sy),
		int(float64(r.X+r.Width)*sx),
		int(float64(r.Y+r.Height)*sy),
	)
}

// Jitter supplies the uniform randomness used to perturb region confidence.
//
// Float64 returns a value in [0, 1). *rand.Rand satisfies Jitter.
type Jitter interface {
	Float64() float64
}

// globalJitter draws from the math/rand top-level source, which is safe for
// concurrent use.
type globalJitter struct{}

func (globalJitter) Float64() float64 { return rand.Float64() }

// lockedJitter serialises access to a seeded source.
type lockedJitter struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedJitter) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewSeededJitter returns a goroutine-safe Jitter with a fixed seed, for
// reproducible sessions.
func NewSeededJitter(seed int64) Jitter {
	return &lockedJitter{r: rand.New(rand.NewSource(seed))}
}

// Detector produces placeholder regions of interest.
//
// Placement is a deterministic function of the image reference length and
// the classifier confidence. Only the per-region confidence is perturbed, by
// the injected Jitter.
type Detector struct {
	jitter Jitter
}

// NewDetector returns a Detector drawing confidence jitter from j. A nil j
// uses the process-wide math/rand source.
func NewDetector(j Jitter) *Detector {
	if j == nil {
		j = globalJitter{}
	}
	return &Detector{jitter: j}
}

// Seed returns the detection seed for an image: its reference length scaled
// by the classifier confidence.
func Seed(refLength int, confidence float64) float64 {
	return float64(refLength) * confidence
}

// Detect returns the regions for an image of the given reference length
// (the length of its encoded payload) and classifier confidence.
//
// # Algorithm
//
//  1. seed = refLength * confidence
//  2. count = RandomInt(2, 4, seed) when confidence > 0.7,
//     otherwise RandomInt(1, 2, seed+1)
//  3. region i (0-based) has
//     x = RandomInt(10, 350, seed+i*10), y = RandomInt(10, 350, seed+i*20),
//     width = RandomInt(20, 70, seed+i*30), height = RandomInt(20, 70, seed+i*40),
//     confidence = confidence * (0.8 + jitter*0.2)
//
// The result always holds at least one region.
func (d *Detector) Detect(refLength int, confidence float64) []Region {
	seed := Seed(refLength, confidence)

	var count int
	if confidence > 0.7 {
		count = RandomInt(2, 4, seed)
	} else {
		count = RandomInt(1, 2, seed+1)
	}

	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		fi := float64(i)
		regions = append(regions, Region{
			ID:         i + 1,
			X:          RandomInt(10, 350, seed+fi*10),
			Y:          RandomInt(10, 350, seed+fi*20),
			Width:      RandomInt(20, 70, seed+fi*30),
			Height:     RandomInt(20, 70, seed+fi*40),
			Confidence: confidence * (0.8 + d.jitter.Float64()*0.2),
			Kind:       KindCancer,
		})
	}
	return regions
}
