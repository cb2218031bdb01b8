package detection

import (
	"encoding/json"
	"image"
	"math"
	"sync"
	"testing"
)

// fixedJitter always returns the same value.
type fixedJitter float64

func (f fixedJitter) Float64() float64 { return float64(f) }

func TestDetect_HighConfidence(t *testing.T) {
	d := NewDetector(fixedJitter(0.5))
	regions := d.Detect(1000, 0.95)

	want := []Region{
		{ID: 1, X: 230, Y: 230, Width: 53, Height: 53},
		{ID: 2, X: 305, Y: 336, Width: 26, Height: 37},
		{ID: 3, X: 336, Y: 129, Width: 41, Height: 70},
	}
	if len(regions) != len(want) {
		t.Fatalf("expected %d regions, got %d", len(want), len(regions))
	}

	for i, w := range want {
		got := regions[i]
		if got.ID != w.ID || got.X != w.X || got.Y != w.Y || got.Width != w.Width || got.Height != w.Height {
			t.Errorf("region %d: got %+v, want %+v", i, got, w)
		}
		if math.Abs(got.Confidence-0.855) > 1e-9 {
			t.Errorf("region %d confidence: got %v, want 0.855", i, got.Confidence)
		}
		if got.Kind != KindCancer {
			t.Errorf("region %d kind: got %v, want cancer", i, got.Kind)
		}
	}
}

func TestDetect_LowConfidence(t *testing.T) {
	regions := NewDetector(fixedJitter(0)).Detect(1000, 0.3)

	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	r := regions[0]
	if r.X != 160 || r.Y != 160 || r.Width != 42 || r.Height != 42 {
		t.Errorf("region: got %+v", r)
	}
	if math.Abs(r.Confidence-0.24) > 1e-9 {
		t.Errorf("confidence: got %v, want 0.24", r.Confidence)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector(fixedJitter(0.25))
	a := d.Detect(48213, 0.82)
	b := d.Detect(48213, 0.82)

	if len(a) != len(b) {
		t.Fatalf("counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("region %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDetect_Invariants(t *testing.T) {
	d := NewDetector(NewSeededJitter(7))

	for refLength := 100; refLength < 20000; refLength += 137 {
		for _, conf := range []float64{0, 0.1, 0.5, 0.7, 0.71, 0.9, 1} {
			regions := d.Detect(refLength, conf)

			minCount, maxCount := 1, 2
			if conf > 0.7 {
				minCount, maxCount = 2, 4
			}
			if len(regions) < minCount || len(regions) > maxCount {
				t.Fatalf("Detect(%d, %v): %d regions, want %d..%d", refLength, conf, len(regions), minCount, maxCount)
			}

			for i, r := range regions {
				if r.ID != i+1 {
					t.Fatalf("Detect(%d, %v): region %d has id %d", refLength, conf, i, r.ID)
				}
				if r.X < 10 || r.X > 350 || r.Y < 10 || r.Y > 350 {
					t.Fatalf("Detect(%d, %v): position out of range %+v", refLength, conf, r)
				}
				if r.Width < 20 || r.Width > 70 || r.Height < 20 || r.Height > 70 {
					t.Fatalf("Detect(%d, %v): size out of range %+v", refLength, conf, r)
				}
				if r.Confidence < conf*0.8-1e-12 || r.Confidence > conf+1e-12 {
					t.Fatalf("Detect(%d, %v): confidence %v out of range", refLength, conf, r.Confidence)
				}
			}
		}
	}
}

func TestDetect_ConcurrentUse(t *testing.T) {
	d := NewDetector(NewSeededJitter(1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if len(d.Detect(1000, 0.95)) != 3 {
					t.Error("unexpected region count")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewDetector_NilJitter(t *testing.T) {
	regions := NewDetector(nil).Detect(1000, 0.95)
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	for _, r := range regions {
		if r.Confidence < 0.95*0.8 || r.Confidence > 0.95 {
			t.Errorf("confidence %v outside [0.76, 0.95]", r.Confidence)
		}
	}
}

func TestNewSeededJitter_Reproducible(t *testing.T) {
	a, b := NewSeededJitter(99), NewSeededJitter(99)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should give the same sequence")
		}
	}
}

func TestSeed(t *testing.T) {
	if got := Seed(1000, 0.95); got != 950 {
		t.Errorf("Seed(1000, 0.95) = %v, want 950", got)
	}
}

func TestRegion_Rect(t *testing.T) {
	r := Region{X: 96, Y: 192, Width: 48, Height: 24}

	tests := []struct {
		name          string
		width, height int
		want          image.Rectangle
	}{
		{"reference size", 384, 384, image.Rect(96, 192, 144, 216)},
		{"double", 768, 768, image.Rect(192, 384, 288, 432)},
		{"anisotropic", 192, 768, image.Rect(48, 384, 72, 432)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Rect(tt.width, tt.height); got != tt.want {
				t.Errorf("Rect(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestKind_JSON(t *testing.T) {
	r := Region{ID: 1, X: 10, Y: 20, Width: 30, Height: 40, Confidence: 0.5, Kind: KindCancer}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if raw["type"] != "cancer" {
		t.Errorf("type: got %v, want cancer", raw["type"])
	}

	var k Kind
	if err := json.Unmarshal([]byte(`"benign"`), &k); err != nil || k != KindBenign {
		t.Errorf("benign: got %v, %v", k, err)
	}
	if err := json.Unmarshal([]byte(`"tumor"`), &k); err == nil {
		t.Error("expected error for unknown kind")
	}
	if KindBenign.String() != "benign" || Kind(9).String() != "unknown" {
		t.Error("unexpected Kind.String output")
	}
}
