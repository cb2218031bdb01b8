package imaging

import "fmt"

// DarkWash darkens the tinted base before edges are laid on top.
var DarkWash = Paint{R: 0, G: 20, B: 10, Alpha: 0.7}

// EdgeOpacity is the global opacity of the edge layer in the composite.
const EdgeOpacity = 0.65

// Compose builds the review overlay from a tinted scan and its edge layer.
//
// Layers, bottom to top:
//  1. tinted, copied into a new buffer (tinted itself is not modified)
//  2. DarkWash
//  3. edges at EdgeOpacity, on top of each edge pixel's own alpha
//  4. CompositeGrid, drawn directly on the result
//
// Both inputs must be valid and the same size. The result has the same
// dimensions as tinted.
func Compose(tinted, edges *PixelBuffer) (*PixelBuffer, error) {
	if err := tinted.Validate(); err != nil {
		return nil, fmt.Errorf("tinted layer: %w", err)
	}
	if err := edges.Validate(); err != nil {
		return nil, fmt.Errorf("edge layer: %w", err)
	}

	out := tinted.Clone()
	if _, err := Wash(out, DarkWash); err != nil {
		return nil, err
	}
	if err := OverLayer(out, edges, EdgeOpacity); err != nil {
		return nil, fmt.Errorf("edge layer: %w", err)
	}
	if _, err := DrawGrid(out, CompositeGrid); err != nil {
		return nil, err
	}
	return out, nil
}
