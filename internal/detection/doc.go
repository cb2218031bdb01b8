// Package detection provides the region-of-interest heuristic for scan overlays.
//
// The detector is a placeholder, not a trained model. Given the reference
// length of an image payload and the classifier confidence it places between
// one and four rectangles on a fixed ReferenceSize x ReferenceSize canvas.
//
// # Determinism
//
// Placement comes from a sine-based scrambler (Next, RandomInt) seeded with
// refLength*confidence, so the same image and confidence always produce the
// same rectangles. Its exact output is part of the contract: changing it moves
// every region of every previously reviewed scan.
//
// Only the per-region confidence draws real randomness, through the Jitter
// interface. Production code uses math/rand; tests inject a fixed value.
//
// # Coordinate System
//
// Region coordinates use the usual image convention on the reference canvas:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward, Y increases downward
//   - 10 <= X, Y <= 350 and 20 <= Width, Height <= 70
//
// Use Region.Rect to scale a region onto an image of a different size.
//
// # Confidence Scores
//
// Confidence values are in [0, 1]. A region's confidence is the classifier
// confidence scaled by a factor in [0.8, 1.0).
package detection
