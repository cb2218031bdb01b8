package imaging

import "image"

// DrawBoxes outlines each rectangle on buf in place. Outlines are thickness
// pixels wide and drawn inward from the rectangle edge; parts falling outside
// the buffer are skipped.
func DrawBoxes(buf *PixelBuffer, rects []image.Rectangle, col RGBA, thickness int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if thickness < 1 {
		thickness = 1
	}

	for _, r := range rects {
		r = r.Canon()
		for t := 0; t < thickness; t++ {
			top, bottom := r.Min.Y+t, r.Max.Y-1-t
			left, right := r.Min.X+t, r.Max.X-1-t
			if top > bottom || left > right {
				break
			}
			for x := left; x <= right; x++ {
				setInside(buf, x, top, col)
				setInside(buf, x, bottom, col)
			}
			for y := top; y <= bottom; y++ {
				setInside(buf, left, y, col)
				setInside(buf, right, y, col)
			}
		}
	}
	return nil
}

func setInside(buf *PixelBuffer, x, y int, col RGBA) {
	if x >= 0 && x < buf.Width && y >= 0 && y < buf.Height {
		buf.Set(x, y, col)
	}
}
