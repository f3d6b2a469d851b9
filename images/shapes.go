// Package images - Image processing utilities.
package images

import "image"

// Rect is a lightweight bounding box in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rectangle, or 0 for degenerate boxes.
func (r Rect) Area() float32 {
	w := r.Width()
	h := r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Clamp restricts the rectangle to the image bounds [0,width) x [0,height).
func (r Rect) Clamp(width, height float32) Rect {
	return Rect{
		X1: clamp(r.X1, 0, width),
		Y1: clamp(r.Y1, 0, height),
		X2: clamp(r.X2, 0, width),
		Y2: clamp(r.Y2, 0, height),
	}
}

// ToImageRect converts the box to an image.Rectangle.
//
// This loses fractional pixels around the edges, but the box has already been
// scaled up to the original image's dimensions so the error is sub-pixel.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2)).Canon()
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
// IoU = Area of Intersection / Area of Union, a value in [0, 1]. It is the
// standard overlap metric used for suppressing duplicate detections. The
// intersection corners are the max of the top-left corners and the min of the
// bottom-right corners; the union follows from inclusion-exclusion:
// Area(A) + Area(B) - Area(A n B).
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	// Non-overlapping boxes produce a zero or negative extent.
	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0
	}
	return interArea / unionArea
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
