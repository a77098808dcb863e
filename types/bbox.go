package types

import "image"

// BoundingBox is an axis aligned box in pixel coordinates
type BoundingBox struct {
	X, Y          int
	Width, Height int
}

// NewBoundingBox creates a box from its top-left corner and size
func NewBoundingBox(x, y, width, height int) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// BoundingBoxFromRect converts a gocv/image rectangle into a BoundingBox
func BoundingBoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the box as an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Clamp keeps the box inside a frame of the given size. The origin is
// clamped to [0, w] x [0, h] and the bottom-right corner to one pixel past
// the frame, so boxes crossing an edge shrink but never move. A corner left
// of the clamped origin gives a negative size.
func (b BoundingBox) Clamp(frameWidth, frameHeight int) BoundingBox {
	x := clampInt(b.X, 0, frameWidth)
	y := clampInt(b.Y, 0, frameHeight)

	// corner is computed from the unclamped origin
	right := clampInt(b.X+b.Width, 0, frameWidth+1)
	bottom := clampInt(b.Y+b.Height, 0, frameHeight+1)

	return BoundingBox{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Empty reports whether the box has no area
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
