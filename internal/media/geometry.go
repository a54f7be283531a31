package media

import (
	"fmt"
	"math"
)

// Rect is a crop rectangle, expressed either in display coordinates or in
// source pixel coordinates depending on context.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MapCropToSource converts a crop rectangle from the coordinate space of a
// displayed image element to the image's native pixel space. The X axis
// scales by naturalWidth/displayWidth and the Y axis by
// naturalHeight/displayHeight; the two may differ.
func MapCropToSource(crop Rect, naturalWidth, naturalHeight, displayWidth, displayHeight int) (Rect, error) {
	if displayWidth <= 0 || displayHeight <= 0 {
		return Rect{}, &GeometryError{
			Reason: fmt.Sprintf("display dimensions must be positive, got %dx%d", displayWidth, displayHeight),
		}
	}

	scaleX := float64(naturalWidth) / float64(displayWidth)
	scaleY := float64(naturalHeight) / float64(displayHeight)

	return Rect{
		X:      int(math.Round(float64(crop.X) * scaleX)),
		Y:      int(math.Round(float64(crop.Y) * scaleY)),
		Width:  int(math.Round(float64(crop.Width) * scaleX)),
		Height: int(math.Round(float64(crop.Height) * scaleY)),
	}, nil
}

// rescaleRect rescales a source-space crop from natural dimensions onto a
// downscaled surface. The right and bottom edges are rounded together with
// the origin rather than rounding the size on its own, so a crop that was
// in-bounds at natural size stays in-bounds on the surface.
func rescaleRect(crop Rect, naturalWidth, naturalHeight, surfaceWidth, surfaceHeight int) Rect {
	scaleX := float64(surfaceWidth) / float64(naturalWidth)
	scaleY := float64(surfaceHeight) / float64(naturalHeight)

	x1 := int(math.Round(float64(crop.X) * scaleX))
	y1 := int(math.Round(float64(crop.Y) * scaleY))
	x2 := int(math.Round(float64(crop.X+crop.Width) * scaleX))
	y2 := int(math.Round(float64(crop.Y+crop.Height) * scaleY))

	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// checkBounds verifies that a source-space crop lies within a surface.
func (r Rect) checkBounds(width, height int) error {
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
		return &GeometryError{Reason: fmt.Sprintf("crop %+v has negative origin or empty size", r)}
	}
	if r.X+r.Width > width || r.Y+r.Height > height {
		return &GeometryError{
			Reason: fmt.Sprintf("crop %+v exceeds surface bounds %dx%d", r, width, height),
		}
	}
	return nil
}
