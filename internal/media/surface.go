package media

import "image"

// SurfaceKind tags how a surface was produced.
type SurfaceKind int

const (
	// SurfaceDecoded is a surface produced by decoding uploaded bytes.
	SurfaceDecoded SurfaceKind = iota
	// SurfaceComposited is a surface produced by the compositor.
	SurfaceComposited
)

// Surface is an in-memory raster with known dimensions. It is owned by a
// single pipeline invocation and never shared between concurrent uploads.
type Surface struct {
	Img  image.Image
	Kind SurfaceKind

	// Oriented is false when the surface was decoded by the degraded
	// fallback path that skips orientation correction.
	Oriented bool
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.Img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.Img.Bounds().Dy() }
