package media

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// OutputSpec describes the surface the compositor must produce.
type OutputSpec struct {
	Width  int
	Height int
	Format Format

	// Quality is the encode quality factor in [0,1]; ignored for png.
	Quality float64

	// Background is used to flatten transparency when the format has no
	// alpha channel. Nil means white.
	Background color.Color
}

// Composite draws the named source sub-rectangle scaled to exactly fill the
// output dimensions. No aspect ratio is preserved; the caller supplies a
// crop whose aspect matches the output if distortion is undesired. For
// formats without alpha support the output is filled with the background
// color first, so transparent regions do not encode as black. The input
// surface is not mutated.
func Composite(ctx context.Context, src *Surface, crop Rect, spec OutputSpec) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, &GeometryError{
			Reason: fmt.Sprintf("output dimensions must be positive, got %dx%d", spec.Width, spec.Height),
		}
	}
	if err := crop.checkBounds(src.Width(), src.Height()); err != nil {
		return nil, err
	}

	region := imaging.Crop(src.Img, image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height))
	scaled := imaging.Resize(region, spec.Width, spec.Height, imaging.Lanczos)

	var out image.Image = scaled
	if !spec.Format.SupportsAlpha() {
		bg := spec.Background
		if bg == nil {
			bg = color.White
		}
		canvas := imaging.New(spec.Width, spec.Height, bg)
		out = imaging.Overlay(canvas, scaled, image.Pt(0, 0), 1.0)
	}

	return &Surface{Img: out, Kind: SurfaceComposited, Oriented: src.Oriented}, nil
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}

	hexByte := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	if len(s) == 0 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q", s)
	}

	switch len(s) {
	case 4: // #rgb
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			v, ok := hexByte(s[i+1])
			if !ok {
				return c, fmt.Errorf("invalid color %q", s)
			}
			*dst = v*16 + v
		}
	case 7: // #rrggbb
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			hi, ok1 := hexByte(s[i*2+1])
			lo, ok2 := hexByte(s[i*2+2])
			if !ok1 || !ok2 {
				return c, fmt.Errorf("invalid color %q", s)
			}
			*dst = hi*16 + lo
		}
	default:
		return c, fmt.Errorf("invalid color %q", s)
	}

	return c, nil
}
