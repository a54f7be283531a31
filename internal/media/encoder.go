package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// Format is an output encoding format.
type Format string

const (
	// FormatJPEG is lossy, no alpha channel.
	FormatJPEG Format = "jpeg"
	// FormatPNG is lossless; quality is ignored.
	FormatPNG Format = "png"
	// FormatWebP is lossy with alpha; requires libvips.
	FormatWebP Format = "webp"
)

// ParseFormat normalizes a format name, accepting the jpg alias.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// SupportsAlpha reports whether the format can carry transparency.
func (f Format) SupportsAlpha() bool {
	return f != FormatJPEG
}

// MIME returns the content type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// Asset is the terminal output of the pipeline: encoded bytes plus their
// format. Ownership passes to the caller on return.
type Asset struct {
	Data   []byte
	Format Format
}

// MIME returns the asset's content type.
func (a *Asset) MIME() string { return a.Format.MIME() }

// Encode compresses a composited surface. Quality is a factor in [0,1],
// ignored for png. An encode that yields no bytes is a CanvasError, never a
// zero-length asset.
func Encode(ctx context.Context, s *Surface, format Format, quality float64) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := qualityPercent(quality)

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(&buf, s.Img, imaging.JPEG, imaging.JPEGQuality(q))
	case FormatPNG:
		err = imaging.Encode(&buf, s.Img, imaging.PNG)
	case FormatWebP:
		var data []byte
		data, err = encodeWebP(s.Img, q)
		if err == nil {
			buf.Write(data)
		}
	default:
		return nil, &CanvasError{Op: "encode", Err: fmt.Errorf("unsupported format %q", format)}
	}

	if err != nil {
		return nil, &CanvasError{Op: "encode", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &CanvasError{Op: "encode", Err: errors.New("empty encode")}
	}

	return &Asset{Data: buf.Bytes(), Format: format}, nil
}

// qualityPercent maps a [0,1] quality factor to the 1-100 scale used by the
// underlying encoders.
func qualityPercent(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}
