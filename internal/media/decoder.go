package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"neighborly/internal/logging"

	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// DefaultMaxDimension bounds decoded surfaces when no explicit limit is given.
const DefaultMaxDimension = 2000

// decodeStrategy is one named way to turn bytes into an image. Strategies
// are tried in order; the first success wins.
type decodeStrategy struct {
	name     string
	oriented bool
	decode   func([]byte) (image.Image, error)
}

var decodeStrategies = []decodeStrategy{
	{
		name:     "imaging-autoorientation",
		oriented: true,
		decode: func(data []byte) (image.Image, error) {
			return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		},
	},
	{
		// Degraded path: decodes without applying orientation metadata.
		name:     "stdlib",
		oriented: false,
		decode: func(data []byte) (image.Image, error) {
			img, _, err := image.Decode(bytes.NewReader(data))
			return img, err
		},
	},
}

// Decode turns raw upload bytes into an oriented Surface, downscaling so
// neither dimension exceeds maxDim while preserving aspect ratio. Images
// already within bounds are never upscaled. A maxDim of 0 or less selects
// DefaultMaxDimension.
func Decode(ctx context.Context, data []byte, maxDim int) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	var img image.Image
	var oriented bool
	var lastErr error

	for _, strategy := range decodeStrategies {
		decoded, err := strategy.decode(data)
		if err == nil {
			img = decoded
			oriented = strategy.oriented
			if !oriented {
				logging.Warn("decode strategy %q succeeded without orientation correction", strategy.name)
			}
			break
		}
		logging.Debug("decode strategy %q failed: %v", strategy.name, err)
		lastErr = err
	}

	if img == nil {
		return nil, &DecodeError{Err: lastErr}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	scale := math.Min(1, math.Min(float64(maxDim)/float64(width), float64(maxDim)/float64(height)))
	if scale < 1 {
		targetW := int(math.Round(float64(width) * scale))
		targetH := int(math.Round(float64(height) * scale))
		logging.Debug("downscaling %dx%d to %dx%d (max %d)", width, height, targetW, targetH, maxDim)
		img = imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	}

	return &Surface{Img: img, Kind: SurfaceDecoded, Oriented: oriented}, nil
}

// AcceptedContentTypes lists the upload MIME types the pipeline handles.
var AcceptedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var rejectedHEICTypes = map[string]bool{
	"image/heic": true,
	"image/heif": true,
}

// HEICMessage instructs the uploader to re-export unsupported Apple formats.
const HEICMessage = "HEIC/HEIF images are not supported. Please re-export the photo as JPEG or PNG and upload again."

// CheckUploadType validates the declared content type and filename of an
// upload before any bytes are decoded.
func CheckUploadType(contentType, filename string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	if rejectedHEICTypes[ct] || ext == ".heic" || ext == ".heif" {
		return &UnsupportedTypeError{ContentType: ct, Message: HEICMessage}
	}
	if !AcceptedContentTypes[ct] {
		return &UnsupportedTypeError{
			ContentType: ct,
			Message:     fmt.Sprintf("unsupported image type %q; use JPEG, PNG, or WebP", ct),
		}
	}
	return nil
}
