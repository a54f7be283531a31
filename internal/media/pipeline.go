package media

import (
	"context"
	"sync"
	"time"

	"neighborly/internal/metrics"
	"neighborly/internal/workers"
)

// CropGeometry carries the uploader's crop selection in display coordinates
// together with the dimensions needed to map it into source pixel space.
type CropGeometry struct {
	Crop          Rect
	NaturalWidth  int
	NaturalHeight int
	DisplayWidth  int
	DisplayHeight int
}

// Pipeline runs the full normalization sequence for one upload. Instances
// are cheap and share no state; create one per request if desired.
type Pipeline struct {
	// MaxDimension bounds the decoded surface; 0 means Default.
	MaxDimension int
}

// Render decodes the upload once, maps the crop into source space, then
// composites and encodes every requested output variant. Variants run
// concurrently, bounded by available CPUs; the decoded surface is shared
// read-only. Results are returned in spec order. The context is consulted
// at every stage so an abandoned upload stops drawing promptly.
func (p *Pipeline) Render(ctx context.Context, data []byte, geom CropGeometry, specs []OutputSpec) ([]*Asset, error) {
	decodeStart := time.Now()
	src, err := Decode(ctx, data, p.MaxDimension)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues("decode").Inc()
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("decode").Observe(time.Since(decodeStart).Seconds())

	sourceCrop, err := MapCropToSource(geom.Crop, geom.NaturalWidth, geom.NaturalHeight, geom.DisplayWidth, geom.DisplayHeight)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues("geometry").Inc()
		return nil, err
	}

	// The crop was mapped against the natural dimensions but the decoded
	// surface may have been downscaled; rescale once more against it.
	// Edges round together so an in-bounds crop cannot spill past the
	// surface by a pixel.
	if geom.NaturalWidth != src.Width() || geom.NaturalHeight != src.Height() {
		sourceCrop = rescaleRect(sourceCrop, geom.NaturalWidth, geom.NaturalHeight, src.Width(), src.Height())
	}

	assets := make([]*Asset, len(specs))
	errs := make([]error, len(specs))

	sem := make(chan struct{}, workers.ForCPU(len(specs)))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec OutputSpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			assets[i], errs[i] = renderVariant(ctx, src, sourceCrop, spec)
		}(i, spec)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func renderVariant(ctx context.Context, src *Surface, crop Rect, spec OutputSpec) (*Asset, error) {
	compositeStart := time.Now()
	out, err := Composite(ctx, src, crop, spec)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues("composite").Inc()
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("composite").Observe(time.Since(compositeStart).Seconds())

	encodeStart := time.Now()
	asset, err := Encode(ctx, out, spec.Format, spec.Quality)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues("encode").Inc()
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("encode").Observe(time.Since(encodeStart).Seconds())

	return asset, nil
}
