package media

import (
	"errors"
	"testing"
)

func TestMapCropToSource(t *testing.T) {
	tests := []struct {
		name                         string
		crop                         Rect
		naturalW, naturalH           int
		displayW, displayH           int
		want                         Rect
	}{
		{
			name:     "uniform 4x scale",
			crop:     Rect{X: 10, Y: 10, Width: 100, Height: 80},
			naturalW: 1600, naturalH: 1200,
			displayW: 400, displayH: 300,
			want: Rect{X: 40, Y: 40, Width: 400, Height: 320},
		},
		{
			name:     "identity when display matches natural",
			crop:     Rect{X: 5, Y: 7, Width: 50, Height: 60},
			naturalW: 800, naturalH: 600,
			displayW: 800, displayH: 600,
			want: Rect{X: 5, Y: 7, Width: 50, Height: 60},
		},
		{
			name:     "non-uniform axes scale independently",
			crop:     Rect{X: 10, Y: 10, Width: 100, Height: 100},
			naturalW: 2000, naturalH: 1000,
			displayW: 500, displayH: 500,
			want: Rect{X: 40, Y: 20, Width: 400, Height: 200},
		},
		{
			name:     "fractional products round to nearest",
			crop:     Rect{X: 1, Y: 1, Width: 3, Height: 3},
			naturalW: 1000, naturalH: 1000,
			displayW: 300, displayH: 300,
			// scale 3.333..: 3.33 -> 3, 10.0 -> 10
			want: Rect{X: 3, Y: 3, Width: 10, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapCropToSource(tt.crop, tt.naturalW, tt.naturalH, tt.displayW, tt.displayH)
			if err != nil {
				t.Fatalf("MapCropToSource() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MapCropToSource() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRescaleRect(t *testing.T) {
	tests := []struct {
		name               string
		crop               Rect
		naturalW, naturalH int
		surfaceW, surfaceH int
		want               Rect
	}{
		{
			name:     "uniform halving",
			crop:     Rect{X: 100, Y: 200, Width: 400, Height: 600},
			naturalW: 4000, naturalH: 3000,
			surfaceW: 2000, surfaceH: 1500,
			want: Rect{X: 50, Y: 100, Width: 200, Height: 300},
		},
		{
			name:     "odd offset edge stays on the surface",
			crop:     Rect{X: 5, Y: 0, Width: 3995, Height: 3000},
			naturalW: 4000, naturalH: 3000,
			surfaceW: 2000, surfaceH: 1500,
			// right edge maps to exactly 2000; rounding the width alone
			// would give 1998 from x=3 and overrun by one pixel
			want: Rect{X: 3, Y: 0, Width: 1997, Height: 1500},
		},
		{
			name:     "full-frame crop maps to full surface",
			crop:     Rect{X: 0, Y: 0, Width: 4001, Height: 2999},
			naturalW: 4001, naturalH: 2999,
			surfaceW: 2000, surfaceH: 1499,
			want: Rect{X: 0, Y: 0, Width: 2000, Height: 1499},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rescaleRect(tt.crop, tt.naturalW, tt.naturalH, tt.surfaceW, tt.surfaceH)
			if got != tt.want {
				t.Errorf("rescaleRect() = %+v, want %+v", got, tt.want)
			}
			if err := got.checkBounds(tt.surfaceW, tt.surfaceH); err != nil {
				t.Errorf("rescaled crop out of bounds: %v", err)
			}
		})
	}
}

func TestMapCropToSourceDegenerateDisplay(t *testing.T) {
	tests := []struct {
		name               string
		displayW, displayH int
	}{
		{"zero width", 0, 300},
		{"zero height", 400, 0},
		{"negative width", -400, 300},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapCropToSource(Rect{X: 10, Y: 10, Width: 100, Height: 80}, 1600, 1200, tt.displayW, tt.displayH)
			if err == nil {
				t.Fatal("MapCropToSource() succeeded with degenerate display dimensions")
			}
			var geomErr *GeometryError
			if !errors.As(err, &geomErr) {
				t.Errorf("error = %T, want *GeometryError", err)
			}
		})
	}
}
