package thumbnail

import (
	"image"

	"golang.org/x/image/draw"
)

// FitDimensions computes the size of a srcW x srcH image scaled to fit
// within boxW x boxH with its aspect ratio preserved. The limiting axis
// matches the box exactly; the other axis is rounded to nearest (half
// up) but never below 1. A zero box dimension gives zero in that axis.
func FitDimensions(srcW, srcH, boxW, boxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	boxW = max(boxW, 0)
	boxH = max(boxH, 0)

	w, h := uint64(srcW), uint64(srcH)
	bw, bh := uint64(boxW), uint64(boxH)

	// boxW/srcW <= boxH/srcH, cross-multiplied to stay in integers
	if bw*h <= bh*w {
		return boxW, int(max(1, (h*bw+w/2)/w))
	}
	return int(max(1, (w*bh+h/2)/h)), boxH
}

// Fit scales src to fit within width x height, preserving aspect ratio.
// Scaling is done with the given scaler; nil uses draw.BiLinear.
func Fit(src image.Image, width, height int, scaler draw.Scaler) *image.RGBA {
	if scaler == nil {
		scaler = draw.BiLinear
	}

	bounds := src.Bounds()
	newWidth, newHeight := FitDimensions(bounds.Dx(), bounds.Dy(), width, height)

	dstRect := image.Rect(0, 0, newWidth, newHeight)
	scaled := image.NewRGBA(dstRect)
	if dstRect.Empty() {
		return scaled
	}

	scaler.Scale(scaled, dstRect, src, bounds, draw.Src, nil)
	return scaled
}
