package compose

import (
	"fmt"
	"math"
	"strings"
)

// Layout is the closed set of output geometries a job can request.
type Layout string

const (
	LayoutLandscape Layout = "landscape"
	LayoutShorts    Layout = "shorts"
)

// PadColor fills letterbox bars. It is not configurable per job.
const PadColor = "black"

// Canvas is the target output geometry shared by every clip in a job.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseLayout maps a request string onto a Layout. Anything other than
// "shorts" is treated as landscape.
func ParseLayout(value string) Layout {
	if strings.EqualFold(strings.TrimSpace(value), string(LayoutShorts)) {
		return LayoutShorts
	}
	return LayoutLandscape
}

// Canvas returns the fixed geometry for the layout.
func (l Layout) Canvas() Canvas {
	if l == LayoutShorts {
		return Canvas{Width: 720, Height: 1280}
	}
	return Canvas{Width: 1280, Height: 720}
}

// Fit describes how a source frame is scaled and padded onto a canvas.
// ScaledWidth+PadLeft+PadRight equals the canvas width, and likewise for
// height.
type Fit struct {
	Scale        float64 `json:"scale"`
	ScaledWidth  int     `json:"scaled_width"`
	ScaledHeight int     `json:"scaled_height"`
	PadTop       int     `json:"pad_top"`
	PadBottom    int     `json:"pad_bottom"`
	PadLeft      int     `json:"pad_left"`
	PadRight     int     `json:"pad_right"`
}

// FitCanvas computes the aspect-preserving scale and symmetric letterbox
// padding for a source of the given dimensions.
func FitCanvas(sourceWidth, sourceHeight int, canvas Canvas) (Fit, error) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return Fit{}, fmt.Errorf("%w: %dx%d", ErrInvalidSource, sourceWidth, sourceHeight)
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return Fit{}, fmt.Errorf("invalid canvas %dx%d", canvas.Width, canvas.Height)
	}

	wRatio := float64(canvas.Width) / float64(sourceWidth)
	hRatio := float64(canvas.Height) / float64(sourceHeight)
	scale := math.Min(wRatio, hRatio)

	var scaledW, scaledH int
	if wRatio <= hRatio {
		scaledW = canvas.Width
		scaledH = scaledDim(sourceHeight, scale, canvas.Height)
	} else {
		scaledW = scaledDim(sourceWidth, scale, canvas.Width)
		scaledH = canvas.Height
	}

	padLeft, padRight := splitPadding(canvas.Width - scaledW)
	padTop, padBottom := splitPadding(canvas.Height - scaledH)

	return Fit{
		Scale:        scale,
		ScaledWidth:  scaledW,
		ScaledHeight: scaledH,
		PadTop:       padTop,
		PadBottom:    padBottom,
		PadLeft:      padLeft,
		PadRight:     padRight,
	}, nil
}

// scaledDim floors size*scale, tolerating float error just below an integer
// and never exceeding limit.
func scaledDim(size int, scale float64, limit int) int {
	v := int(math.Floor(float64(size)*scale + 1e-9))
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}

func splitPadding(remaining int) (before, after int) {
	if remaining <= 0 {
		return 0, 0
	}
	before = remaining / 2
	return before, remaining - before
}
