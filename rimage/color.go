package rimage

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a plain 8-bit RGBA color. Frame buffers in this package are
// single-owner per pipeline iteration, so colors carry no extra state.
type Color = color.NRGBA

// NewColor returns a fully opaque color.
func NewColor(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// NewColorFromHSV converts hue [0,360), saturation and value in [0,1] to a color.
func NewColorFromHSV(h, s, v float64) Color {
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return Color{r, g, b, 255}
}

// Luminance returns the perceived brightness of a color in [0,255].
func Luminance(c Color) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
