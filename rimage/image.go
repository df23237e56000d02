// Package rimage defines the image and depth map types the capture pipeline
// passes between the camera, the segmentation bridge and the processor.
package rimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Image is a dense 8-bit RGBA color image stored row-major.
type Image struct {
	width, height int
	data          []Color
}

// NewImage returns a zeroed (transparent black) image of the given size.
func NewImage(width, height int) *Image {
	return &Image{width, height, make([]Color, width*height)}
}

// ConvertImage copies any image.Image into an Image.
func ConvertImage(img image.Image) *Image {
	if ii, ok := img.(*Image); ok {
		return ii
	}
	b := img.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetXY(x-b.Min.X, y-b.Min.Y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
	return out
}

func (i *Image) k(x, y int) int { return y*i.width + x }

// Width returns the horizontal size in pixels.
func (i *Image) Width() int { return i.width }

// Height returns the vertical size in pixels.
func (i *Image) Height() int { return i.height }

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.width, i.height) }

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model { return color.NRGBAModel }

// At implements image.Image.
func (i *Image) At(x, y int) color.Color { return i.data[i.k(x, y)] }

// In reports whether the pixel lies inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

// GetXY returns the color at (x,y).
func (i *Image) GetXY(x, y int) Color { return i.data[i.k(x, y)] }

// SetXY sets the color at (x,y).
func (i *Image) SetXY(x, y int, c Color) { i.data[i.k(x, y)] = c }

// Clone returns a deep copy.
func (i *Image) Clone() *Image {
	out := NewImage(i.width, i.height)
	copy(out.data, i.data)
	return out
}

// ToNRGBA copies the image into a standard library buffer, e.g. for drawing
// contexts or encoders.
func (i *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(i.Bounds())
	draw.Draw(out, out.Bounds(), i, image.Point{}, draw.Src)
	return out
}

// FlipV returns the image flipped vertically, i.e. converted from camera row
// order to display (bottom-up) row order.
func (i *Image) FlipV() *Image {
	return ConvertImage(imaging.FlipV(i))
}

// BlendOver adds overlay scaled by weight onto base, saturating per channel.
// Pixels where the overlay is fully transparent pass base through untouched.
func BlendOver(base, overlay *Image, weight float64) *Image {
	out := base.Clone()
	if overlay == nil {
		return out
	}
	for y := 0; y < out.height && y < overlay.height; y++ {
		for x := 0; x < out.width && x < overlay.width; x++ {
			o := overlay.GetXY(x, y)
			if o.A == 0 {
				continue
			}
			b := out.GetXY(x, y)
			out.SetXY(x, y, Color{
				addSat(b.R, o.R, weight),
				addSat(b.G, o.G, weight),
				addSat(b.B, o.B, weight),
				255,
			})
		}
	}
	return out
}

func addSat(a, b uint8, w float64) uint8 {
	v := float64(a) + float64(b)*w
	if v > 255 {
		return 255
	}
	return uint8(v)
}
