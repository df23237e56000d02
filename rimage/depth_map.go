package rimage

import (
	"image"
)

// Depth is a single depth measurement in raw sensor units. The sensor's depth
// scale converts it to meters.
type Depth uint16

// MaxDepth is the largest representable raw depth value.
const MaxDepth = Depth(^uint16(0))

// DepthMap is a dense 16-bit depth image stored row-major. A zero value means
// the sensor could not read depth at that pixel.
type DepthMap struct {
	width, height int
	data          []Depth
}

// NewEmptyDepthMap returns a zeroed depth map of the given size.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{width, height, make([]Depth, width*height)}
}

// NewDepthMapFromData wraps raw row-major data. The slice is owned by the map
// afterwards.
func NewDepthMapFromData(width, height int, data []Depth) *DepthMap {
	if len(data) != width*height {
		panic("rimage: depth data size does not match dimensions")
	}
	return &DepthMap{width, height, data}
}

func (dm *DepthMap) k(x, y int) int { return y*dm.width + x }

// Width returns the horizontal size in pixels.
func (dm *DepthMap) Width() int { return dm.width }

// Height returns the vertical size in pixels.
func (dm *DepthMap) Height() int { return dm.height }

// Bounds returns the pixel grid rectangle.
func (dm *DepthMap) Bounds() image.Rectangle { return image.Rect(0, 0, dm.width, dm.height) }

// In reports whether the pixel lies inside the map.
func (dm *DepthMap) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

// GetDepth returns the raw depth at (x,y).
func (dm *DepthMap) GetDepth(x, y int) Depth { return dm.data[dm.k(x, y)] }

// Get returns the raw depth at a point.
func (dm *DepthMap) Get(p image.Point) Depth { return dm.data[dm.k(p.X, p.Y)] }

// Set sets the raw depth at (x,y).
func (dm *DepthMap) Set(x, y int, d Depth) { dm.data[dm.k(x, y)] = d }

// Distance converts the depth at (x,y) to meters using the given sensor
// scale. It returns 0 for out-of-bounds pixels or unreadable samples.
func (dm *DepthMap) Distance(x, y int, depthScale float64) float64 {
	if !dm.In(x, y) {
		return 0
	}
	return float64(dm.GetDepth(x, y)) * depthScale
}

// MinMax returns the smallest nonzero and the largest depth in the map. Both
// are 0 when the map holds no readable samples.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	min, max := MaxDepth, Depth(0)
	for _, z := range dm.data {
		if z == 0 {
			continue
		}
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	if max == 0 {
		return 0, 0
	}
	return min, max
}

// ToPrettyPicture renders the depth map as a false-color image, sweeping hue
// from near (warm) to far (cold) across the clamped [hardMin,hardMax] range.
// Unreadable pixels stay black.
func (dm *DepthMap) ToPrettyPicture(hardMin, hardMax Depth) *Image {
	min, max := dm.MinMax()
	if min < hardMin {
		min = hardMin
	}
	if hardMax > 0 && max > hardMax {
		max = hardMax
	}

	img := NewImage(dm.width, dm.height)
	span := float64(max) - float64(min)

	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			if z < min {
				z = min
			}
			if z > max {
				z = max
			}
			ratio := 0.0
			if span > 0 {
				ratio = (float64(z) - float64(min)) / span
			}
			hue := 30 + 200.0*ratio
			img.SetXY(x, y, NewColorFromHSV(hue, 1.0, 1.0))
		}
	}
	return img
}
