package segmentation

import (
	"context"
	"image"

	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

// simpleDetector finds connected components of pixels above a luminance
// threshold and reports each component's bounding rectangle as its mask
// polygon. It stands in for the external model on rigs without one.
type simpleDetector struct {
	threshold float64
	label     string
}

// NewSimpleDetector returns a detector useful for local testing without the
// segmentation model. threshold is between 0.0 and 256.0, with 256.0 being
// white; every component of brighter pixels is reported under the given label.
func NewSimpleDetector(threshold float64, label string) Detector {
	sd := simpleDetector{threshold, label}
	return sd.Inference
}

// Inference scans the image for bright connected components.
func (sd *simpleDetector) Inference(_ context.Context, img image.Image) ([]Detection, error) {
	rimg := rimage.ConvertImage(img)
	w, h := rimg.Width(), rimg.Height()
	seen := make([]bool, w*h)
	var detections []Detection
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			indx := j*w + i
			if seen[indx] {
				continue
			}
			if !sd.pass(rimg.GetXY(i, j)) {
				seen[indx] = true
				continue
			}
			// flood the component, tracking its bounding box
			queue := []image.Point{{i, j}}
			seen[indx] = true
			x0, y0, x1, y1 := i, j, i, j
			for len(queue) != 0 {
				pt := queue[0]
				queue = queue[1:]
				if pt.X < x0 {
					x0 = pt.X
				}
				if pt.X > x1 {
					x1 = pt.X
				}
				if pt.Y < y0 {
					y0 = pt.Y
				}
				if pt.Y > y1 {
					y1 = pt.Y
				}
				queue = append(queue, sd.getNeighbors(pt, rimg, seen)...)
			}
			detections = append(detections, Detection{
				Label: sd.label,
				Score: 1.0,
				Polygon: []image.Point{
					{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1},
				},
			})
		}
	}
	return detections, nil
}

func (sd *simpleDetector) pass(c rimage.Color) bool {
	return rimage.Luminance(c) > sd.threshold
}

func (sd *simpleDetector) getNeighbors(pt image.Point, img *rimage.Image, seen []bool) []image.Point {
	w := img.Width()
	neighbors := make([]image.Point, 0, 4)
	fourPoints := []image.Point{{pt.X, pt.Y - 1}, {pt.X, pt.Y + 1}, {pt.X - 1, pt.Y}, {pt.X + 1, pt.Y}}
	for _, p := range fourPoints {
		if !img.In(p.X, p.Y) || seen[p.Y*w+p.X] {
			continue
		}
		seen[p.Y*w+p.X] = true
		if sd.pass(img.GetXY(p.X, p.Y)) {
			neighbors = append(neighbors, p)
		}
	}
	return neighbors
}
