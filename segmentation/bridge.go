package segmentation

import (
	"context"
	"image"

	"github.com/edaniels/golog"

	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

// Centroid anchors a detected object: its area-weighted mask center in pixel
// coordinates and the real-world distance at that pixel in integer
// millimeters. DistanceMM is 0 when the depth sample there is unreadable;
// consumers treat 0 as unknown.
type Centroid struct {
	X          int
	Y          int
	DistanceMM int
}

// maskFillWeight matches the half-strength blend of the mask layer over the
// color image.
const maskFillWeight = 0.5

var maskColor = rimage.NewColor(255, 0, 0)

// Bridge sends color frames to the detector and consolidates the results.
type Bridge struct {
	detector Detector
	filter   Postprocessor
	logger   golog.Logger
}

// NewBridge wraps a detector with a label allow-list.
func NewBridge(detector Detector, includeLabels []string, logger golog.Logger) *Bridge {
	return &Bridge{
		detector: detector,
		filter:   NewLabelFilter(includeLabels...),
		logger:   logger,
	}
}

// Process runs one inference and returns the overlay image plus the centroids
// of all allow-listed objects. It never fails: a detector error or an empty
// result yields a zeroed overlay and no centroids.
func (b *Bridge) Process(
	ctx context.Context,
	color *rimage.Image,
	depth *rimage.DepthMap,
	depthScale float64,
) (*rimage.Image, []Centroid) {
	detections, err := b.detector(ctx, color)
	if err != nil {
		b.logger.Debugw("segmentation inference failed, no detections this frame", "error", err)
		return rimage.NewImage(color.Width(), color.Height()), nil
	}
	detections = b.filter(detections)
	if len(detections) == 0 {
		return rimage.NewImage(color.Width(), color.Height()), nil
	}

	polygons := make([][]image.Point, 0, len(detections))
	for _, d := range detections {
		polygons = append(polygons, d.Polygon)
	}
	masks := rimage.FillPolygons(color.Width(), color.Height(), polygons, maskColor)
	overlay := rimage.BlendOver(color, masks, maskFillWeight)

	centroids := make([]Centroid, 0, len(detections))
	for _, d := range detections {
		m00, m10, m01 := polygonMoments(d.Polygon)
		if m00 == 0 {
			continue
		}
		cx := int(m10 / m00)
		cy := int(m01 / m00)
		meters := depth.Distance(cx, cy, depthScale)
		distanceMM := 0
		if meters > 0 {
			distanceMM = int(meters / depthScale)
		}
		centroids = append(centroids, Centroid{X: cx, Y: cy, DistanceMM: distanceMM})
	}
	return overlay, centroids
}

// polygonMoments computes the area moments M00, M10 and M01 of a closed
// polygon via Green's theorem, the classic image-moment formulation. The sign
// follows the winding order and cancels in the centroid quotients.
func polygonMoments(polygon []image.Point) (m00, m10, m01 float64) {
	if len(polygon) < 3 {
		return 0, 0, 0
	}
	n := len(polygon)
	for i := 0; i < n; i++ {
		p0 := polygon[i]
		p1 := polygon[(i+1)%n]
		cross := float64(p0.X)*float64(p1.Y) - float64(p1.X)*float64(p0.Y)
		m00 += cross
		m10 += (float64(p0.X) + float64(p1.X)) * cross
		m01 += (float64(p0.Y) + float64(p1.Y)) * cross
	}
	m00 /= 2
	m10 /= 6
	m01 /= 6
	return m00, m10, m01
}
