// Package segmentation bridges the external ML segmentation model into the
// pipeline: it narrows the model to a fixed-shape result contract and turns
// mask polygons into an overlay image plus located centroids.
package segmentation

import (
	"context"
	"image"
)

// Detection is one object the model found: its class label, the model's
// confidence and the mask outline as a closed polygon in pixel coordinates.
// This is the entire contract with the model; its native result shapes stay
// on the other side of the Detector boundary.
type Detection struct {
	Label   string
	Score   float64
	Polygon []image.Point
}

// Detector runs the external segmentation model on a color image. The call is
// synchronous and blocking; a failed or empty inference is not retried.
type Detector func(ctx context.Context, img image.Image) ([]Detection, error)

// Postprocessor filters or modifies an incoming array of detections.
type Postprocessor func([]Detection) []Detection

// NewLabelFilter returns a function that keeps only detections whose label is
// in the allow-list.
func NewLabelFilter(labels ...string) Postprocessor {
	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[l] = true
	}
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if allowed[d.Label] {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewScoreFilter returns a function that filters out detections below a
// certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Score >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}
