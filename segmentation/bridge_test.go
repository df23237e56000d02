package segmentation

import (
	"context"
	"image"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

func staticDetector(detections []Detection, err error) Detector {
	return func(context.Context, image.Image) ([]Detection, error) {
		return detections, err
	}
}

func rectPolygon(r image.Rectangle) []image.Point {
	return []image.Point{
		{r.Min.X, r.Min.Y}, {r.Max.X, r.Min.Y}, {r.Max.X, r.Max.Y}, {r.Min.X, r.Max.Y},
	}
}

func TestCentroidOfRectangle(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(32, 32)
	depth := rimage.NewEmptyDepthMap(32, 32)
	depth.Set(15, 15, 1200)

	det := staticDetector([]Detection{
		{Label: "person", Score: 0.9, Polygon: rectPolygon(image.Rect(10, 10, 20, 20))},
	}, nil)
	bridge := NewBridge(det, []string{"person"}, logger)

	_, centroids := bridge.Process(context.Background(), color, depth, 0.001)
	test.That(t, centroids, test.ShouldHaveLength, 1)
	test.That(t, centroids[0].X, test.ShouldEqual, 15)
	test.That(t, centroids[0].Y, test.ShouldEqual, 15)
	// distance_mm == depth_sample * scale back in millimeters
	test.That(t, centroids[0].DistanceMM, test.ShouldEqual, 1200)
}

func TestDegeneratePolygonSkipped(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(16, 16)
	depth := rimage.NewEmptyDepthMap(16, 16)

	det := staticDetector([]Detection{
		{Label: "person", Score: 0.9, Polygon: []image.Point{{3, 3}, {8, 8}}},
		{Label: "person", Score: 0.9, Polygon: []image.Point{{2, 2}, {2, 2}, {2, 2}}},
	}, nil)
	bridge := NewBridge(det, []string{"person"}, logger)

	_, centroids := bridge.Process(context.Background(), color, depth, 0.001)
	test.That(t, centroids, test.ShouldHaveLength, 0)
}

func TestLabelAllowList(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(32, 32)
	depth := rimage.NewEmptyDepthMap(32, 32)

	det := staticDetector([]Detection{
		{Label: "cat", Score: 0.9, Polygon: rectPolygon(image.Rect(10, 10, 20, 20))},
	}, nil)
	bridge := NewBridge(det, []string{"person"}, logger)

	overlay, centroids := bridge.Process(context.Background(), color, depth, 0.001)
	test.That(t, centroids, test.ShouldHaveLength, 0)
	// nothing kept means a zeroed overlay
	test.That(t, overlay.GetXY(15, 15), test.ShouldResemble, rimage.Color{})
}

func TestDetectorFailureYieldsNoDetections(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(8, 8)
	depth := rimage.NewEmptyDepthMap(8, 8)

	bridge := NewBridge(staticDetector(nil, errors.New("model exploded")), []string{"person"}, logger)
	overlay, centroids := bridge.Process(context.Background(), color, depth, 0.001)
	test.That(t, centroids, test.ShouldHaveLength, 0)
	test.That(t, overlay.Bounds(), test.ShouldResemble, color.Bounds())
	test.That(t, overlay.GetXY(4, 4), test.ShouldResemble, rimage.Color{})
}

func TestOverlayBlending(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			color.SetXY(x, y, rimage.NewColor(50, 50, 50))
		}
	}
	depth := rimage.NewEmptyDepthMap(32, 32)

	det := staticDetector([]Detection{
		{Label: "person", Score: 0.9, Polygon: rectPolygon(image.Rect(8, 8, 24, 24))},
	}, nil)
	bridge := NewBridge(det, []string{"person"}, logger)

	overlay, _ := bridge.Process(context.Background(), color, depth, 0.001)
	inside := overlay.GetXY(16, 16)
	outside := overlay.GetXY(2, 2)
	test.That(t, inside.R, test.ShouldBeGreaterThan, outside.R)
	test.That(t, outside, test.ShouldResemble, rimage.NewColor(50, 50, 50))
}

func TestUnreadableDepthReportsUnknown(t *testing.T) {
	logger := golog.NewTestLogger(t)
	color := rimage.NewImage(32, 32)
	depth := rimage.NewEmptyDepthMap(32, 32)

	det := staticDetector([]Detection{
		{Label: "person", Score: 0.9, Polygon: rectPolygon(image.Rect(10, 10, 20, 20))},
	}, nil)
	bridge := NewBridge(det, []string{"person"}, logger)

	_, centroids := bridge.Process(context.Background(), color, depth, 0.001)
	test.That(t, centroids, test.ShouldHaveLength, 1)
	test.That(t, centroids[0].DistanceMM, test.ShouldEqual, 0)
}

func TestPolygonMoments(t *testing.T) {
	// clockwise and counter-clockwise windings agree on the centroid
	ccw := []image.Point{{10, 10}, {20, 10}, {20, 20}, {10, 20}}
	cw := []image.Point{{10, 10}, {10, 20}, {20, 20}, {20, 10}}

	m00, m10, m01 := polygonMoments(ccw)
	test.That(t, m10/m00, test.ShouldAlmostEqual, 15.0)
	test.That(t, m01/m00, test.ShouldAlmostEqual, 15.0)

	m00, m10, m01 = polygonMoments(cw)
	test.That(t, m10/m00, test.ShouldAlmostEqual, 15.0)
	test.That(t, m01/m00, test.ShouldAlmostEqual, 15.0)

	m00, _, _ = polygonMoments([]image.Point{{1, 1}, {5, 5}, {9, 9}})
	test.That(t, m00, test.ShouldAlmostEqual, 0.0)
}

func TestScoreFilter(t *testing.T) {
	in := []Detection{{Label: "a", Score: 0.2}, {Label: "b", Score: 0.8}}
	out := NewScoreFilter(0.5)(in)
	test.That(t, out, test.ShouldHaveLength, 1)
	test.That(t, out[0].Label, test.ShouldEqual, "b")
}
