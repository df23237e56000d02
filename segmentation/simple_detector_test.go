package segmentation

import (
	"context"
	"image"
	"testing"

	"go.viam.com/test"

	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

func TestSimpleDetector(t *testing.T) {
	img := rimage.NewImage(40, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetXY(x, y, rimage.NewColor(20, 20, 20))
		}
	}
	for y := 10; y < 20; y++ {
		for x := 5; x < 15; x++ {
			img.SetXY(x, y, rimage.NewColor(230, 230, 230))
		}
	}

	det := NewSimpleDetector(100, "person")
	detections, err := det(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, detections, test.ShouldHaveLength, 1)
	test.That(t, detections[0].Label, test.ShouldEqual, "person")
	test.That(t, detections[0].Polygon, test.ShouldResemble, []image.Point{
		{5, 10}, {14, 10}, {14, 19}, {5, 19},
	})
}

func TestSimpleDetectorNothingBright(t *testing.T) {
	img := rimage.NewImage(16, 16)
	det := NewSimpleDetector(100, "person")
	detections, err := det(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, detections, test.ShouldHaveLength, 0)
}

func TestSimpleDetectorTwoComponents(t *testing.T) {
	img := rimage.NewImage(30, 10)
	for x := 0; x < 5; x++ {
		img.SetXY(x, 2, rimage.NewColor(255, 255, 255))
		img.SetXY(x+20, 7, rimage.NewColor(255, 255, 255))
	}
	det := NewSimpleDetector(100, "blob")
	detections, err := det(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, detections, test.ShouldHaveLength, 2)
}
