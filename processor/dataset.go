// Package processor drives the capture-to-publish loop on a background
// goroutine and hands the newest consolidated dataset to the consumer through
// a single-slot mailbox.
package processor

import (
	"github.com/archimedes-exhibitions/artificial-senses/pointcloud"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/segmentation"
)

// Dataset is one fully-assembled frame for the consumer. The image buffers
// are render-ready in display (bottom-up) orientation. A dataset is immutable
// after construction and exists only until the next one replaces it in the
// handoff slot.
type Dataset struct {
	ColorImage         *rimage.Image
	DepthPalettedImage *rimage.Image
	SegmentedImage     *rimage.Image
	Centroids          []segmentation.Centroid
	Cloud              *pointcloud.Dense
}
