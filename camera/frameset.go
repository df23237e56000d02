package camera

import (
	"github.com/archimedes-exhibitions/artificial-senses/pointcloud"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

// Frameset is one aligned capture: the raw depth map, the color image on the
// same pixel grid, the false-color depth view and the dense point cloud
// colored by the depth palette. The session owns all buffers until it returns
// them; afterwards the caller does.
type Frameset struct {
	Depth         *rimage.DepthMap
	Color         *rimage.Image
	DepthPaletted *rimage.Image
	Cloud         *pointcloud.Dense
}
