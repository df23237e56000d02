package transform

import (
	"image"

	"github.com/golang/geo/r3"
)

// Line is a 3D line segment in camera space.
type Line struct {
	Start r3.Vector
	End   r3.Vector
}

// DefaultFrustumDepths are the depths in meters at which the field of view is
// sampled for the static wireframe.
var DefaultFrustumDepths = []float64{1, 3, 5}

// FrustumLines precomputes the sensor's field-of-view wireframe: for each
// sample depth, rays from the camera origin to the deprojected image corners
// plus the four edges connecting the corners. Static for the session since
// intrinsics never change after startup.
func FrustumLines(params *PinholeCameraIntrinsics, depths []float64) []Line {
	if len(depths) == 0 {
		depths = DefaultFrustumDepths
	}
	origin := r3.Vector{}
	lines := make([]Line, 0, len(depths)*8)
	for _, d := range depths {
		topLeft := params.ImagePointTo3DPoint(image.Point{0, 0}, d)
		topRight := params.ImagePointTo3DPoint(image.Point{params.Width, 0}, d)
		bottomRight := params.ImagePointTo3DPoint(image.Point{params.Width, params.Height}, d)
		bottomLeft := params.ImagePointTo3DPoint(image.Point{0, params.Height}, d)

		lines = append(lines,
			Line{origin, topLeft},
			Line{origin, topRight},
			Line{origin, bottomRight},
			Line{origin, bottomLeft},
			Line{topLeft, topRight},
			Line{topRight, bottomRight},
			Line{bottomRight, bottomLeft},
			Line{bottomLeft, topLeft},
		)
	}
	return lines
}
