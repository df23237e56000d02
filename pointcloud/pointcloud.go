// Package pointcloud holds the dense per-pixel point cloud the camera adapter
// builds every frame. The cloud keeps the sensor's pixel grid shape so the
// consumer can upload the vertex and color arrays to the GPU as-is.
package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// Dense is a width×height grid of 3D vertices with a parallel color array,
// both row-major. Vertex (x,y) is the deprojection of depth pixel (x,y);
// unreadable depth deprojects to the origin vertex.
type Dense struct {
	width, height int
	vertices      []r3.Vector
	colors        []color.NRGBA
}

// NewDense returns a cloud of the given grid size with all vertices at the
// origin.
func NewDense(width, height int) *Dense {
	return &Dense{
		width:    width,
		height:   height,
		vertices: make([]r3.Vector, width*height),
		colors:   make([]color.NRGBA, width*height),
	}
}

func (pc *Dense) k(x, y int) int { return y*pc.width + x }

// Width returns the grid's horizontal size.
func (pc *Dense) Width() int { return pc.width }

// Height returns the grid's vertical size.
func (pc *Dense) Height() int { return pc.height }

// Size returns the number of vertices in the grid.
func (pc *Dense) Size() int { return len(pc.vertices) }

// Set stores the vertex and color for grid cell (x,y).
func (pc *Dense) Set(x, y int, v r3.Vector, c color.NRGBA) {
	pc.vertices[pc.k(x, y)] = v
	pc.colors[pc.k(x, y)] = c
}

// At returns the vertex and color at grid cell (x,y).
func (pc *Dense) At(x, y int) (r3.Vector, color.NRGBA) {
	return pc.vertices[pc.k(x, y)], pc.colors[pc.k(x, y)]
}

// Vertices exposes the row-major vertex array. Callers must treat it as
// read-only once the cloud is published.
func (pc *Dense) Vertices() []r3.Vector { return pc.vertices }

// Colors exposes the row-major color array parallel to Vertices.
func (pc *Dense) Colors() []color.NRGBA { return pc.colors }

// Iterate visits every grid cell until fn returns false.
func (pc *Dense) Iterate(fn func(x, y int, v r3.Vector, c color.NRGBA) bool) {
	for y := 0; y < pc.height; y++ {
		for x := 0; x < pc.width; x++ {
			if !fn(x, y, pc.vertices[pc.k(x, y)], pc.colors[pc.k(x, y)]) {
				return
			}
		}
	}
}
