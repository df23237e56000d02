package pointcloud

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestDense(t *testing.T) {
	pc := NewDense(4, 3)
	test.That(t, pc.Width(), test.ShouldEqual, 4)
	test.That(t, pc.Height(), test.ShouldEqual, 3)
	test.That(t, pc.Size(), test.ShouldEqual, 12)

	// all vertices start at the origin
	v, c := pc.At(3, 2)
	test.That(t, v, test.ShouldResemble, r3.Vector{})
	test.That(t, c, test.ShouldResemble, color.NRGBA{})

	want := r3.Vector{X: 1, Y: -2, Z: 3}
	wantColor := color.NRGBA{R: 5, G: 6, B: 7, A: 255}
	pc.Set(3, 2, want, wantColor)
	v, c = pc.At(3, 2)
	test.That(t, v, test.ShouldResemble, want)
	test.That(t, c, test.ShouldResemble, wantColor)

	test.That(t, pc.Vertices(), test.ShouldHaveLength, 12)
	test.That(t, pc.Colors(), test.ShouldHaveLength, 12)
	test.That(t, pc.Vertices()[2*4+3], test.ShouldResemble, want)
}

func TestDenseIterate(t *testing.T) {
	pc := NewDense(5, 5)
	count := 0
	pc.Iterate(func(x, y int, v r3.Vector, c color.NRGBA) bool {
		count++
		return true
	})
	test.That(t, count, test.ShouldEqual, 25)

	count = 0
	pc.Iterate(func(x, y int, v r3.Vector, c color.NRGBA) bool {
		count++
		return count < 7
	})
	test.That(t, count, test.ShouldEqual, 7)
}
