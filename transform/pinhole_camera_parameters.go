// Package transform maps between the sensor's 2D pixel grid and 3D camera
// space using the pinhole model fixed by the session's calibration.
package transform

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/archimedes-exhibitions/artificial-senses/pointcloud"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
)

// ErrNoIntrinsics is returned when a camera session has no calibration.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrapf(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters of a perspective projection of
// a 3D scene onto the 2D sensor plane. Immutable for the session.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// PinholeCameraModel pairs intrinsics with the sensor's documented
// distortion model. A nil Distortion means the stream is already rectified
// and the model deprojects like its bare intrinsics.
type PinholeCameraModel struct {
	*PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion               Distorter `json:"distortion"`
}

// CheckValid checks the intrinsics and, when present, the distortion
// parameters.
func (model *PinholeCameraModel) CheckValid() error {
	if model == nil {
		return NewNoIntrinsicsError("camera model does not exist")
	}
	if err := model.PinholeCameraIntrinsics.CheckValid(); err != nil {
		return err
	}
	if model.Distortion != nil {
		return model.Distortion.CheckValid()
	}
	return nil
}

// PixelToPoint transforms a pixel with depth to a 3D point in camera space,
// running the normalized coordinate through the distortion model the way the
// sensor's own deprojection routine does.
func (model *PinholeCameraModel) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	if model == nil || model.PinholeCameraIntrinsics == nil {
		return 0, 0, 0
	}
	xOverZ := (x - model.Ppx) / model.Fx
	yOverZ := (y - model.Ppy) / model.Fy
	if model.Distortion != nil {
		xOverZ, yOverZ = model.Distortion.Transform(xOverZ, yOverZ)
	}
	return xOverZ * z, yOverZ * z, z
}

// ImagePointTo3DPoint deprojects an image coordinate with a depth in meters.
func (model *PinholeCameraModel) ImagePointTo3DPoint(point image.Point, depthMeters float64) r3.Vector {
	px, py, pz := model.PixelToPoint(float64(point.X), float64(point.Y), depthMeters)
	return r3.Vector{X: px, Y: py, Z: pz}
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// pinholeCameraModelJSON is the on-disk calibration format: intrinsics
// fields inline plus an optional distortion block.
type pinholeCameraModelJSON struct {
	PinholeCameraIntrinsics
	Distortion *struct {
		Model      DistortionType `json:"model"`
		Parameters []float64      `json:"parameters"`
	} `json:"distortion"`
}

// NewPinholeCameraModelFromJSONFile loads a calibration file. A file without
// a distortion block yields a model with no distorter.
func NewPinholeCameraModelFromJSONFile(jsonPath string) (*PinholeCameraModel, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	parsed := &pinholeCameraModelJSON{}
	if err := json.Unmarshal(byteValue, parsed); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	intrinsics := parsed.PinholeCameraIntrinsics
	model := &PinholeCameraModel{PinholeCameraIntrinsics: &intrinsics}
	if parsed.Distortion != nil {
		distorter, err := NewDistorter(parsed.Distortion.Model, parsed.Distortion.Parameters)
		if err != nil {
			return nil, err
		}
		model.Distortion = distorter
	}
	if err := model.CheckValid(); err != nil {
		return nil, err
	}
	return model, nil
}

// NewPinholeCameraIntrinsicsFromJSONFile loads intrinsics from a JSON file,
// ignoring any distortion block.
func NewPinholeCameraIntrinsicsFromJSONFile(jsonPath string) (*PinholeCameraIntrinsics, error) {
	model, err := NewPinholeCameraModelFromJSONFile(jsonPath)
	if err != nil {
		return nil, err
	}
	return model.PinholeCameraIntrinsics, nil
}

// PixelToPoint transforms a pixel with depth to a 3D point in camera space.
// The depth value is in the same unit the returned coordinates should be in,
// usually meters.
func (params *PinholeCameraIntrinsics) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	if params == nil {
		return 0, 0, 0
	}
	xOverZ := (x - params.Ppx) / params.Fx
	yOverZ := (y - params.Ppy) / params.Fy
	return xOverZ * z, yOverZ * z, z
}

// PointToPixel projects a 3D point in camera space to a pixel on the sensor
// plane. A point with zero depth projects to (-1,-1) so bounds checks against
// the image filter it out.
func (params *PinholeCameraIntrinsics) PointToPixel(x, y, z float64) (float64, float64) {
	if z != 0. {
		xPx := math.Round((x/z)*params.Fx + params.Ppx)
		yPx := math.Round((y/z)*params.Fy + params.Ppy)
		return xPx, yPx
	}
	return -1.0, -1.0
}

// ImagePointTo3DPoint deprojects an image coordinate with a depth in meters.
func (params *PinholeCameraIntrinsics) ImagePointTo3DPoint(point image.Point, depthMeters float64) r3.Vector {
	px, py, pz := params.PixelToPoint(float64(point.X), float64(point.Y), depthMeters)
	return r3.Vector{X: px, Y: py, Z: pz}
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// DepthMapToPointCloud deprojects every depth pixel into a dense per-pixel
// cloud with vertices in meters, distortion-corrected when the model carries
// a distorter. Each vertex takes its color from the parallel colors image
// with a forced opaque alpha; unreadable depth deprojects to the origin. The
// colors image must match the depth map's pixel grid.
func (model *PinholeCameraModel) DepthMapToPointCloud(
	dm *rimage.DepthMap, depthScale float64, colors *rimage.Image,
) (*pointcloud.Dense, error) {
	if dm == nil {
		return nil, errors.New("no depth channel, cannot project to point cloud")
	}
	if colors == nil {
		return nil, errors.New("no color channel, cannot project to point cloud")
	}
	if dm.Bounds() != colors.Bounds() {
		return nil, errors.Errorf("depth map and color dimensions don't match Depth(%d,%d) != Color(%d,%d)",
			dm.Width(), dm.Height(), colors.Width(), colors.Height())
	}
	pc := pointcloud.NewDense(dm.Width(), dm.Height())
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			z := float64(dm.GetDepth(x, y)) * depthScale
			px, py, pz := model.PixelToPoint(float64(x), float64(y), z)
			c := colors.GetXY(x, y)
			c.A = 255
			pc.Set(x, y, r3.Vector{X: px, Y: py, Z: pz}, c)
		}
	}
	return pc, nil
}

// DepthMapToPointCloud deprojects with these intrinsics and no distortion.
func (params *PinholeCameraIntrinsics) DepthMapToPointCloud(
	dm *rimage.DepthMap, depthScale float64, colors *rimage.Image,
) (*pointcloud.Dense, error) {
	model := &PinholeCameraModel{PinholeCameraIntrinsics: params}
	return model.DepthMapToPointCloud(dm, depthScale, colors)
}
