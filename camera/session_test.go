package camera_test

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/archimedes-exhibitions/artificial-senses/camera"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

type framePair struct {
	depth *rimage.DepthMap
	color *rimage.Image
	err   error
}

// scriptedDriver plays back a fixed sequence of frame pairs.
type scriptedDriver struct {
	mu        sync.Mutex
	startErr  error
	frames    []framePair
	idx       int
	stopCount int
}

func (d *scriptedDriver) Start(cfg camera.StreamConfig) error { return d.startErr }

func (d *scriptedDriver) Info() camera.DeviceInfo {
	return camera.DeviceInfo{Name: "scripted", SerialNumber: "1", FirmwareVersion: "1"}
}

func (d *scriptedDriver) Intrinsics() *transform.PinholeCameraIntrinsics {
	return &transform.PinholeCameraIntrinsics{Width: 8, Height: 6, Fx: 4, Fy: 4, Ppx: 4, Ppy: 3}
}

func (d *scriptedDriver) DepthScale() float64 { return 0.001 }

func (d *scriptedDriver) WaitForFrames(ctx context.Context) (*rimage.DepthMap, *rimage.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idx >= len(d.frames) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	f := d.frames[d.idx]
	d.idx++
	return f.depth, f.color, f.err
}

func (d *scriptedDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopCount++
	return nil
}

func goodPair() framePair {
	dm := rimage.NewEmptyDepthMap(8, 6)
	dm.Set(4, 3, 2000)
	return framePair{depth: dm, color: rimage.NewImage(8, 6)}
}

func TestOpenNoDevice(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{startErr: errors.New("usb enumeration found nothing")}
	_, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, camera.ErrNoDevice), test.ShouldBeTrue)
}

func TestGetFramesSkipsUnaligned(t *testing.T) {
	logger := golog.NewTestLogger(t)
	misaligned := framePair{depth: rimage.NewEmptyDepthMap(8, 6), color: rimage.NewImage(4, 4)}
	missing := framePair{depth: nil, color: rimage.NewImage(8, 6)}
	driver := &scriptedDriver{frames: []framePair{misaligned, missing, goodPair()}}

	session, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, session.Close(), test.ShouldBeNil)
	}()

	frameset, err := session.GetFrames(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, driver.idx, test.ShouldEqual, 3)

	// the alignment invariant: identical pixel grids
	test.That(t, frameset.Depth.Bounds(), test.ShouldResemble, frameset.Color.Bounds())
	test.That(t, frameset.DepthPaletted.Bounds(), test.ShouldResemble, frameset.Color.Bounds())
}

func TestGetFramesBuildsCloud(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{frames: []framePair{goodPair()}}

	session, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, session.Close(), test.ShouldBeNil)
	}()

	frameset, err := session.GetFrames(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frameset.Cloud.Size(), test.ShouldEqual, 8*6)

	// the one readable pixel deprojects onto the optical axis at 2m
	v, c := frameset.Cloud.At(4, 3)
	test.That(t, v.Z, test.ShouldAlmostEqual, 2.0)
	test.That(t, c.A, test.ShouldEqual, uint8(255))

	// unreadable depth deprojects to the origin, no NaN or Inf anywhere
	v, _ = frameset.Cloud.At(0, 0)
	test.That(t, v.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0.0)
}

func TestGetFramesHardError(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{frames: []framePair{{err: errors.New("device unplugged")}}}

	session, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	_, err = session.GetFrames(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unplugged")
	test.That(t, session.Close(), test.ShouldBeNil)
}

func TestCloseIdempotent(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{}
	session, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, session.Close(), test.ShouldBeNil)
	test.That(t, session.Close(), test.ShouldBeNil)
	test.That(t, driver.stopCount, test.ShouldEqual, 1)
}

func TestDeprojectPixelToPoint(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{}
	session, err := camera.Open(driver, camera.DefaultStreamConfig, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, session.Close(), test.ShouldBeNil)
	}()

	v := session.DeprojectPixelToPoint(image.Point{8, 3}, 1)
	test.That(t, v.X, test.ShouldAlmostEqual, 1.0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, v.Z, test.ShouldAlmostEqual, 1.0)
	test.That(t, session.DepthScale(), test.ShouldAlmostEqual, 0.001)
}

func TestOpenCalibrationOverride(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{}
	calibration := &transform.PinholeCameraModel{
		PinholeCameraIntrinsics: &transform.PinholeCameraIntrinsics{Width: 8, Height: 6, Fx: 8, Fy: 8, Ppx: 4, Ppy: 3},
	}
	session, err := camera.Open(driver, camera.DefaultStreamConfig, calibration, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, session.Close(), test.ShouldBeNil)
	}()

	// the doubled focal length halves the deprojected offset
	test.That(t, session.Intrinsics().Fx, test.ShouldAlmostEqual, 8.0)
	v := session.DeprojectPixelToPoint(image.Point{8, 3}, 1)
	test.That(t, v.X, test.ShouldAlmostEqual, 0.5)
}

func TestOpenCalibrationDistortion(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{frames: []framePair{goodPair()}}
	distortion, err := transform.NewBrownConrady([]float64{0.1})
	test.That(t, err, test.ShouldBeNil)
	calibration := &transform.PinholeCameraModel{
		PinholeCameraIntrinsics: driver.Intrinsics(),
		Distortion:              distortion,
	}
	session, err := camera.Open(driver, camera.DefaultStreamConfig, calibration, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, session.Close(), test.ShouldBeNil)
	}()

	// normalized x = 1 at the right edge, so k1 stretches it to 1.1
	v := session.DeprojectPixelToPoint(image.Point{8, 3}, 1)
	test.That(t, v.X, test.ShouldAlmostEqual, 1.1)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0.0)

	// the distorter reaches the point cloud too; the on-axis pixel is fixed
	frameset, err := session.GetFrames(context.Background())
	test.That(t, err, test.ShouldBeNil)
	p, _ := frameset.Cloud.At(4, 3)
	test.That(t, p.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, p.Z, test.ShouldAlmostEqual, 2.0)
}

func TestOpenInvalidCalibration(t *testing.T) {
	logger := golog.NewTestLogger(t)
	driver := &scriptedDriver{}
	calibration := &transform.PinholeCameraModel{
		PinholeCameraIntrinsics: &transform.PinholeCameraIntrinsics{Width: 8, Height: 6, Fx: -1, Fy: 4, Ppx: 4, Ppy: 3},
	}
	_, err := camera.Open(driver, camera.DefaultStreamConfig, calibration, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, driver.stopCount, test.ShouldEqual, 1)
}
