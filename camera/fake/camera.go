// Package fake provides a deterministic synthetic sensor driver for tests and
// for running the pipeline without hardware.
package fake

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/archimedes-exhibitions/artificial-senses/camera"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

// DepthScale matches the common 1mm sensor unit of commodity depth cameras.
const DepthScale = 0.001

// Scene parameters: a depth ramp sweeping away from the camera with a raised
// block in the middle, the kind of shape segmentation demos detect.
const (
	rampNear   = rimage.Depth(500)
	rampFar    = rimage.Depth(3000)
	blockDepth = rimage.Depth(1500)
)

// Driver is a synthetic camera.Driver with a static scene. The frame pacing
// honors the configured frame rate so the blocking semantics of a real sensor
// hold in demos; tests can set Unpaced to capture as fast as possible.
type Driver struct {
	Unpaced bool

	cfg     camera.StreamConfig
	started bool
}

// Start begins synthesizing frames at the configured size and rate.
func (d *Driver) Start(cfg camera.StreamConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FrameRate <= 0 {
		return errors.Errorf("invalid stream config %#v", cfg)
	}
	d.cfg = cfg
	d.started = true
	return nil
}

// Info reports a synthetic identity.
func (d *Driver) Info() camera.DeviceInfo {
	return camera.DeviceInfo{
		Name:            "fake-depth-camera",
		SerialNumber:    "0000000000000000",
		FirmwareVersion: "0.0.0",
	}
}

// Intrinsics returns a plausible pinhole calibration centered on the image.
func (d *Driver) Intrinsics() *transform.PinholeCameraIntrinsics {
	return &transform.PinholeCameraIntrinsics{
		Width:  d.cfg.Width,
		Height: d.cfg.Height,
		Fx:     525.0,
		Fy:     525.0,
		Ppx:    float64(d.cfg.Width) / 2,
		Ppy:    float64(d.cfg.Height) / 2,
	}
}

// DepthScale returns the synthetic sensor-unit to meters multiplier.
func (d *Driver) DepthScale() float64 { return DepthScale }

// BlockBounds returns the pixel rectangle of the raised block, for tests.
func (d *Driver) BlockBounds() image.Rectangle {
	w, h := d.cfg.Width, d.cfg.Height
	return image.Rect(w/3, h/3, 2*w/3, 2*h/3)
}

// WaitForFrames synthesizes the next aligned frame pair.
func (d *Driver) WaitForFrames(ctx context.Context) (*rimage.DepthMap, *rimage.Image, error) {
	if !d.started {
		return nil, nil, errors.New("fake driver not started")
	}
	if !d.Unpaced {
		interval := time.Second / time.Duration(d.cfg.FrameRate)
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(interval):
		}
	} else if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	w, h := d.cfg.Width, d.cfg.Height
	depth := rimage.NewEmptyDepthMap(w, h)
	color := rimage.NewImage(w, h)
	block := d.BlockBounds()
	span := float64(rampFar - rampNear)
	for y := 0; y < h; y++ {
		rowDepth := rampNear + rimage.Depth(span*float64(y)/float64(h))
		for x := 0; x < w; x++ {
			if (image.Point{x, y}).In(block) {
				depth.Set(x, y, blockDepth)
				color.SetXY(x, y, rimage.NewColor(200, 60, 60))
			} else {
				depth.Set(x, y, rowDepth)
				color.SetXY(x, y, rimage.NewColor(60, 60, 60))
			}
		}
	}
	return depth, color, nil
}

// Stop ends synthesis.
func (d *Driver) Stop() error {
	d.started = false
	return nil
}
