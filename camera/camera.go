// Package camera owns the session with the physical depth/color sensor and
// turns raw sensor output into aligned framesets with dense point clouds.
package camera

import (
	"context"

	"github.com/pkg/errors"

	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

// ErrNoDevice is returned by Open when no depth sensor is present. There is
// no degraded mode; callers treat this as fatal.
var ErrNoDevice = errors.New("no depth camera device found")

// StreamConfig fixes the synchronized depth+color streaming parameters for a
// session.
type StreamConfig struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	FrameRate int `json:"frame_rate"`
}

// DefaultStreamConfig matches the installation's capture settings.
var DefaultStreamConfig = StreamConfig{Width: 640, Height: 480, FrameRate: 30}

// DeviceInfo identifies the opened device for logging.
type DeviceInfo struct {
	Name            string
	SerialNumber    string
	FirmwareVersion string
}

// Driver is the narrow contract a sensor SDK must fulfill. Drivers deliver
// depth and color frames already resampled onto the same pixel grid, so a
// pixel index refers to the same physical point in both. All methods are
// called from a single goroutine.
type Driver interface {
	// Start opens the device and begins synchronized streaming. It must
	// fail fast when no device is present.
	Start(cfg StreamConfig) error

	// Info reports the opened device's identity.
	Info() DeviceInfo

	// Intrinsics returns the depth stream's calibration, fixed after Start.
	Intrinsics() *transform.PinholeCameraIntrinsics

	// DepthScale returns the sensor-unit to meters multiplier, fixed after
	// Start.
	DepthScale() float64

	// WaitForFrames blocks until the next synchronized, aligned frame pair
	// is available. A pair that failed to align may come back with
	// mismatched dimensions or nil planes; the session skips it.
	WaitForFrames(ctx context.Context) (*rimage.DepthMap, *rimage.Image, error)

	// Stop releases the device. Called at most once.
	Stop() error
}
