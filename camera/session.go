package camera

import (
	"context"
	"image"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

// Session owns a started driver for its whole lifetime. Exactly one goroutine
// may call GetFrames; Close may be called from anywhere, any number of times.
type Session struct {
	driver     Driver
	model      *transform.PinholeCameraModel
	depthScale float64
	logger     golog.Logger

	mu     sync.Mutex
	closed bool
}

// Open starts streaming on the driver and returns the owning session. A
// missing device surfaces as ErrNoDevice, which is a startup precondition
// failure, not a recoverable error. A non-nil calibration overrides the
// driver-reported intrinsics and supplies the distortion model; nil uses the
// driver's intrinsics with no distortion.
func Open(driver Driver, cfg StreamConfig, calibration *transform.PinholeCameraModel, logger golog.Logger) (*Session, error) {
	if err := driver.Start(cfg); err != nil {
		return nil, errors.Wrap(ErrNoDevice, err.Error())
	}
	model := calibration
	if model == nil {
		model = &transform.PinholeCameraModel{PinholeCameraIntrinsics: driver.Intrinsics()}
	}
	if err := model.CheckValid(); err != nil {
		return nil, multierr.Combine(err, driver.Stop())
	}
	info := driver.Info()
	logger.Infow("opened camera",
		"name", info.Name,
		"serial", info.SerialNumber,
		"firmware", info.FirmwareVersion,
		"width", model.Width,
		"height", model.Height,
		"depth_scale", driver.DepthScale(),
	)
	return &Session{
		driver:     driver,
		model:      model,
		depthScale: driver.DepthScale(),
		logger:     logger,
	}, nil
}

// Intrinsics returns the session's calibration.
func (s *Session) Intrinsics() *transform.PinholeCameraIntrinsics {
	return s.model.PinholeCameraIntrinsics
}

// DepthScale returns the sensor-unit to meters multiplier for this session.
func (s *Session) DepthScale() float64 {
	return s.depthScale
}

// DeprojectPixelToPoint maps a pixel plus a depth in meters to a 3D point
// using this session's calibration, distortion-corrected when the model
// carries a distorter.
func (s *Session) DeprojectPixelToPoint(p image.Point, depthMeters float64) r3.Vector {
	return s.model.ImagePointTo3DPoint(p, depthMeters)
}

// GetFrames blocks until the next usable synchronized frame pair, builds the
// false-color depth view and the dense point cloud, and returns the frameset.
// Pairs that failed to align are dropped and the wait resumes; only hard
// driver failures surface as errors.
func (s *Session) GetFrames(ctx context.Context) (*Frameset, error) {
	for {
		depth, color, err := s.driver.WaitForFrames(ctx)
		if err != nil {
			return nil, err
		}
		if depth == nil || color == nil || depth.Bounds() != color.Bounds() {
			s.logger.Debug("dropping unaligned frame pair")
			continue
		}

		paletted := depth.ToPrettyPicture(0, 0)
		cloud, err := s.model.DepthMapToPointCloud(depth, s.depthScale, paletted)
		if err != nil {
			return nil, err
		}
		return &Frameset{
			Depth:         depth,
			Color:         color,
			DepthPaletted: paletted,
			Cloud:         cloud,
		}, nil
	}
}

// Close releases the sensor session. Safe to call more than once; only the
// first call stops the driver.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.driver.Stop()
}
