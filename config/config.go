// Package config loads the installation's startup configuration.
package config

import (
	"encoding/json"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/archimedes-exhibitions/artificial-senses/camera"
	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

// AppConfig fixes everything the pipeline needs at startup. There is no
// dynamic reload; a changed file requires a restart.
type AppConfig struct {
	Stream camera.StreamConfig `json:"stream"`
	// IncludeLabels is the allow-list of object labels the segmentation
	// bridge keeps.
	IncludeLabels []string `json:"include_labels"`
	// FrustumDepths are the sample depths in meters of the field-of-view
	// wireframe.
	FrustumDepths []float64 `json:"frustum_depths"`
	// IntrinsicsPath optionally points at a calibration file (intrinsics
	// plus distortion model) that replaces the driver-reported calibration
	// for the whole session.
	IntrinsicsPath string `json:"intrinsics_path,omitempty"`
}

// Default returns the installation's stock configuration.
func Default() AppConfig {
	return AppConfig{
		Stream:        camera.DefaultStreamConfig,
		IncludeLabels: []string{"person"},
		FrustumDepths: transform.DefaultFrustumDepths,
	}
}

// Read loads a JSON config file, substituting ${ENV} references first.
// Missing fields keep their defaults.
func Read(path string) (AppConfig, error) {
	cfg := Default()
	data, err := envsubst.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "error reading config %q", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "error parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %q", path)
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *AppConfig) Validate() error {
	if c.Stream.Width <= 0 || c.Stream.Height <= 0 {
		return errors.Errorf("invalid stream size (%d, %d)", c.Stream.Width, c.Stream.Height)
	}
	if c.Stream.FrameRate <= 0 {
		return errors.Errorf("invalid frame rate %d", c.Stream.FrameRate)
	}
	for _, d := range c.FrustumDepths {
		if d <= 0 {
			return errors.Errorf("invalid frustum depth %f", d)
		}
	}
	return nil
}
