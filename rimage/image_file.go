package rimage

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// WriteImageToFile writes an image to the given path, chosen by extension.
// Only PNG is supported; the pipeline's buffers carry alpha.
func WriteImageToFile(path string, img image.Image) (err error) {
	if filepath.Ext(path) != ".png" {
		return errors.Errorf("rimage: unsupported image file extension %q", filepath.Ext(path))
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return png.Encode(f, img)
}

// ReadImageFromFile reads a PNG image from the given path.
func ReadImageFromFile(path string) (image.Image, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %q", path)
	}
	return img, nil
}
