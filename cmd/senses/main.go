// Package main runs the capture-to-publish pipeline headless: it opens the
// camera session, starts the processor and polls the handoff on a display
// cadence, logging what the renderer would draw. The window/render engine is
// a separate collaborator.
package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/edaniels/golog"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/archimedes-exhibitions/artificial-senses/camera"
	"github.com/archimedes-exhibitions/artificial-senses/camera/fake"
	"github.com/archimedes-exhibitions/artificial-senses/config"
	"github.com/archimedes-exhibitions/artificial-senses/processor"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/segmentation"
	"github.com/archimedes-exhibitions/artificial-senses/transform"
)

var logger = golog.NewDevelopmentLogger("senses")

const (
	displayTick = 16 * time.Millisecond
	// stand-in detector threshold separating lit subjects from the dim
	// background of the installation space
	detectorLuminance = 80.0
)

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to JSON configuration"`
	Snapshot   string `flag:"snapshot,usage=write an annotated PNG of the last dataset on exit"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
	}
	return runPipeline(ctx, cfg, argsParsed.Snapshot, logger)
}

func runPipeline(ctx context.Context, cfg config.AppConfig, snapshotPath string, logger golog.Logger) (err error) {
	var calibration *transform.PinholeCameraModel
	if cfg.IntrinsicsPath != "" {
		calibration, err = transform.NewPinholeCameraModelFromJSONFile(cfg.IntrinsicsPath)
		if err != nil {
			return err
		}
	}
	session, err := camera.Open(&fake.Driver{}, cfg.Stream, calibration, logger)
	if err != nil {
		// no device is a startup precondition failure
		return err
	}
	defer func() {
		err = multierr.Combine(err, session.Close())
	}()

	frustum := transform.FrustumLines(session.Intrinsics(), cfg.FrustumDepths)
	logger.Infow("precomputed field-of-view wireframe", "segments", len(frustum))

	detector := segmentation.NewSimpleDetector(detectorLuminance, "person")
	bridge := segmentation.NewBridge(detector, cfg.IncludeLabels, logger)
	handoff := &processor.Handoff{}
	proc := processor.New(session, bridge, handoff, logger)
	if err := proc.Start(); err != nil {
		return err
	}
	defer proc.Stop()

	var current *processor.Dataset
	var frames int
	for {
		if !goutils.SelectContextOrWait(ctx, displayTick) {
			break
		}
		if err := proc.Err(); err != nil {
			return err
		}
		dataset, ok := handoff.TryTake()
		if !ok {
			// keep showing the previous dataset; before the first one the
			// renderer shows its initializing placeholder
			continue
		}
		current = dataset
		frames++
		if frames%60 == 1 {
			logCentroids(logger, dataset)
		}
	}

	if snapshotPath != "" && current != nil {
		if err := writeSnapshot(snapshotPath, current); err != nil {
			return err
		}
		logger.Infow("wrote snapshot", "path", snapshotPath)
	}
	return nil
}

func logCentroids(logger golog.Logger, dataset *processor.Dataset) {
	if len(dataset.Centroids) == 0 {
		logger.Infow("dataset", "points", dataset.Cloud.Size(), "centroids", 0)
		return
	}
	for _, c := range dataset.Centroids {
		logger.Infow("centroid",
			"x", c.X,
			"y", c.Y,
			"distance_mm", c.DistanceMM,
		)
	}
}

// writeSnapshot saves the segmented view with distance labels drawn at the
// centroids, the way the renderer presents them.
func writeSnapshot(path string, dataset *processor.Dataset) error {
	img := dataset.SegmentedImage
	if img == nil {
		return errors.New("dataset has no segmented image")
	}
	dc := gg.NewContextForImage(img.ToNRGBA())
	for _, c := range dataset.Centroids {
		if c.DistanceMM == 0 {
			// unknown distance, draw no label
			continue
		}
		// the segmented buffer is in display orientation, flip the anchor
		p := image.Point{c.X, img.Height() - 1 - c.Y}
		rimage.DrawString(dc, fmt.Sprintf("%dmm", c.DistanceMM), p, rimage.NewColor(255, 255, 255), 18)
	}
	return rimage.WriteImageToFile(path, dc.Image())
}
