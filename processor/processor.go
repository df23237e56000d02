package processor

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/archimedes-exhibitions/artificial-senses/camera"
	"github.com/archimedes-exhibitions/artificial-senses/rimage"
	"github.com/archimedes-exhibitions/artificial-senses/segmentation"
)

// State is the lifecycle phase of a Processor.
type State int

// Lifecycle phases, in order.
const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FrameSource supplies aligned framesets; in production this is the
// camera.Session. Only the processor's goroutine calls it between Start and
// Stop.
type FrameSource interface {
	GetFrames(ctx context.Context) (*camera.Frameset, error)
	DepthScale() float64
}

// Segmenter consolidates one frame's detections; in production this is the
// segmentation.Bridge.
type Segmenter interface {
	Process(ctx context.Context, color *rimage.Image, depth *rimage.DepthMap, depthScale float64) (*rimage.Image, []segmentation.Centroid)
}

// Processor repeatedly pulls a frame, runs segmentation, assembles a Dataset
// and publishes it, independent of the consumer's draw cadence. It is the
// single owner of the frame source and segmenter while running.
type Processor struct {
	source  FrameSource
	seg     Segmenter
	handoff *Handoff
	logger  golog.Logger

	mu        sync.Mutex
	state     State
	loopErr   error
	cancelCtx context.Context
	cancel    func()

	activeBackgroundWorkers sync.WaitGroup
}

// New wires a processor to its owned collaborators and the shared handoff.
func New(source FrameSource, seg Segmenter, handoff *Handoff, logger golog.Logger) *Processor {
	return &Processor{
		source:  source,
		seg:     seg,
		handoff: handoff,
		logger:  logger,
	}
}

// State returns the current lifecycle phase.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the error that terminated the loop, if any. A lost device
// propagates here as a fatal condition rather than being retried.
func (p *Processor) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopErr
}

// Start transitions Idle→Running and spawns the background loop.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return errors.Errorf("cannot start processor in state %q", p.state)
	}
	p.state = StateRunning
	cancelCtx, cancel := context.WithCancel(context.Background())
	p.cancelCtx, p.cancel = cancelCtx, cancel
	p.logger.Info("starting processor loop")

	p.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		for {
			if cancelCtx.Err() != nil {
				return
			}
			if err := p.processFrame(cancelCtx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				p.mu.Lock()
				p.loopErr = err
				p.mu.Unlock()
				p.logger.Errorw("processor loop terminated", "error", err)
				return
			}
		}
	}, p.activeBackgroundWorkers.Done)
	return nil
}

// Stop transitions Running→Stopping, then blocks until the loop has fully
// terminated (Stopping→Stopped). After it returns no frame is in flight, so
// the camera session can be closed safely.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.state = StateStopping
	cancel := p.cancel
	p.mu.Unlock()

	p.logger.Info("stopping processor loop")
	cancel()
	p.activeBackgroundWorkers.Wait()

	p.mu.Lock()
	p.state = StateStopped
	p.mu.Unlock()
}

func (p *Processor) processFrame(ctx context.Context) error {
	frameset, err := p.source.GetFrames(ctx)
	if err != nil {
		return err
	}
	segmented, centroids := p.seg.Process(ctx, frameset.Color, frameset.Depth, p.source.DepthScale())

	p.handoff.Publish(&Dataset{
		ColorImage:         frameset.Color.FlipV(),
		DepthPalettedImage: frameset.DepthPaletted.FlipV(),
		SegmentedImage:     segmented.FlipV(),
		Centroids:          centroids,
		Cloud:              frameset.Cloud,
	})
	return nil
}
