package tracking

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/julianpalladino/football-tracking/input"
	"github.com/julianpalladino/football-tracking/recording"
	"github.com/julianpalladino/football-tracking/report"
	"github.com/julianpalladino/football-tracking/types"
	"github.com/julianpalladino/football-tracking/ui"
	"github.com/julianpalladino/football-tracking/utils"
)

// FrameSource yields the frames of a pre-recorded video in order
type FrameSource interface {
	Read(dst *gocv.Mat) bool
	Width() int
	Height() int
	FPS() float64
	FrameCount() int
	Close() error
}

// FrameSink receives annotated frames in order
type FrameSink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// discarder is implemented by sinks able to drop a partial output
type discarder interface {
	Discard() error
}

// Dependencies are the collaborators a Session is built from
type Dependencies struct {
	OpenSource func(path string) (FrameSource, error)
	OpenSink   func(path string, width, height int, fps float64) (FrameSink, error)

	// NewTracker overrides the tracker built for the configured method
	NewTracker TrackerFactory

	Palette []color.RGBA
	UI      types.UIConfig
	Logger  *zap.SugaredLogger

	// Progress receives a progress bar when set
	Progress io.Writer
}

// DefaultDependencies reads and writes video files through gocv
func DefaultDependencies(video types.VideoConfig, logger *zap.SugaredLogger) Dependencies {
	return Dependencies{
		OpenSource: func(path string) (FrameSource, error) {
			// a nil *VideoSource must not reach the interface
			source, err := input.OpenVideo(path)
			if err != nil {
				return nil, err
			}
			return source, nil
		},
		OpenSink: func(path string, width, height int, fps float64) (FrameSink, error) {
			sink, err := recording.OpenVideoSink(path, width, height, fps, video)
			if err != nil {
				return nil, err
			}
			return sink, nil
		},
		Palette: ui.Palette,
		UI:      types.DefaultUIConfig(),
		Logger:  logger,
	}
}

type sessionState int

const (
	stateInitialized sessionState = iota
	stateRunning
	stateFinished
)

// Session tracks every configured object through one video. NewSession
// leaves it initialized; Run processes the remaining frames once.
type Session struct {
	cfg      types.TrackingConfig
	logger   *zap.SugaredLogger
	progress io.Writer
	state    sessionState

	source    FrameSource
	sink      FrameSink
	frame     gocv.Mat
	frameOpen bool

	width, height int
	fps           float64
	frameCount    int

	objects []*TrackedObject
}

// NewSession validates the configuration, opens the input video, arms one
// tracker per object on the first frame and opens the output video. Nothing
// is written if any tracker refuses its initial box.
func NewSession(cfg types.TrackingConfig, specs []types.TrackedObjectSpec, deps Dependencies) (_ *Session, err error) {
	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	newTracker := deps.NewTracker
	if newTracker == nil {
		newTracker = method.Factory()
	}

	if err := utils.ValidateVideoPath(cfg.InputPath, ".mp4"); err != nil {
		return nil, err
	}
	if len(specs) >= len(deps.Palette) {
		return nil, errors.Wrapf(types.ErrConfiguration,
			"insufficient number of colors for the objects to track: %d objects, %d colors",
			len(specs), len(deps.Palette))
	}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, errors.Wrapf(types.ErrConfiguration, "object %d has an empty name", i)
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Session{
		cfg:       cfg,
		logger:    logger,
		progress:  deps.Progress,
		frame:     gocv.NewMat(),
		frameOpen: true,
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.source, err = deps.OpenSource(cfg.InputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", cfg.InputPath)
	}
	s.width, s.height = s.source.Width(), s.source.Height()
	s.fps = s.source.FPS()
	s.frameCount = s.source.FrameCount()
	if s.width <= 0 || s.height <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "cannot read frame dimensions of %s", cfg.InputPath)
	}

	logger.Infof("Loading tracking session:")
	logger.Infof("  > Input file: %s", cfg.InputPath)
	logger.Infof("  > Output file: %s", cfg.OutputPath)
	logger.Infof("  > Tracking method: %s", method)
	logger.Infof("  > Number of objects: %d", len(specs))

	for i, spec := range specs {
		spec.Color = deps.Palette[i]
		s.objects = append(s.objects, NewTrackedObject(spec, newTracker(), deps.UI, logger))
	}

	if !s.source.Read(&s.frame) {
		return nil, errors.Wrapf(types.ErrConfiguration, "no frames in %s", cfg.InputPath)
	}
	for _, obj := range s.objects {
		if err := obj.Initialize(&s.frame, s.width, s.height); err != nil {
			return nil, err
		}
	}

	if cfg.SnapshotPath != "" {
		if err := recording.WriteSnapshot(cfg.SnapshotPath, s.frame); err != nil {
			logger.Warnf("snapshot not written: %v", err)
		}
	}

	s.sink, err = deps.OpenSink(cfg.OutputPath, s.width, s.height, s.fps)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", cfg.OutputPath)
	}

	s.state = stateInitialized
	return s, nil
}

// Run tracks the objects over the rest of the video, writes every frame to
// the output and returns the success rate of each object in input order.
// Source and sink are released when Run returns.
func (s *Session) Run() (rates []float64, err error) {
	if s.state != stateInitialized {
		return nil, errors.New("session already ran")
	}
	s.state = stateRunning
	defer func() {
		if err != nil {
			s.discard()
		}
		if cerr := s.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "releasing session")
		}
	}()

	iterations := s.frameCount - s.cfg.FrameMargin
	if iterations < 0 {
		iterations = 0
	}

	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions(iterations,
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription("tracking"),
			progressbar.OptionShowCount(),
		)
	}

	for i := 0; i < iterations; i++ {
		if !s.source.Read(&s.frame) {
			s.logger.Warnf("input ended after %d of %d frames", i, iterations)
			break
		}

		s.updateObjects()

		if err := s.sink.Write(s.frame); err != nil {
			return nil, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	s.state = stateFinished

	stats := s.Stats()
	for _, line := range report.Lines(stats) {
		s.logger.Info(line)
	}

	rates = make([]float64, 0, len(s.objects))
	for _, obj := range s.objects {
		rate, err := obj.SuccessRate()
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// updateObjects runs every tracker on the current frame. With several
// workers the trackers run concurrently on the unannotated frame and the
// boxes are drawn afterwards, in input order.
func (s *Session) updateObjects() {
	if s.cfg.Workers <= 1 || len(s.objects) < 2 {
		for _, obj := range s.objects {
			obj.Update(&s.frame)
		}
		return
	}

	type answer struct {
		box types.BoundingBox
		ok  bool
	}
	answers := make([]answer, len(s.objects))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, obj := range s.objects {
		g.Go(func() error {
			answers[i].box, answers[i].ok = obj.track(s.frame)
			return nil
		})
	}
	_ = g.Wait()

	for i, obj := range s.objects {
		obj.apply(&s.frame, answers[i].box, answers[i].ok)
	}
}

// Objects returns the tracked objects in input order
func (s *Session) Objects() []*TrackedObject {
	return s.objects
}

// Stats returns the counters of every object in input order
func (s *Session) Stats() []types.ObjectStats {
	stats := make([]types.ObjectStats, 0, len(s.objects))
	for _, obj := range s.objects {
		stats = append(stats, obj.Stats())
	}
	return stats
}

// FrameSize returns the input resolution
func (s *Session) FrameSize() (int, int) {
	return s.width, s.height
}

// FrameCount returns the number of frames reported by the input
func (s *Session) FrameCount() int {
	return s.frameCount
}

func (s *Session) discard() {
	if d, ok := s.sink.(discarder); ok {
		if err := d.Discard(); err != nil {
			s.logger.Warnf("could not discard partial output: %v", err)
		}
		s.sink = nil
	}
}

// Close releases the input, the output and the trackers. It is safe to call
// more than once.
func (s *Session) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if s.source != nil {
		keep(s.source.Close())
		s.source = nil
	}
	if s.sink != nil {
		keep(s.sink.Close())
		s.sink = nil
	}
	for _, obj := range s.objects {
		keep(obj.Close())
	}
	if s.frameOpen {
		keep(s.frame.Close())
		s.frameOpen = false
	}
	return first
}
