package tracking

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/julianpalladino/football-tracking/types"
	"github.com/julianpalladino/football-tracking/ui"
)

// TrackedObject follows one object through the video. It owns its tracker
// and counts the frames where the tracker found the object.
type TrackedObject struct {
	spec    types.TrackedObjectSpec
	box     types.BoundingBox
	tracker gocv.Tracker
	ui      types.UIConfig
	logger  *zap.SugaredLogger

	totalFrames      uint64
	successfulFrames uint64
}

// NewTrackedObject wraps an unarmed tracker for spec
func NewTrackedObject(spec types.TrackedObjectSpec, tracker gocv.Tracker, uiConfig types.UIConfig, logger *zap.SugaredLogger) *TrackedObject {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TrackedObject{
		spec:    spec,
		box:     spec.InitialBBox,
		tracker: tracker,
		ui:      uiConfig,
		logger:  logger,
	}
}

// Initialize clamps the initial box to the frame, annotates the first frame
// and arms the tracker on it
func (o *TrackedObject) Initialize(frame *gocv.Mat, frameWidth, frameHeight int) error {
	o.box = o.spec.InitialBBox.Clamp(frameWidth, frameHeight)
	o.totalFrames = 0
	o.successfulFrames = 0

	if err := ui.DrawTrackedObject(frame, o.box, o.spec.Label(), o.spec.Color, o.ui); err != nil {
		return errors.Wrapf(err, "annotating %s", o.spec.Label())
	}

	if !o.tracker.Init(*frame, o.box.Rect()) {
		return errors.Wrapf(types.ErrTrackerInitialization, "tracker for %s refused box %+v",
			o.spec.Label(), o.box)
	}
	return nil
}

// Update feeds the next frame to the tracker. On success the new box is
// adopted and drawn; on failure the frame is left untouched for this object.
func (o *TrackedObject) Update(frame *gocv.Mat) bool {
	box, ok := o.track(*frame)
	o.apply(frame, box, ok)
	return ok
}

// track queries the tracker without touching the frame or the counters
func (o *TrackedObject) track(frame gocv.Mat) (types.BoundingBox, bool) {
	rect, ok := o.tracker.Update(frame)
	return types.BoundingBoxFromRect(rect), ok
}

// apply records a tracker answer and annotates the frame on success
func (o *TrackedObject) apply(frame *gocv.Mat, box types.BoundingBox, ok bool) {
	o.totalFrames++
	if !ok {
		o.logger.Debugf("could not track %s at frame #%d", o.spec.Label(), o.totalFrames)
		return
	}

	o.box = box
	o.successfulFrames++
	if err := ui.DrawTrackedObject(frame, o.box, o.spec.Label(), o.spec.Color, o.ui); err != nil {
		o.logger.Warnf("error annotating %s at frame #%d: %v", o.spec.Label(), o.totalFrames, err)
	}
}

// Spec returns the object's description
func (o *TrackedObject) Spec() types.TrackedObjectSpec {
	return o.spec
}

// Box returns the last known box
func (o *TrackedObject) Box() types.BoundingBox {
	return o.box
}

// Stats returns a copy of the object's counters
func (o *TrackedObject) Stats() types.ObjectStats {
	return types.ObjectStats{
		Name:       o.spec.Name,
		ID:         o.spec.ID,
		Successful: o.successfulFrames,
		Total:      o.totalFrames,
	}
}

// SuccessRate returns the percentage of frames where the object was found
func (o *TrackedObject) SuccessRate() (float64, error) {
	rate, err := o.Stats().SuccessRate()
	if err != nil {
		return 0, errors.Wrapf(err, "success rate of %s", o.spec.Label())
	}
	return rate, nil
}

// Close releases the tracker
func (o *TrackedObject) Close() error {
	if o.tracker == nil {
		return nil
	}
	err := o.tracker.Close()
	o.tracker = nil
	return err
}
