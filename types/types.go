package types

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// TrackedObjectSpec describes one object to follow, as read from the
// initial conditions file
type TrackedObjectSpec struct {
	Name        string
	ID          int
	InitialBBox BoundingBox
	Color       color.RGBA
}

// Label returns the text drawn next to the object's box
func (s TrackedObjectSpec) Label() string {
	return fmt.Sprintf("%s #%d", s.Name, s.ID)
}

// ObjectStats holds the running counters of a tracked object
type ObjectStats struct {
	Name       string
	ID         int
	Successful uint64
	Total      uint64
}

// SuccessRate returns the percentage of processed frames where the object
// was found. It fails with ErrNoFramesProcessed before the first update.
func (s ObjectStats) SuccessRate() (float64, error) {
	if s.Total == 0 {
		return 0, ErrNoFramesProcessed
	}
	return float64(s.Successful) / float64(s.Total) * 100, nil
}

// TrackingConfig holds the settings of one tracking session
type TrackingConfig struct {
	InputPath      string
	ConditionsPath string
	OutputPath     string
	Method         string

	// FrameMargin is the number of frames skipped at the end of the input,
	// decoders tend to over-report the frame count
	FrameMargin int

	// SnapshotPath receives the annotated first frame when set
	SnapshotPath string

	// Workers > 1 updates the objects of a frame concurrently
	Workers int

	Verbose bool
}

// DefaultTrackingConfig returns the default tracking configuration
func DefaultTrackingConfig() TrackingConfig {
	return TrackingConfig{
		Method:      "csrt",
		FrameMargin: 5,
		Workers:     1,
		Verbose:     true,
	}
}

// VideoConfig holds video output configuration
type VideoConfig struct {
	Codecs    []string
	Extension string
}

// DefaultVideoConfig returns the default video configuration
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		Codecs:    []string{"mp4v", "avc1", "H264", "x264"},
		Extension: ".mp4",
	}
}

// UIConfig holds annotation drawing constants
type UIConfig struct {
	BoxThickness    int
	LabelFont       gocv.HersheyFont
	LabelFontScale  float64
	LabelThickness  int
	LabelPadding    int
	LabelOffset     image.Point
	LabelBackground color.RGBA
	LabelText       color.RGBA
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		BoxThickness:    2,
		LabelFont:       gocv.FontHersheyPlain,
		LabelFontScale:  1.5,
		LabelThickness:  1,
		LabelPadding:    5,
		LabelOffset:     image.Pt(-5, -5),
		LabelBackground: color.RGBA{R: 220, G: 220, B: 220},
		LabelText:       color.RGBA{},
	}
}
