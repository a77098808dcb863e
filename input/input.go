package input

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/julianpalladino/football-tracking/types"
)

// VideoSource reads frames sequentially from a video file
type VideoSource struct {
	capture *gocv.VideoCapture
	path    string
}

// OpenVideo opens the video file at path for reading
func OpenVideo(path string) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, errors.Wrapf(types.ErrConfiguration, "cannot open video %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(types.ErrConfiguration, "cannot open video %s", path)
	}
	return &VideoSource{capture: capture, path: path}, nil
}

// Read decodes the next frame into dst. It returns false at end of stream.
func (v *VideoSource) Read(dst *gocv.Mat) bool {
	if ok := v.capture.Read(dst); !ok || dst.Empty() {
		return false
	}
	return true
}

// Width returns the frame width in pixels
func (v *VideoSource) Width() int {
	return int(v.capture.Get(gocv.VideoCaptureFrameWidth))
}

// Height returns the frame height in pixels
func (v *VideoSource) Height() int {
	return int(v.capture.Get(gocv.VideoCaptureFrameHeight))
}

// FPS returns the frame rate reported by the container
func (v *VideoSource) FPS() float64 {
	return v.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount returns the number of frames reported by the container
func (v *VideoSource) FrameCount() int {
	return int(v.capture.Get(gocv.VideoCaptureFrameCount))
}

// Path returns the file the source reads from
func (v *VideoSource) Path() string {
	return v.path
}

// Close releases the underlying capture
func (v *VideoSource) Close() error {
	return v.capture.Close()
}
