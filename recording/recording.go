package recording

import (
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/julianpalladino/football-tracking/types"
	"github.com/julianpalladino/football-tracking/utils"
)

// VideoSink writes annotated frames to a video file
type VideoSink struct {
	writer *gocv.VideoWriter
	path   string
	codec  string
	frames int
}

// OpenVideoSink creates the output video, trying the configured codecs in
// order until one is accepted
func OpenVideoSink(path string, width, height int, fps float64, config types.VideoConfig) (*VideoSink, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "invalid output resolution %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "invalid output frame rate %v", fps)
	}
	if err := utils.EnsureDir(path); err != nil {
		return nil, errors.Wrapf(err, "creating output directory for %s", path)
	}

	// Try different codecs for better compatibility
	var vw *gocv.VideoWriter
	var err error
	var usedCodec string

	for _, fourcc := range config.Codecs {
		vw, err = gocv.VideoWriterFile(path, fourcc, fps, width, height, true)
		if err == nil && vw.IsOpened() {
			usedCodec = fourcc
			break
		}
		if vw != nil {
			vw.Close()
		}
		if err == nil {
			err = errors.Errorf("codec %s not available", fourcc)
		}
	}

	if usedCodec == "" {
		return nil, errors.Errorf("could not create video writer with any codec: %v", err)
	}

	return &VideoSink{writer: vw, path: path, codec: usedCodec}, nil
}

// Write appends a frame to the video
func (s *VideoSink) Write(frame gocv.Mat) error {
	if err := s.writer.Write(frame); err != nil {
		return errors.Wrapf(err, "writing frame %d to %s", s.frames, s.path)
	}
	s.frames++
	return nil
}

// Codec returns the fourcc the writer was opened with
func (s *VideoSink) Codec() string {
	return s.codec
}

// Frames returns the number of frames written so far
func (s *VideoSink) Frames() int {
	return s.frames
}

// Close finalizes the video file
func (s *VideoSink) Close() error {
	if s.writer == nil {
		return nil
	}
	err := s.writer.Close()
	s.writer = nil
	if err != nil {
		return errors.Wrapf(err, "closing video writer %s", s.path)
	}
	return nil
}

// Discard closes the writer and removes the partial file
func (s *VideoSink) Discard() error {
	closeErr := s.Close()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing partial output %s", s.path)
	}
	return closeErr
}

// WriteSnapshot stores a single frame as an image file
func WriteSnapshot(path string, frame gocv.Mat) error {
	if err := utils.EnsureDir(path); err != nil {
		return errors.Wrapf(err, "creating snapshot directory for %s", path)
	}
	if ok := gocv.IMWrite(path, frame); !ok {
		return errors.Errorf("could not write snapshot %s", path)
	}
	return nil
}
