package recording

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/julianpalladino/football-tracking/input"
	"github.com/julianpalladino/football-tracking/types"
)

// Convert re-encodes the video at src into dst using the configured codecs,
// e.g. to turn mkv recordings into mp4 files the tracker accepts. It returns
// the number of frames written.
func Convert(src, dst string, config types.VideoConfig) (int, error) {
	source, err := input.OpenVideo(src)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	sink, err := OpenVideoSink(dst, source.Width(), source.Height(), source.FPS(), config)
	if err != nil {
		return 0, err
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for source.Read(&frame) {
		if err := sink.Write(frame); err != nil {
			_ = sink.Discard()
			return 0, err
		}
	}

	if err := sink.Close(); err != nil {
		return 0, err
	}
	if sink.Frames() == 0 {
		_ = sink.Discard()
		return 0, errors.Errorf("no frames decoded from %s", src)
	}
	return sink.Frames(), nil
}
