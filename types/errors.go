package types

import "github.com/pkg/errors"

var (
	// ErrConfiguration is returned for invalid input detected before any
	// frame is processed: unknown methods, malformed records, too many
	// objects, bad paths
	ErrConfiguration = errors.New("configuration error")

	// ErrTrackerInitialization is returned when a tracker refuses the
	// initial bounding box
	ErrTrackerInitialization = errors.New("tracker initialization error")

	// ErrNoFramesProcessed is returned when a success rate is requested
	// before any frame was tracked
	ErrNoFramesProcessed = errors.New("no frames processed")
)
