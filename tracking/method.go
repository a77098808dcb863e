package tracking

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/julianpalladino/football-tracking/types"
)

// Method names one of the single object tracking algorithms
type Method string

const (
	MethodMIL  Method = "mil"
	MethodKCF  Method = "kcf"
	MethodCSRT Method = "csrt"
)

// TrackerFactory builds a fresh, unarmed tracker for one object
type TrackerFactory func() gocv.Tracker

var methodFactories = map[Method]TrackerFactory{
	MethodMIL:  gocv.NewTrackerMIL,
	MethodKCF:  contrib.NewTrackerKCF,
	MethodCSRT: contrib.NewTrackerCSRT,
}

// Methods returns the valid method names, sorted
func Methods() []string {
	names := make([]string, 0, len(methodFactories))
	for m := range methodFactories {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// ParseMethod resolves a method name. Unknown names fail with
// ErrConfiguration listing the valid options.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := methodFactories[m]; !ok {
		return "", errors.Wrapf(types.ErrConfiguration, "tracker %q not recognized, options: %s",
			name, strings.Join(Methods(), ", "))
	}
	return m, nil
}

// NewTracker builds a tracker for the method
func (m Method) NewTracker() gocv.Tracker {
	return methodFactories[m]()
}

// Factory returns the constructor for the method
func (m Method) Factory() TrackerFactory {
	return methodFactories[m]
}
