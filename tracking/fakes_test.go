package tracking

import (
	"image"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

func alwaysSucceed(int) bool { return true }
func alwaysFail(int) bool    { return false }

// alternate succeeds on the 1st, 3rd, 5th... update
func alternate(call int) bool { return call%2 == 1 }

// stubTracker answers Update according to succeed. It reports the box it
// was armed with unless candidate is set.
type stubTracker struct {
	refuseInit bool
	succeed    func(call int) bool
	candidate  image.Rectangle

	mu     sync.Mutex
	box    image.Rectangle
	calls  int
	closed bool
}

func (s *stubTracker) Init(frame gocv.Mat, box image.Rectangle) bool {
	s.box = box
	return !s.refuseInit
}

func (s *stubTracker) Update(frame gocv.Mat) (image.Rectangle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if !s.succeed(s.calls) {
		return image.Rectangle{}, false
	}
	if !s.candidate.Empty() {
		return s.candidate, true
	}
	return s.box, true
}

func (s *stubTracker) Close() error {
	s.closed = true
	return nil
}

// stubFactory hands out stub trackers and keeps them for inspection
type stubFactory struct {
	refuseInit bool
	succeed    func(call int) bool
	built      []*stubTracker
}

func (f *stubFactory) New() gocv.Tracker {
	tr := &stubTracker{refuseInit: f.refuseInit, succeed: f.succeed}
	f.built = append(f.built, tr)
	return tr
}

// fakeSource produces black frames. FrameCount may over-report the number
// of frames actually available.
type fakeSource struct {
	width, height int
	fps           float64
	frames        int
	reported      int

	read   int
	closed bool
}

func (f *fakeSource) Read(dst *gocv.Mat) bool {
	if f.read >= f.frames {
		return false
	}
	f.read++
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), f.height, f.width, gocv.MatTypeCV8UC3)
	defer m.Close()
	m.CopyTo(dst)
	return true
}

func (f *fakeSource) Width() int   { return f.width }
func (f *fakeSource) Height() int  { return f.height }
func (f *fakeSource) FPS() float64 { return f.fps }

func (f *fakeSource) FrameCount() int {
	if f.reported > 0 {
		return f.reported
	}
	return f.frames
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeSink keeps a copy of every written frame
type fakeSink struct {
	width, height int
	fps           float64
	failAt        int

	frames    []gocv.Mat
	closed    bool
	discarded bool
}

func (f *fakeSink) Write(frame gocv.Mat) error {
	if f.failAt > 0 && len(f.frames)+1 == f.failAt {
		return errors.New("disk full")
	}
	f.frames = append(f.frames, frame.Clone())
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSink) Discard() error {
	f.discarded = true
	return f.Close()
}

func (f *fakeSink) release() {
	for _, m := range f.frames {
		m.Close()
	}
}
