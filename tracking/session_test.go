package tracking

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/julianpalladino/football-tracking/types"
)

var testPalette = []color.RGBA{
	{R: 255, G: 56, B: 56},
	{R: 72, G: 249, B: 10},
	{R: 0, G: 194, B: 255},
	{R: 255, G: 157, B: 151},
}

type harness struct {
	cfg      types.TrackingConfig
	deps     Dependencies
	source   *fakeSource
	sink     *fakeSink
	trackers *stubFactory

	sinkOpened bool
}

func newHarness(t *testing.T, frames int, succeed func(int) bool) *harness {
	t.Helper()

	h := &harness{
		source:   &fakeSource{width: 100, height: 100, fps: 25, frames: frames},
		sink:     &fakeSink{},
		trackers: &stubFactory{succeed: succeed},
	}
	t.Cleanup(h.sink.release)

	h.cfg = types.DefaultTrackingConfig()
	h.cfg.InputPath = "synthetic.mp4"
	h.cfg.OutputPath = "annotated.mp4"
	h.cfg.Method = "kcf"

	h.deps = Dependencies{
		OpenSource: func(path string) (FrameSource, error) {
			return h.source, nil
		},
		OpenSink: func(path string, width, height int, fps float64) (FrameSink, error) {
			h.sinkOpened = true
			h.sink.width, h.sink.height, h.sink.fps = width, height, fps
			return h.sink, nil
		},
		NewTracker: h.trackers.New,
		Palette:    testPalette,
		UI:         types.DefaultUIConfig(),
		Logger:     zaptest.NewLogger(t).Sugar(),
	}
	return h
}

func player(id int, x, y int) types.TrackedObjectSpec {
	return types.TrackedObjectSpec{Name: "player", ID: id, InitialBBox: types.NewBoundingBox(x, y, 20, 20)}
}

func TestSessionSingleObject(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)
	assert.Equal(t, 10, session.FrameCount())

	rates, err := session.Run()
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, rates)

	stats := session.Stats()
	assert.Equal(t, []types.ObjectStats{{Name: "player", ID: 1, Successful: 5, Total: 5}}, stats)

	require.Len(t, h.sink.frames, 5)
	assert.Equal(t, 100, h.sink.width)
	assert.Equal(t, 100, h.sink.height)
	assert.Equal(t, 25.0, h.sink.fps)
	for i, frame := range h.sink.frames {
		assert.Equal(t, testPalette[0], pixel(frame, 20, 10), "frame %d", i)
		assert.Equal(t, testPalette[0], pixel(frame, 20, 30), "frame %d", i)
		assert.Equal(t, color.RGBA{}, pixel(frame, 20, 20), "frame %d", i)
	}

	assert.True(t, h.source.closed)
	assert.True(t, h.sink.closed)
	assert.False(t, h.sink.discarded)
	require.Len(t, h.trackers.built, 1)
	assert.True(t, h.trackers.built[0].closed)
}

func TestSessionAlternatingTracker(t *testing.T) {
	h := newHarness(t, 10, alternate)

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	rates, err := session.Run()
	require.NoError(t, err)
	assert.Equal(t, []float64{60}, rates)
	assert.Equal(t, uint64(3), session.Stats()[0].Successful)

	// only the frames where the tracker answered carry the box
	require.Len(t, h.sink.frames, 5)
	for i, frame := range h.sink.frames {
		want := color.RGBA{}
		if i%2 == 0 {
			want = testPalette[0]
		}
		assert.Equal(t, want, pixel(frame, 20, 30), "frame %d", i)
	}
}

func TestSessionAlwaysFailing(t *testing.T) {
	h := newHarness(t, 10, alwaysFail)

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	rates, err := session.Run()
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, rates)
	assert.Len(t, h.sink.frames, 5)
}

func TestSessionFrameMargin(t *testing.T) {
	h := newHarness(t, 20, alwaysSucceed)

	specs := []types.TrackedObjectSpec{player(1, 10, 10), player(2, 60, 60)}
	session, err := NewSession(h.cfg, specs, h.deps)
	require.NoError(t, err)

	_, err = session.Run()
	require.NoError(t, err)

	for _, s := range session.Stats() {
		assert.Equal(t, uint64(15), s.Total)
	}
	assert.Len(t, h.sink.frames, 15)
	assert.Equal(t, 16, h.source.read)
}

func TestSessionAssignsPaletteInOrder(t *testing.T) {
	h := newHarness(t, 8, alwaysSucceed)

	specs := []types.TrackedObjectSpec{player(1, 10, 10), player(2, 60, 60)}
	session, err := NewSession(h.cfg, specs, h.deps)
	require.NoError(t, err)
	defer session.Close()

	objects := session.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, testPalette[0], objects[0].Spec().Color)
	assert.Equal(t, testPalette[1], objects[1].Spec().Color)
}

func TestSessionPaletteTooSmall(t *testing.T) {
	specs := []types.TrackedObjectSpec{player(1, 10, 10), player(2, 60, 60)}

	h := newHarness(t, 10, alwaysSucceed)
	h.deps.Palette = testPalette[:2]
	_, err := NewSession(h.cfg, specs, h.deps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Contains(t, err.Error(), "insufficient number of colors")
	assert.False(t, h.sinkOpened)

	h = newHarness(t, 10, alwaysSucceed)
	h.deps.Palette = testPalette[:3]
	session, err := NewSession(h.cfg, specs, h.deps)
	require.NoError(t, err)
	assert.NoError(t, session.Close())
}

func TestSessionUnknownMethod(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.cfg.Method = "not_a_real_method"

	_, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Contains(t, err.Error(), "csrt, kcf, mil")
}

func TestSessionRejectsNonMP4Input(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.cfg.InputPath = "synthetic.avi"

	_, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

func TestSessionMissingInputWithDefaultDependencies(t *testing.T) {
	cfg := types.DefaultTrackingConfig()
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.mp4")
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.mp4")

	deps := DefaultDependencies(types.DefaultVideoConfig(), zaptest.NewLogger(t).Sugar())

	var err error
	require.NotPanics(t, func() {
		_, err = NewSession(cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, deps)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	_, err = os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultDependenciesSinkFailure(t *testing.T) {
	deps := DefaultDependencies(types.DefaultVideoConfig(), nil)

	sink, err := deps.OpenSink(filepath.Join(t.TempDir(), "out.mp4"), 0, 0, 25)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.True(t, sink == nil, "got %#v", sink)
}

func TestSessionEmptyInput(t *testing.T) {
	h := newHarness(t, 0, alwaysSucceed)

	_, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.True(t, h.source.closed)
	assert.False(t, h.sinkOpened)
}

func TestSessionTrackerRefusesInitialBox(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.trackers.refuseInit = true

	specs := []types.TrackedObjectSpec{player(1, 10, 10), player(2, 60, 60)}
	_, err := NewSession(h.cfg, specs, h.deps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTrackerInitialization))

	assert.False(t, h.sinkOpened)
	assert.True(t, h.source.closed)
	for _, tr := range h.trackers.built {
		assert.True(t, tr.closed)
	}
}

func TestSessionTooShortForMargin(t *testing.T) {
	h := newHarness(t, 5, alwaysSucceed)

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	_, err = session.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNoFramesProcessed))
	assert.Empty(t, h.sink.frames)
	assert.True(t, h.sink.discarded)
	assert.Equal(t, []types.ObjectStats{{Name: "player", ID: 1}}, session.Stats())
}

func TestSessionInputEndsEarly(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.source.reported = 50

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	rates, err := session.Run()
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, rates)
	assert.Equal(t, uint64(9), session.Stats()[0].Total)
	assert.Len(t, h.sink.frames, 9)
}

func TestSessionWorkersMatchSequential(t *testing.T) {
	specs := []types.TrackedObjectSpec{player(1, 5, 5), player(2, 40, 40), player(3, 70, 70)}

	run := func(workers int) []types.ObjectStats {
		h := newHarness(t, 16, alternate)
		h.cfg.Workers = workers
		session, err := NewSession(h.cfg, specs, h.deps)
		require.NoError(t, err)
		_, err = session.Run()
		require.NoError(t, err)
		return session.Stats()
	}

	sequential := run(1)
	parallel := run(3)
	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Errorf("parallel stats mismatch (-sequential +parallel):\n%s", diff)
	}
	assert.Equal(t, uint64(6), parallel[0].Successful)
	assert.Equal(t, uint64(11), parallel[2].Total)
}

func TestSessionRunsOnce(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	_, err = session.Run()
	require.NoError(t, err)
	_, err = session.Run()
	assert.Error(t, err)
	assert.Len(t, h.sink.frames, 5)
}

func TestSessionDiscardsOutputOnWriteError(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.sink.failAt = 3

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	_, err = session.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, h.sink.discarded)
	assert.True(t, h.source.closed)
}

func TestSessionSnapshotAndProgress(t *testing.T) {
	h := newHarness(t, 10, alwaysSucceed)
	h.cfg.SnapshotPath = filepath.Join(t.TempDir(), "first.png")
	var progress bytes.Buffer
	h.deps.Progress = &progress

	session, err := NewSession(h.cfg, []types.TrackedObjectSpec{player(1, 10, 10)}, h.deps)
	require.NoError(t, err)

	_, err = os.Stat(h.cfg.SnapshotPath)
	require.NoError(t, err)

	_, err = session.Run()
	require.NoError(t, err)
	assert.Contains(t, progress.String(), "tracking")
}
