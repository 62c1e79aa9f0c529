package capture

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/termcast/internal/shell"
)

type recordingCapturer struct {
	paths   []string
	windows []int
	failAt  int
}

func (r *recordingCapturer) Capture(_ context.Context, path string, windowID int) error {
	if r.failAt > 0 && len(r.paths)+1 == r.failAt {
		return errors.New("boom")
	}
	r.paths = append(r.paths, path)
	r.windows = append(r.windows, windowID)
	return nil
}

func TestSinkNumbersContiguously(t *testing.T) {
	rec := &recordingCapturer{}
	sink := NewSink("/tmp/frames", "%08d.xwd", 42, rec)
	ctx := context.Background()

	require.NoError(t, sink.Snap(ctx, 3))
	require.NoError(t, sink.Snap(ctx, 0))
	require.NoError(t, sink.Snap(ctx, 2))

	assert.Equal(t, 5, sink.Frames())
	want := []string{
		"/tmp/frames/00000000.xwd",
		"/tmp/frames/00000001.xwd",
		"/tmp/frames/00000002.xwd",
		"/tmp/frames/00000003.xwd",
		"/tmp/frames/00000004.xwd",
	}
	assert.Equal(t, want, rec.paths)
	for _, w := range rec.windows {
		assert.Equal(t, 42, w)
	}
}

func TestSinkAccessors(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, "%05d.xwd", 77, &recordingCapturer{})
	assert.Equal(t, dir, sink.Dir())
	assert.Equal(t, 77, sink.WindowID())
	assert.Equal(t, filepath.Join(dir, "%05d.xwd"), sink.InputPattern())
}

func TestSinkNegativeCountIsNoop(t *testing.T) {
	rec := &recordingCapturer{}
	sink := NewSink(t.TempDir(), "%08d.xwd", 1, rec)
	require.NoError(t, sink.Snap(context.Background(), -4))
	assert.Zero(t, sink.Frames())
	assert.Empty(t, rec.paths)
}

func TestSinkStopsOnFailure(t *testing.T) {
	rec := &recordingCapturer{failAt: 3}
	sink := NewSink(t.TempDir(), "%08d.xwd", 1, rec)
	err := sink.Snap(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 2")
	assert.Equal(t, 2, sink.Frames())
}

func TestFileNamesSortNumerically(t *testing.T) {
	sink := NewSink("d", "%08d.xwd", 1, &recordingCapturer{})
	seqs := []int{0, 1, 2, 9, 10, 11, 99, 100, 1000, 12345}
	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = filepath.Base(sink.Path(s))
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	assert.Equal(t, names, sorted)
	for i, name := range sorted {
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".xwd"))
		require.NoError(t, err)
		assert.Equal(t, seqs[i], n)
	}
}

func TestInputPattern(t *testing.T) {
	sink := NewSink("/tmp/s", "%08d.xwd", 1, &recordingCapturer{})
	assert.Equal(t, "/tmp/s/%08d.xwd", sink.InputPattern())
}

func TestParseWindowID(t *testing.T) {
	id, err := ParseWindowID([]string{"  6291462 ", ""})
	require.NoError(t, err)
	assert.Equal(t, 6291462, id)

	_, err = ParseWindowID([]string{""})
	assert.Error(t, err)
	_, err = ParseWindowID([]string{"window"})
	assert.Error(t, err)
}

type fakeRunner struct {
	res shell.Result
	err error
	got string
}

func (f *fakeRunner) Output(_ context.Context, cmdline string) (shell.Result, error) {
	f.got = cmdline
	return f.res, f.err
}

func (f *fakeRunner) Run(context.Context, string) error { return nil }

func TestXdotoolLocator(t *testing.T) {
	r := &fakeRunner{res: shell.Result{Lines: []string{"77", ""}}}
	id, err := (&XdotoolLocator{Runner: r}).ActiveWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 77, id)
	assert.Equal(t, "xdotool getactivewindow", r.got)
}

func TestXdotoolLocatorFailures(t *testing.T) {
	_, err := (&XdotoolLocator{Runner: &fakeRunner{err: shell.ErrCommandNotFound}}).ActiveWindow(context.Background())
	assert.ErrorIs(t, err, shell.ErrCommandNotFound)

	_, err = (&XdotoolLocator{Runner: &fakeRunner{res: shell.Result{ExitCode: 1, Stderr: "no display"}}}).ActiveWindow(context.Background())
	assert.ErrorContains(t, err, "no display")
}
