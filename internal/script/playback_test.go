package script

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/termcast/internal/capture"
	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/output"
	"github.com/ivlev/termcast/internal/shell"
)

type frameLog struct {
	paths []string
}

func (f *frameLog) Capture(_ context.Context, path string, _ int) error {
	f.paths = append(f.paths, path)
	return nil
}

type stubShell struct {
	runs []string
}

func (s *stubShell) Output(_ context.Context, cmdline string) (shell.Result, error) {
	return shell.Result{}, fmt.Errorf("%w: %s", shell.ErrCommandNotFound, cmdline)
}

func (s *stubShell) Run(_ context.Context, cmdline string) error {
	s.runs = append(s.runs, cmdline)
	return nil
}

type encodeLog struct {
	calls  int
	frames int
	fps    int
	sink   *capture.Sink
}

func (e *encodeLog) Encode(_ context.Context, _ string, fps int, _ string) error {
	e.calls++
	e.fps = fps
	e.frames = e.sink.Frames()
	return nil
}

type minRand struct{}

func (minRand) IntRange(lo, _ int) int { return lo }

type playback struct {
	frames *frameLog
	shell  *stubShell
	enc    *encodeLog
	sink   *capture.Sink
	out    *bytes.Buffer
	driver *output.Driver
}

func newPlayback(t *testing.T, fps int, rnd output.Rand) *playback {
	t.Helper()
	p := &playback{frames: &frameLog{}, shell: &stubShell{}, out: &bytes.Buffer{}}
	p.sink = capture.NewSink(t.TempDir(), "%08d.xwd", 1, p.frames)
	p.enc = &encodeLog{sink: p.sink}
	p.driver = output.New(output.Options{
		Out:         p.out,
		Sink:        p.sink,
		Shell:       p.shell,
		Encoder:     p.enc,
		Rand:        rnd,
		Prompt:      "~ > ",
		FrameRate:   fps,
		Speed:       config.DefaultSpeed(),
		OutputVideo: "demo.mkv",
	})
	return p
}

func TestPlaybackClearWaitPrompt(t *testing.T) {
	p := newPlayback(t, 10, minRand{})
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader("% clear\n% wait 1\n$ ls\n")))

	assert.Equal(t, []string{"clear"}, p.shell.runs)
	// wait 10, prompt 1, 'l' 2, 's' 2, '\n' 5, line completion 10
	assert.Equal(t, 30, p.sink.Frames())
	assert.Equal(t, "~ > ls\n", p.out.String())
	assert.Equal(t, 1, p.enc.calls)
	assert.Equal(t, 30, p.enc.frames)
	assert.Equal(t, 10, p.enc.fps)
}

func TestPlaybackDegenerateSpeed(t *testing.T) {
	p := newPlayback(t, 25, output.NewRand(99))
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader("% speed 1 1 1 1\n$ ab\n")))
	// prompt 1, 'a' 1, 'b' 1, '\n' 1, line completion 1
	assert.Equal(t, 5, p.sink.Frames())
	assert.Equal(t, 1, p.enc.calls)
}

func TestPlaybackSnapRoundTrip(t *testing.T) {
	const n = 12
	p := newPlayback(t, 25, minRand{})
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader(strings.Repeat("% snap\n", n))))

	require.Len(t, p.frames.paths, n)
	for i, path := range p.frames.paths {
		assert.Equal(t, fmt.Sprintf("%08d.xwd", i), filepath.Base(path))
	}
	assert.Equal(t, n, p.enc.frames)
}

func TestPlaybackExecNotFound(t *testing.T) {
	p := newPlayback(t, 25, minRand{})
	p.driver.SetMode(output.ModeLine)
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader("% exec nosuchtool -v\n")))

	assert.Equal(t, "~ > nosuchtool -v\n### nosuchtool -v ###\n"+output.NotFoundMessage+"\n", p.out.String())
	// prompt 1, echoed line 10, banner 1, message 1
	assert.Equal(t, 13, p.sink.Frames())
}

func TestPlaybackFrameRateChangeAffectsRender(t *testing.T) {
	p := newPlayback(t, 25, minRand{})
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader("% framerate 5\n% wait 2\n")))
	assert.Equal(t, 10, p.sink.Frames())
	assert.Equal(t, 5, p.enc.fps)
}

func TestPlaybackImmediateCommandCollapsesSpacing(t *testing.T) {
	p := newPlayback(t, 25, minRand{})
	p.driver.SetMode(output.ModeLine)
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader(">   nosuch    -la\n% exec nosuch    -la\n")))

	once := "~ > nosuch -la\n### nosuch -la ###\n" + output.NotFoundMessage + "\n"
	assert.Equal(t, once+once, p.out.String())
}

func TestPlaybackSplashOnlyStillRenders(t *testing.T) {
	p := newPlayback(t, 25, minRand{})
	require.NoError(t, New(p.driver).Run(context.Background(), strings.NewReader("% splash\nHello\n")))
	assert.Zero(t, p.sink.Frames())
	assert.Equal(t, 1, p.enc.calls)
}
