// Package output drives what appears in the recorded terminal and when frames
// are captured. Text goes to a real terminal while every visible change asks
// the frame sink for zero or more frames according to the typing model.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rivo/uniseg"
	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/shell"
	"github.com/ivlev/termcast/internal/video"
)

// NotFoundMessage is rendered after the banner when an exec'd program does not exist.
const NotFoundMessage = "sh: Command not found"

var (
	ErrAlreadyRendered = errors.New("video already rendered")
	ErrNoFrames        = errors.New("no frames captured")
)

// FrameSink hands out numbered frame captures.
type FrameSink interface {
	Snap(ctx context.Context, count int) error
	Frames() int
	InputPattern() string
}

type Options struct {
	Out         io.Writer
	Sink        FrameSink
	Shell       shell.Runner
	Encoder     video.VideoEncoder
	Rand        Rand
	Prompt      string
	ClearCmd    string
	FrameRate   int
	Speed       config.Speed
	OutputVideo string
}

// Driver owns the render mode, the typing speed and the frame rate of one session.
type Driver struct {
	out         io.Writer
	sink        FrameSink
	shell       shell.Runner
	encoder     video.VideoEncoder
	rand        Rand
	prompt      string
	clearCmd    string
	outputVideo string

	mode      Mode
	speed     config.Speed
	frameRate int
	rendered  bool
}

func New(opts Options) *Driver {
	d := &Driver{
		out:         opts.Out,
		sink:        opts.Sink,
		shell:       opts.Shell,
		encoder:     opts.Encoder,
		rand:        opts.Rand,
		prompt:      opts.Prompt,
		clearCmd:    opts.ClearCmd,
		outputVideo: opts.OutputVideo,
		mode:        ModeType,
		speed:       opts.Speed,
		frameRate:   opts.FrameRate,
	}
	if d.rand == nil {
		d.rand = NewRand(0)
	}
	if d.clearCmd == "" {
		d.clearCmd = "clear"
	}
	return d
}

func (d *Driver) Mode() Mode {
	return d.mode
}

func (d *Driver) SetMode(m Mode) {
	d.mode = m
}

func (d *Driver) Speed() config.Speed {
	return d.speed
}

// SetSpeed replaces the typing speed wholesale.
func (d *Driver) SetSpeed(s config.Speed) {
	d.speed = s
}

func (d *Driver) FrameRate() int {
	return d.frameRate
}

func (d *Driver) SetFrameRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", fps)
	}
	d.frameRate = fps
	return nil
}

// Frames is the number of frames captured so far.
func (d *Driver) Frames() int {
	return d.sink.Frames()
}

// Line renders one full line. In type mode it is typed key by key unless
// immediate is set; other modes write it at once. Either way the line is
// completed afterwards.
func (d *Driver) Line(ctx context.Context, s string, immediate bool) error {
	if d.mode == ModeType {
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			if err := d.printChar(ctx, g.Str(), immediate); err != nil {
				return err
			}
		}
		return d.completeLine(ctx, immediate)
	}
	return d.printLine(ctx, s, immediate)
}

// Prompt writes the prompt and captures exactly one frame, whatever the mode.
func (d *Driver) Prompt(ctx context.Context) error {
	if err := d.write(d.prompt); err != nil {
		return err
	}
	return d.sink.Snap(ctx, 1)
}

// Exec optionally echoes a prompt and the command line, runs the command and
// renders its output one line at a time. A missing program is rendered as a
// banner plus NotFoundMessage instead of failing.
func (d *Driver) Exec(ctx context.Context, cmdline string, echo bool) error {
	if echo {
		if err := d.Prompt(ctx); err != nil {
			return err
		}
		if err := d.Line(ctx, cmdline+"\n", false); err != nil {
			return err
		}
	}

	res, err := d.shell.Output(ctx, cmdline)
	if errors.Is(err, shell.ErrCommandNotFound) {
		pslog.Ctx(ctx).Debug("exec command not found", "cmd", cmdline)
		if err := d.printLine(ctx, "### "+cmdline+" ###\n", true); err != nil {
			return err
		}
		return d.printLine(ctx, NotFoundMessage+"\n", true)
	}
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		pslog.Ctx(ctx).Warn("exec command failed", "cmd", cmdline, "exit_code", res.ExitCode)
	}
	for _, line := range res.Lines {
		if err := d.printLine(ctx, line+"\n", true); err != nil {
			return err
		}
	}
	return nil
}

// Snap captures a single frame.
func (d *Driver) Snap(ctx context.Context) error {
	return d.sink.Snap(ctx, 1)
}

// Wait holds the current picture for seconds by capturing seconds × frame rate frames.
func (d *Driver) Wait(ctx context.Context, seconds int) error {
	return d.sink.Snap(ctx, seconds*d.frameRate)
}

// Clear clears the terminal. No frame is captured.
func (d *Driver) Clear(ctx context.Context) error {
	return d.shell.Run(ctx, d.clearCmd)
}

// RenderVideo encodes every captured frame at the current frame rate. It may only run once.
// The encoder is invoked even when nothing was captured; its failure is then
// reported as ErrNoFrames.
func (d *Driver) RenderVideo(ctx context.Context) error {
	if d.rendered {
		return ErrAlreadyRendered
	}
	d.rendered = true
	frames := d.sink.Frames()
	logger := pslog.Ctx(ctx)
	if frames == 0 {
		logger.Warn("rendering without frames", "mode", d.mode.String(), "output", d.outputVideo)
	} else {
		logger.Info("rendering video", "frames", frames, "fps", d.frameRate, "output", d.outputVideo)
	}
	err := d.encoder.Encode(ctx, d.sink.InputPattern(), d.frameRate, d.outputVideo)
	if err != nil && frames == 0 {
		return fmt.Errorf("%w (splash output is never captured; add %% snap or %% wait): %w", ErrNoFrames, err)
	}
	return err
}

func (d *Driver) printChar(ctx context.Context, c string, immediate bool) error {
	if err := d.write(c); err != nil {
		return err
	}
	if immediate {
		return nil
	}
	return d.sink.Snap(ctx, d.charFrames(c))
}

// charFrames draws the pause after a keystroke: letters and digits take
// [min, max] frames, anything else [max, nonword].
func (d *Driver) charFrames(c string) int {
	if isWordChar(c) {
		return d.rand.IntRange(d.speed.MinFrames, d.speed.MaxFrames)
	}
	return d.rand.IntRange(d.speed.MaxFrames, d.speed.NonWordFrames)
}

func (d *Driver) printLine(ctx context.Context, s string, immediate bool) error {
	if err := d.write(s); err != nil {
		return err
	}
	return d.completeLine(ctx, immediate)
}

func (d *Driver) completeLine(ctx context.Context, immediate bool) error {
	switch {
	case d.mode == ModeSplash:
		return nil
	case immediate:
		return d.sink.Snap(ctx, 1)
	default:
		return d.sink.Snap(ctx, d.speed.LineFrames)
	}
}

type flusher interface {
	Flush() error
}

func (d *Driver) write(s string) error {
	if _, err := io.WriteString(d.out, s); err != nil {
		return fmt.Errorf("write terminal: %w", err)
	}
	if f, ok := d.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func isWordChar(c string) bool {
	if len(c) != 1 {
		return false
	}
	b := c[0]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
