package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/output"
)

// Driver is the set of output operations a script can trigger.
type Driver interface {
	SetMode(m output.Mode)
	SetSpeed(s config.Speed)
	SetFrameRate(fps int) error
	Snap(ctx context.Context) error
	Wait(ctx context.Context, seconds int) error
	Clear(ctx context.Context) error
	Exec(ctx context.Context, cmdline string, echo bool) error
	Prompt(ctx context.Context) error
	Line(ctx context.Context, s string, immediate bool) error
	QR(ctx context.Context, text string) error
	RenderVideo(ctx context.Context) error
}

// LineError ties a failure to the script line that caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Interpreter feeds script lines to a Driver in source order.
type Interpreter struct {
	driver Driver
	halted bool
	lines  int
}

func New(driver Driver) *Interpreter {
	return &Interpreter{driver: driver}
}

// Halted reports whether an end directive has been seen.
func (in *Interpreter) Halted() bool {
	return in.halted
}

// Lines is the number of lines interpreted so far.
func (in *Interpreter) Lines() int {
	return in.lines
}

// Run interprets r line by line until it is exhausted or an end directive is
// reached, then renders the video once. A failing line stops the run without rendering.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	for number := 1; !in.halted; number++ {
		raw, err := br.ReadString('\n')
		if raw != "" {
			if ierr := in.Interpret(ctx, number, raw); ierr != nil {
				return ierr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
	}
	pslog.Ctx(ctx).Debug("script finished", "lines", in.lines, "halted", in.halted)
	return in.driver.RenderVideo(ctx)
}

// Interpret runs a single raw line. Lines after an end directive are ignored.
func (in *Interpreter) Interpret(ctx context.Context, number int, raw string) error {
	if in.halted {
		return nil
	}
	line := Parse(number, raw)
	in.lines++
	if err := in.dispatch(ctx, line); err != nil {
		return &LineError{Line: line.Number, Text: line.Text, Err: err}
	}
	return nil
}

func (in *Interpreter) dispatch(ctx context.Context, line Line) error {
	switch line.Kind {
	case KindControl:
		d, err := ParseDirective(line.Body)
		if err != nil {
			return err
		}
		return in.apply(ctx, d)
	case KindPrompt:
		if err := in.driver.Prompt(ctx); err != nil {
			return err
		}
		return in.driver.Line(ctx, line.Body+"\n", false)
	case KindImmediate:
		if line.Body == "" {
			return in.driver.Line(ctx, "\n", true)
		}
		return in.driver.Exec(ctx, line.Body, true)
	default:
		return in.driver.Line(ctx, line.Text+"\n", false)
	}
}

func (in *Interpreter) apply(ctx context.Context, d Directive) error {
	switch d.Op {
	case OpMode:
		in.driver.SetMode(d.Mode)
	case OpSpeed:
		in.driver.SetSpeed(d.Speed)
	case OpSnap:
		return in.driver.Snap(ctx)
	case OpWait:
		return in.driver.Wait(ctx, d.Seconds)
	case OpClear:
		return in.driver.Clear(ctx)
	case OpExec:
		return in.driver.Exec(ctx, d.Text, true)
	case OpFrameRate:
		return in.driver.SetFrameRate(d.Rate)
	case OpQR:
		return in.driver.QR(ctx, d.Text)
	case OpEnd:
		in.halted = true
	}
	return nil
}
