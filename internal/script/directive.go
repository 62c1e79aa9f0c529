package script

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/output"
)

var (
	ErrUnknownDirective = errors.New("unknown directive")
	ErrBadArgument      = errors.New("bad directive argument")
)

// Op names a control directive.
type Op int

const (
	OpMode Op = iota
	OpSpeed
	OpSnap
	OpWait
	OpClear
	OpExec
	OpFrameRate
	OpQR
	OpEnd
)

// Directive is a parsed control line. Only the fields relevant to Op are set.
type Directive struct {
	Op      Op
	Name    string
	Mode    output.Mode
	Speed   config.Speed
	Seconds int
	Rate    int
	// Text is the command for exec or the payload for qr, tokens joined by single spaces.
	Text string
}

// ParseDirective parses the body of a control line.
func ParseDirective(body string) (Directive, error) {
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return Directive{}, fmt.Errorf("%w: missing directive name", ErrUnknownDirective)
	}
	name, args := tokens[0], tokens[1:]
	d := Directive{Name: name}

	if mode, ok := output.ParseMode(name); ok {
		d.Op, d.Mode = OpMode, mode
		return d, wantArgs(name, args, 0)
	}

	switch name {
	case "speed":
		d.Op = OpSpeed
		if err := wantArgs(name, args, 4); err != nil {
			return d, err
		}
		v, err := nonNegativeInts(name, args)
		if err != nil {
			return d, err
		}
		d.Speed = config.Speed{MinFrames: v[0], MaxFrames: v[1], NonWordFrames: v[2], LineFrames: v[3]}
	case "snap":
		d.Op = OpSnap
		return d, wantArgs(name, args, 0)
	case "wait":
		d.Op = OpWait
		if err := wantArgs(name, args, 1); err != nil {
			return d, err
		}
		v, err := nonNegativeInts(name, args)
		if err != nil {
			return d, err
		}
		d.Seconds = v[0]
	case "clear":
		d.Op = OpClear
		return d, wantArgs(name, args, 0)
	case "exec":
		d.Op = OpExec
		if len(args) == 0 {
			return d, fmt.Errorf("%w: exec needs a command", ErrBadArgument)
		}
		d.Text = strings.Join(args, " ")
	case "framerate":
		d.Op = OpFrameRate
		if err := wantArgs(name, args, 1); err != nil {
			return d, err
		}
		v, err := nonNegativeInts(name, args)
		if err != nil {
			return d, err
		}
		if v[0] == 0 {
			return d, fmt.Errorf("%w: framerate must be positive", ErrBadArgument)
		}
		d.Rate = v[0]
	case "qr":
		d.Op = OpQR
		if len(args) == 0 {
			return d, fmt.Errorf("%w: qr needs text", ErrBadArgument)
		}
		d.Text = strings.Join(args, " ")
	case "end":
		d.Op = OpEnd
		return d, wantArgs(name, args, 0)
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownDirective, name)
	}
	return d, nil
}

func wantArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrBadArgument, name, n, len(args))
	}
	return nil
}

func nonNegativeInts(name string, args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", ErrBadArgument, name, a)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %s expects a non-negative integer, got %d", ErrBadArgument, name, v)
		}
		out[i] = v
	}
	return out, nil
}
