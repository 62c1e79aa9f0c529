// Package capture rasterizes the recorded window into sequentially numbered frame files.
package capture

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/shell"
)

// Capturer writes one still image of a window to path.
type Capturer interface {
	Capture(ctx context.Context, path string, windowID int) error
}

// WindowLocator resolves the window to record.
type WindowLocator interface {
	ActiveWindow(ctx context.Context) (int, error)
}

// XWDCapturer dumps a window with xwd.
type XWDCapturer struct {
	Binary string
}

func (c *XWDCapturer) Capture(ctx context.Context, path string, windowID int) error {
	bin := c.Binary
	if bin == "" {
		bin = "xwd"
	}
	cmd := exec.CommandContext(ctx, bin, "-out", path, "-id", strconv.Itoa(windowID))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s capture error: %w, output: %s", bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// XdotoolLocator asks xdotool for the focused window.
type XdotoolLocator struct {
	Runner shell.Runner
	Binary string
}

func (l *XdotoolLocator) ActiveWindow(ctx context.Context) (int, error) {
	bin := l.Binary
	if bin == "" {
		bin = "xdotool"
	}
	res, err := l.Runner.Output(ctx, bin+" getactivewindow")
	if err != nil {
		return 0, fmt.Errorf("query active window: %w", err)
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("query active window: %s exited with %d: %s", bin, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return ParseWindowID(res.Lines)
}

// ParseWindowID reads the decimal window id from the first output line.
func ParseWindowID(lines []string) (int, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return 0, fmt.Errorf("no window id in output")
	}
	id, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", lines[0], err)
	}
	return id, nil
}

// Sink numbers and captures frames for one session. The sequence starts at 0
// and only ever grows; numbers are never skipped or reused.
type Sink struct {
	dir      string
	pattern  string
	windowID int
	capturer Capturer
	seq      int
}

// NewSink captures into dir using pattern (a printf verb such as "%08d.xwd").
func NewSink(dir, pattern string, windowID int, capturer Capturer) *Sink {
	return &Sink{
		dir:      dir,
		pattern:  pattern,
		windowID: windowID,
		capturer: capturer,
	}
}

// Snap captures count frames in order. A count of zero or less does nothing.
func (s *Sink) Snap(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		path := s.Path(s.seq)
		if err := s.capturer.Capture(ctx, path, s.windowID); err != nil {
			return fmt.Errorf("frame %d: %w", s.seq, err)
		}
		pslog.Ctx(ctx).Debug("frame captured", "seq", s.seq)
		s.seq++
	}
	return nil
}

// Frames is the number of frames captured so far, which is also the next sequence number.
func (s *Sink) Frames() int {
	return s.seq
}

// Path is the file a given sequence number is written to.
func (s *Sink) Path(seq int) string {
	return filepath.Join(s.dir, fmt.Sprintf(s.pattern, seq))
}

// InputPattern is the printf-style path the encoder reads the sequence from.
func (s *Sink) InputPattern() string {
	return filepath.Join(s.dir, s.pattern)
}

func (s *Sink) Dir() string {
	return s.dir
}

func (s *Sink) WindowID() int {
	return s.windowID
}
