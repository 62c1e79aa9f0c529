package system

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/video"
)

// ToolStatus is the lookup result for one external program.
type ToolStatus struct {
	Role   string
	Binary string
	Path   string
	Err    error
}

// Report is the outcome of a preflight check.
type Report struct {
	Tools    []ToolStatus
	Codec    string
	CodecOK  bool
	CodecErr error
	Terminal bool
}

// OK reports whether every tool was found and the codec is available.
func (r Report) OK() bool {
	for _, t := range r.Tools {
		if t.Err != nil {
			return false
		}
	}
	return r.CodecOK
}

// Print writes a human readable summary.
func (r Report) Print(w io.Writer) {
	for _, t := range r.Tools {
		if t.Err != nil {
			fmt.Fprintf(w, "[-] %-12s %-10s %v\n", t.Role, t.Binary, t.Err)
			continue
		}
		fmt.Fprintf(w, "[+] %-12s %-10s %s\n", t.Role, t.Binary, t.Path)
	}
	switch {
	case r.CodecOK:
		fmt.Fprintf(w, "[+] %-12s %s\n", "codec", r.Codec)
	case r.CodecErr != nil:
		fmt.Fprintf(w, "[-] %-12s %s: %v\n", "codec", r.Codec, r.CodecErr)
	default:
		fmt.Fprintf(w, "[-] %-12s %s: not listed by ffmpeg -encoders\n", "codec", r.Codec)
	}
	if !r.Terminal {
		fmt.Fprintln(w, "[!] stdout is not a terminal; the recorded window will not show script output")
	}
}

// Preflight looks up every configured tool and asks the encoder for its codecs, concurrently.
func Preflight(ctx context.Context, cfg config.Config) Report {
	tools := []ToolStatus{
		{Role: "window query", Binary: cfg.Tools.WindowQuery},
		{Role: "capture", Binary: cfg.Tools.Capture},
		{Role: "clear", Binary: cfg.Tools.Clear},
		{Role: "encoder", Binary: cfg.Tools.Encoder},
	}
	report := Report{Codec: cfg.Encoder.Codec, Terminal: IsTerminal(os.Stdout)}

	g, gctx := errgroup.WithContext(ctx)
	for i := range tools {
		g.Go(func() error {
			path, err := exec.LookPath(tools[i].Binary)
			tools[i].Path, tools[i].Err = path, err
			return nil
		})
	}
	g.Go(func() error {
		encoders, err := video.ListEncoders(gctx, cfg.Tools.Encoder)
		if err != nil {
			report.CodecErr = err
			return nil
		}
		report.CodecOK = video.SupportsCodec(encoders, cfg.Encoder.Codec)
		return nil
	})
	_ = g.Wait()

	report.Tools = tools
	return report
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
