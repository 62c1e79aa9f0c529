// Package engine runs one recording session: it resolves the window, feeds the
// script through the output driver, renders the video and cleans up.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/capture"
	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/output"
	"github.com/ivlev/termcast/internal/script"
	"github.com/ivlev/termcast/internal/shell"
	"github.com/ivlev/termcast/internal/system"
	"github.com/ivlev/termcast/internal/video"
)

// Session wires the collaborators of one recording. Any nil collaborator is
// replaced by the real implementation from the config when Run starts.
type Session struct {
	Config   config.Config
	Locator  capture.WindowLocator
	Capturer capture.Capturer
	Shell    shell.Runner
	Encoder  video.VideoEncoder
	Rand     output.Rand
	// Out is the recorded terminal. Only script output may reach it.
	Out   io.Writer
	Stats io.Writer

	ID      string
	tempDir string
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	Frames    int
	FrameRate int
	Lines     int
	Halted    bool
	Video     string
	Manifest  string
	Elapsed   time.Duration
}

func NewSession(cfg config.Config) *Session {
	return &Session{Config: cfg}
}

func (s *Session) defaults() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Shell == nil {
		s.Shell = shell.NewExecutor()
	}
	if s.Locator == nil {
		s.Locator = &capture.XdotoolLocator{Runner: s.Shell, Binary: s.Config.Tools.WindowQuery}
	}
	if s.Capturer == nil {
		s.Capturer = &capture.XWDCapturer{Binary: s.Config.Tools.Capture}
	}
	if s.Encoder == nil {
		s.Encoder = video.NewFFmpegEncoder(s.Config.Tools.Encoder, s.Config.Encoder)
	}
	if s.Rand == nil {
		s.Rand = output.NewRand(s.Config.Seed)
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.Stats == nil {
		s.Stats = os.Stderr
	}
}

// Run records the configured script into the configured output video.
// The temporary frame directory is removed on every path.
func (s *Session) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	if err := s.Config.Validate(); err != nil {
		return Result{}, err
	}
	if s.Config.ScriptPath == "" {
		return Result{}, errors.New("no script given")
	}
	if s.Config.OutputBase == "" {
		return Result{}, errors.New("no output name given")
	}
	s.defaults()

	logger := pslog.Ctx(ctx).With("session", s.ID)
	ctx = pslog.ContextWithLogger(ctx, logger)

	f, err := os.Open(s.Config.ScriptPath)
	if err != nil {
		return Result{}, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	windowID, err := s.Locator.ActiveWindow(ctx)
	if err != nil {
		return Result{}, err
	}

	s.tempDir, err = os.MkdirTemp(s.Config.TempDirRoot, "termcast_"+s.ID+"_")
	if err != nil {
		return Result{}, fmt.Errorf("create frame directory: %w", err)
	}
	defer os.RemoveAll(s.tempDir)

	sink := capture.NewSink(s.tempDir, s.Config.FramePattern, windowID, s.Capturer)
	logger.Info("session start", "script", s.Config.ScriptPath, "window", sink.WindowID(), "frames_dir", sink.Dir())

	driver := output.New(output.Options{
		Out:         s.Out,
		Sink:        sink,
		Shell:       s.Shell,
		Encoder:     s.Encoder,
		Rand:        s.Rand,
		Prompt:      s.Config.Prompt,
		ClearCmd:    s.Config.Tools.Clear,
		FrameRate:   s.Config.FrameRate,
		Speed:       s.Config.Speed,
		OutputVideo: s.Config.OutputVideo(),
	})
	interp := script.New(driver)

	if err := interp.Run(ctx, f); err != nil {
		return Result{}, err
	}

	res := Result{
		SessionID: s.ID,
		Frames:    sink.Frames(),
		FrameRate: driver.FrameRate(),
		Lines:     interp.Lines(),
		Halted:    interp.Halted(),
		Video:     s.Config.OutputVideo(),
		Elapsed:   time.Since(started),
	}

	if s.Config.Manifest {
		m := s.manifest(res, windowID, started)
		res.Manifest = s.Config.ManifestPath()
		if err := m.Write(res.Manifest); err != nil {
			return res, fmt.Errorf("write manifest: %w", err)
		}
	}

	logger.Info("session finished", "frames", res.Frames, "framerate", res.FrameRate, "video", res.Video, "elapsed", res.Elapsed)

	if s.Config.Stats {
		s.printStats(ctx, res)
	}
	return res, nil
}

func (s *Session) manifest(res Result, windowID int, started time.Time) *Manifest {
	scriptPath, err := filepath.Abs(s.Config.ScriptPath)
	if err != nil {
		scriptPath = s.Config.ScriptPath
	}
	return &Manifest{
		Version:   ManifestVersion,
		Session:   res.SessionID,
		Build:     s.Config.BuildVersion,
		Script:    scriptPath,
		Video:     res.Video,
		WindowID:  windowID,
		Frames:    res.Frames,
		FrameRate: res.FrameRate,
		Duration:  float64(res.Frames) / float64(res.FrameRate),
		Lines:     res.Lines,
		Seed:      s.Config.Seed,
		Started:   started.UTC().Truncate(time.Second),
		Finished:  time.Now().UTC().Truncate(time.Second),
	}
}

func (s *Session) printStats(ctx context.Context, res Result) {
	captureFPS := 0.0
	if secs := res.Elapsed.Seconds(); secs > 0 {
		captureFPS = float64(res.Frames) / secs
	}
	rss := "n/a"
	if u, err := system.ResourceUsage(); err == nil {
		rss = system.MiB(u.RSSBytes)
	} else {
		pslog.Ctx(ctx).Debug("resource usage unavailable", "err", err)
	}
	fmt.Fprintf(s.Stats,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Session: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d @ %d fps (%.2fs of video)\n"+
			"Effective Capture FPS: %.2f\n"+
			"Process RSS: %s\n"+
			"----------------------------\n",
		s.Config.BuildVersion, res.SessionID, res.Elapsed.Seconds(),
		res.Frames, res.FrameRate, float64(res.Frames)/float64(res.FrameRate),
		captureFPS, rss,
	)
}
