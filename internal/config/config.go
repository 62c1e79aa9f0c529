package config

import (
	"errors"
	"fmt"
)

// Speed holds the typing-speed parameters, all measured in frames.
type Speed struct {
	MinFrames     int `mapstructure:"min_frames" yaml:"min_frames"`
	MaxFrames     int `mapstructure:"max_frames" yaml:"max_frames"`
	NonWordFrames int `mapstructure:"nonword_frames" yaml:"nonword_frames"`
	LineFrames    int `mapstructure:"line_frames" yaml:"line_frames"`
}

// DefaultSpeed is the typing speed a session starts with (2 5 10 10).
func DefaultSpeed() Speed {
	return Speed{MinFrames: 2, MaxFrames: 5, NonWordFrames: 10, LineFrames: 10}
}

// Validate rejects negative frame counts. Ranges are not checked against each other.
func (s Speed) Validate() error {
	if s.MinFrames < 0 || s.MaxFrames < 0 || s.NonWordFrames < 0 || s.LineFrames < 0 {
		return fmt.Errorf("speed values must be non-negative, got %d %d %d %d",
			s.MinFrames, s.MaxFrames, s.NonWordFrames, s.LineFrames)
	}
	return nil
}

// Tools names the external programs the recorder shells out to.
type Tools struct {
	WindowQuery string `mapstructure:"window_query" yaml:"window_query"`
	Capture     string `mapstructure:"capture" yaml:"capture"`
	Clear       string `mapstructure:"clear" yaml:"clear"`
	Encoder     string `mapstructure:"encoder" yaml:"encoder"`
}

// Encoder holds the ffmpeg output settings.
type Encoder struct {
	Codec     string `mapstructure:"codec" yaml:"codec"`
	CRF       int    `mapstructure:"crf" yaml:"crf"`
	Tune      string `mapstructure:"tune" yaml:"tune"`
	Container string `mapstructure:"container" yaml:"container"`
}

type Config struct {
	ScriptPath   string  `mapstructure:"-" yaml:"-"`
	OutputBase   string  `mapstructure:"-" yaml:"-"`
	FrameRate    int     `mapstructure:"framerate" yaml:"framerate"`
	Prompt       string  `mapstructure:"prompt" yaml:"prompt"`
	Speed        Speed   `mapstructure:"speed" yaml:"speed"`
	Tools        Tools   `mapstructure:"tools" yaml:"tools"`
	Encoder      Encoder `mapstructure:"encoder" yaml:"encoder"`
	FramePattern string  `mapstructure:"frame_pattern" yaml:"frame_pattern"`
	TempDirRoot  string  `mapstructure:"temp_dir" yaml:"temp_dir"`
	Seed         int64   `mapstructure:"seed" yaml:"seed"`
	Stats        bool    `mapstructure:"stats" yaml:"stats"`
	Manifest     bool    `mapstructure:"manifest" yaml:"manifest"`
	LogFile      string  `mapstructure:"log_file" yaml:"log_file"`
	BuildVersion string  `mapstructure:"-" yaml:"-"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		FrameRate: 25,
		Prompt:    "~ > ",
		Speed:     DefaultSpeed(),
		Tools: Tools{
			WindowQuery: "xdotool",
			Capture:     "xwd",
			Clear:       "clear",
			Encoder:     "ffmpeg",
		},
		Encoder: Encoder{
			Codec:     "h264",
			CRF:       30,
			Tune:      "stillimage",
			Container: "mkv",
		},
		FramePattern: "%08d.xwd",
		Manifest:     true,
	}
}

func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("framerate must be positive, got %d", c.FrameRate)
	}
	if err := c.Speed.Validate(); err != nil {
		return err
	}
	if c.Tools.WindowQuery == "" || c.Tools.Capture == "" || c.Tools.Clear == "" || c.Tools.Encoder == "" {
		return errors.New("tools: every external program must be named")
	}
	if c.Encoder.Container == "" {
		return errors.New("encoder.container must not be empty")
	}
	if c.FramePattern == "" {
		return errors.New("frame_pattern must not be empty")
	}
	return nil
}

// OutputVideo is the final video path: the output base name plus the container extension.
func (c Config) OutputVideo() string {
	return c.OutputBase + "." + c.Encoder.Container
}

// LogPath is where a render session logs. Stderr belongs to the recorded
// terminal, so the default is a file next to the video.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return c.OutputBase + ".log"
}

// ManifestPath is the session manifest written next to the video.
func (c Config) ManifestPath() string {
	return c.OutputBase + ".yaml"
}
