package video

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ivlev/termcast/internal/config"
)

type VideoEncoder interface {
	// Encode assembles the numbered frames matched by inputPattern into outputPath.
	Encode(ctx context.Context, inputPattern string, frameRate int, outputPath string) error
}

type FFmpegEncoder struct {
	Binary   string
	Settings config.Encoder
}

func NewFFmpegEncoder(binary string, settings config.Encoder) *FFmpegEncoder {
	return &FFmpegEncoder{Binary: binary, Settings: settings}
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) Encode(ctx context.Context, inputPattern string, frameRate int, outputPath string) error {
	if frameRate <= 0 {
		return fmt.Errorf("invalid frame rate %d", frameRate)
	}
	args := e.buildFFmpegArgs(inputPattern, frameRate, outputPath)
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg encode error: %w, output: %s", err, string(out))
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(inputPattern string, frameRate int, outputPath string) []string {
	args := []string{
		"-y",
		"-r", fmt.Sprintf("%d", frameRate),
		"-i", inputPattern,
		"-vcodec", e.Settings.Codec,
	}
	if e.Settings.Tune != "" {
		args = append(args, "-tune", e.Settings.Tune)
	}

	// Quality flag depends on the encoder.
	switch e.Settings.Codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", e.Settings.CRF*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Settings.CRF))
	default:
		if e.Settings.CRF > 0 {
			args = append(args, "-crf", fmt.Sprintf("%d", e.Settings.CRF))
		}
	}

	args = append(args, outputPath)
	return args
}

// ListEncoders returns the names reported by `ffmpeg -encoders`.
func ListEncoders(ctx context.Context, binary string) ([]string, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s -encoders: %w", binary, err)
	}
	return ParseEncoders(string(out)), nil
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output. Entry
// lines start with a six character capability field such as " V....D".
func ParseEncoders(out string) []string {
	var names []string
	pastHeader := false
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if !pastHeader {
			if len(fields) > 0 && strings.HasPrefix(fields[0], "---") {
				pastHeader = true
			}
			continue
		}
		if len(fields) < 2 {
			continue
		}
		names = append(names, fields[1])
	}
	return names
}

// SupportsCodec reports whether codec (or a libx264 style alias of it) is available.
// "h264" is ffmpeg's generic name and resolves to whichever H.264 encoder is built in.
func SupportsCodec(encoders []string, codec string) bool {
	for _, name := range encoders {
		if name == codec {
			return true
		}
		if codec == "h264" && strings.Contains(name, "264") {
			return true
		}
	}
	return false
}
