package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TERMCAST_FRAMERATE or TERMCAST_SPEED_LINE_FRAMES.
const EnvPrefix = "TERMCAST"

// Load layers defaults, an optional YAML file and TERMCAST_* environment variables.
// An empty path skips the file; a named file that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("framerate", cfg.FrameRate)
	v.SetDefault("prompt", cfg.Prompt)
	v.SetDefault("speed.min_frames", cfg.Speed.MinFrames)
	v.SetDefault("speed.max_frames", cfg.Speed.MaxFrames)
	v.SetDefault("speed.nonword_frames", cfg.Speed.NonWordFrames)
	v.SetDefault("speed.line_frames", cfg.Speed.LineFrames)
	v.SetDefault("tools.window_query", cfg.Tools.WindowQuery)
	v.SetDefault("tools.capture", cfg.Tools.Capture)
	v.SetDefault("tools.clear", cfg.Tools.Clear)
	v.SetDefault("tools.encoder", cfg.Tools.Encoder)
	v.SetDefault("encoder.codec", cfg.Encoder.Codec)
	v.SetDefault("encoder.crf", cfg.Encoder.CRF)
	v.SetDefault("encoder.tune", cfg.Encoder.Tune)
	v.SetDefault("encoder.container", cfg.Encoder.Container)
	v.SetDefault("frame_pattern", cfg.FramePattern)
	v.SetDefault("temp_dir", cfg.TempDirRoot)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("stats", cfg.Stats)
	v.SetDefault("manifest", cfg.Manifest)
	v.SetDefault("log_file", cfg.LogFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
