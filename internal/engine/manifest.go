package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const ManifestVersion = "1.0"

// Manifest records how a video was produced. With a fixed seed the typing can be replayed.
type Manifest struct {
	Version   string    `yaml:"version"`
	Session   string    `yaml:"session"`
	Build     string    `yaml:"build,omitempty"`
	Script    string    `yaml:"script"`
	Video     string    `yaml:"video"`
	WindowID  int       `yaml:"window_id"`
	Frames    int       `yaml:"frames"`
	FrameRate int       `yaml:"framerate"`
	Duration  float64   `yaml:"duration_seconds"`
	Lines     int       `yaml:"lines"`
	Seed      int64     `yaml:"seed,omitempty"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
}

// Write stores the manifest as YAML at path, replacing any previous run's file.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
