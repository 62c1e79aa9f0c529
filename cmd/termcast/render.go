package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/engine"
	"github.com/ivlev/termcast/internal/system"
	"github.com/ivlev/termcast/internal/version"
)

type renderFlags struct {
	config     string
	frameRate  int
	prompt     string
	seed       int64
	stats      bool
	noManifest bool
}

func newRenderCmd() *cobra.Command {
	var fl renderFlags
	cmd := &cobra.Command{
		Use:   "render <script> <output>",
		Short: "Play a script in the focused terminal window and record it",
		Long: "Play a script in the focused terminal window, capture it frame by frame and\n" +
			"encode <output>.<container>. Run it from the terminal that should be recorded.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(fl.config)
			if err != nil {
				return err
			}
			applyRenderFlags(cmd, fl, &cfg)
			cfg.ScriptPath = args[0]
			cfg.OutputBase = args[1]
			cfg.BuildVersion = version.Current()

			ctx := cmd.Context()
			if !logFileChanged(cmd) {
				// stderr is the recorded terminal
				var f *os.File
				ctx, f, err = withLogFile(ctx, cfg.LogPath())
				if err != nil {
					return err
				}
				defer f.Close()
			}

			if !system.IsTerminal(os.Stdout) {
				pslog.Ctx(ctx).Warn("stdout is not a terminal; script output will not be visible in the recording")
			}

			res, err := engine.NewSession(cfg).Run(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "[+++] %s (%d frames @ %d fps)\n", res.Video, res.Frames, res.FrameRate)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.config, "config", "c", "", "path to a YAML config file")
	f.IntVarP(&fl.frameRate, "framerate", "r", 0, "initial frame rate")
	f.StringVar(&fl.prompt, "prompt", "", "prompt printed before commands")
	f.Int64Var(&fl.seed, "seed", 0, "seed for typing delays (0 = random)")
	f.BoolVar(&fl.stats, "stats", false, "print a performance report when done")
	f.BoolVar(&fl.noManifest, "no-manifest", false, "do not write <output>.yaml")
	return cmd
}

func logFileChanged(cmd *cobra.Command) bool {
	f := cmd.Flag("log-file")
	return f != nil && f.Changed
}

// applyRenderFlags lets explicitly set flags override the loaded config.
func applyRenderFlags(cmd *cobra.Command, fl renderFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("framerate") {
		cfg.FrameRate = fl.frameRate
	}
	if flags.Changed("prompt") {
		cfg.Prompt = fl.prompt
	}
	if flags.Changed("seed") {
		cfg.Seed = fl.seed
	}
	if flags.Changed("stats") {
		cfg.Stats = fl.stats
	}
	if flags.Changed("no-manifest") {
		cfg.Manifest = !fl.noManifest
	}
}
