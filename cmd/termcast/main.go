package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/ivlev/termcast/internal/system"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	ctx = withLogger(ctx, os.Stderr)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(root.Context()).With("err", err).Error("termcast command failed")
		return 1
	}
	return 0
}

func withLogger(ctx context.Context, w io.Writer) context.Context {
	opts := pslog.Options{Mode: pslog.ModeConsole}
	if f, ok := w.(*os.File); !ok || !system.IsTerminal(f) {
		opts.NoColor = true
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(w),
		pslog.WithEnvOptions(opts),
	)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	return pslog.ContextWithLogger(ctx, logger)
}

// withLogFile sends logs to path, appending. The file stays open for the rest of the command.
func withLogFile(ctx context.Context, path string) (context.Context, *os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return ctx, nil, fmt.Errorf("open log file: %w", err)
	}
	return withLogger(ctx, f), f, nil
}

func newRootCmd() *cobra.Command {
	var logFile string
	root := &cobra.Command{
		Use:           "termcast",
		Short:         "Record scripted terminal sessions to video",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFile == "" {
				return nil
			}
			ctx, _, err := withLogFile(cmd.Context(), logFile)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			cmd.Root().SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (render defaults to <output>.log)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())

	return root
}
