package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ivlev/termcast/internal/config"
	"github.com/ivlev/termcast/internal/system"
)

func newCheckCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the capture and encoding tools are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			report := system.Preflight(cmd.Context(), cfg)
			report.Print(cmd.OutOrStdout())
			if !report.OK() {
				return errors.New("preflight failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")
	return cmd
}
