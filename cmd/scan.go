package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect roots under every content root and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		roots, err := a.detector.DetectAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		printRoots(cmd.OutOrStdout(), roots)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [dir...]",
	Short: "Detect roots at and around the given directories",
	Long: `Looks for roots below each directory (up to the configured depth)
and at the nearest enclosing root above it. Defaults to the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			args = []string{wd}
		}

		logger, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		for _, dir := range args {
			roots, err := a.detector.Detect(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("detect %s: %w", dir, err)
			}
			printRoots(cmd.OutOrStdout(), roots)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd, detectCmd)
}
