package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackchuka/rootscan/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan whenever a working copy appears under a content root",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.ContentRoots) == 0 {
			return errors.New("no content roots configured")
		}

		logger, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		logger.Info("watching", "roots", cfg.ContentRoots, "quiet", cfg.QuietPeriod)
		err = a.watch(ctx, func(rep report.Report) {
			logger.Info("scan complete",
				"detected", len(rep.Detected),
				"unregistered", len(rep.Unregistered),
				"invalid", len(rep.Invalid),
				"unreachable", len(rep.Unreachable))
			for _, r := range rep.Unregistered {
				logger.Info("unregistered root", "kind", r.Kind, "path", r.Path)
			}
		}, nil)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
