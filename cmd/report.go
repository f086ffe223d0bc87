package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

var (
	reportAccept bool
	reportIgnore bool
	reportPrune  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare detected roots with the registered mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportAccept && reportIgnore {
			return fmt.Errorf("--accept and --ignore are mutually exclusive")
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
		rep, err := a.scanAndReport(ctx)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep)

		changed := false
		if reportAccept && len(rep.Unregistered) > 0 {
			if err := a.reporter.Accept(ctx, rep.Unregistered...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nregistered %d root(s)\n", len(rep.Unregistered))
			changed = true
		}
		if reportIgnore && len(rep.Unregistered) > 0 {
			if err := a.reporter.Ignore(ctx, rep.Unregistered...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nignored %d root(s)\n", len(rep.Unregistered))
			changed = true
		}
		if stale := slices.Concat(rep.Invalid, rep.Unreachable); reportPrune && len(stale) > 0 {
			if err := a.reporter.Remove(ctx, stale...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nremoved %d mapping(s)\n", len(stale))
			changed = true
		}
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), styleNone.Render("mappings saved to "+a.store.Path()))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportAccept, "accept", false, "register every unregistered root")
	reportCmd.Flags().BoolVar(&reportIgnore, "ignore", false, "ignore every unregistered root")
	reportCmd.Flags().BoolVar(&reportPrune, "prune", false, "remove invalid and unreachable mappings")
	rootCmd.AddCommand(reportCmd)
}
