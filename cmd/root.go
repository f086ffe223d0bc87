// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/logging"
	"github.com/jackchuka/rootscan/tui"
)

var (
	cfgFile  string
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "rootscan",
	Short: "Detect version-control roots under your content roots",
	Long: `
            ╦═╗╔═╗╔═╗╔╦╗╔═╗╔═╗╔═╗╔╗╔
            ╠╦╝║ ║║ ║ ║ ╚═╗║  ╠═╣║║║
            ╩╚═╚═╝╚═╝ ╩ ╚═╝╚═╝╩ ╩╝╚╝

  Finds Git, Mercurial and Subversion working copies under
  the configured content roots, keeps the VCS mappings in
  sync and reports roots that are missing or stale.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.ContentRoots) == 0 {
			fmt.Fprintf(os.Stderr, "No content roots configured.\n")
			fmt.Fprintf(os.Stderr, "Run 'rootscan init' to set up, or add paths to %s\n", cfgFile)
			return nil
		}

		// The dashboard owns the terminal, so logs go to a file next to the config.
		logPath := filepath.Join(filepath.Dir(cfgFile), "rootscan.log")
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()

		logger, err := newLogger(f)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), a.session())
	},
}

var version = "dev"

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/rootscan/config.yaml)")
	rootCmd.PersistentFlags().StringSliceP("root", "r", nil, "content roots to scan (overrides config file)")
	rootCmd.PersistentFlags().Int("depth", -1, "maximum downward scan depth (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if roots, _ := rootCmd.PersistentFlags().GetStringSlice("root"); len(roots) > 0 {
		cfg.ContentRoots = make([]string, len(roots))
		for i, r := range roots {
			cfg.ContentRoots[i] = config.ExpandHome(r)
		}
	}
	if depth, _ := rootCmd.PersistentFlags().GetInt("depth"); depth >= 0 {
		cfg.MaxDepth = depth
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer) (*log.Logger, error) {
	return logging.New(w, cfg.LogLevel)
}
