package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sfm/internal/app"
	"sfm/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file at the default path. A missing file
// yields the default config.
func loadConfig() (*config.Config, app.Paths, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, paths, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(paths.ConfigPath, paths.BaseDir)
	if err != nil {
		return nil, paths, fmt.Errorf("reading config: %w", err)
	}
	return cfg, paths, nil
}

// newApp reads the config and creates an SFMApp. The caller must defer
// app.Close(). Log records go to the log file; console, when non-nil, also
// receives them.
func newApp(cmd *cobra.Command, operation string, console io.Writer) (*app.SFMApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var level slog.Leveler
	if console != nil {
		level = slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
	}

	a, err := app.NewSFMApp(cfg, app.Options{Operation: operation, Console: console, Level: level})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:           "sfm [PATH]",
	Short:         "Smart file manager: sort, back up and tidy a folder",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noWatch, _ := cmd.Flags().GetBool("no-watch")

		a, err := newApp(cmd, "menu", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		base, err := a.ResolveBase(pathArg(args))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(base, 0755); err != nil {
			return fmt.Errorf("creating base path: %w", err)
		}

		if !noWatch {
			lock, err := a.AcquireWatchLock()
			if err != nil {
				return err
			}
			defer lock.Release()

			w, err := a.StartWatching(ctx, base)
			if err != nil {
				a.Fail(err)
				return err
			}
			defer w.Stop()
		}

		m := newMenu(ctx, a.Service(), base, readLines(os.Stdin), os.Stdout)
		if err := m.run(); err != nil && !errors.Is(err, context.Canceled) {
			a.Fail(err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug records to the console")
	rootCmd.Flags().Bool("no-watch", false, "Do not back up or watch the folder while the menu runs")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(decryptCmd)
}
