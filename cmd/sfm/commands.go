package main

import (
	"fmt"
	"os"
	"time"

	"sfm/internal/app"
	"sfm/internal/config"
	"sfm/internal/database"
	"sfm/internal/sfm"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(paths.BaseDir)
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Data dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, paths, err := loadConfig()
		if err != nil {
			return err
		}

		encryption := "off"
		if cfg.Encryption.Enabled {
			encryption = cfg.Encryption.Type
			if encryption == "" {
				encryption = "age"
			}
		}
		categories := "built-in"
		if len(cfg.Categories) > 0 {
			categories = fmt.Sprintf("%d from config", len(cfg.Categories))
		}

		schema := "not created"
		if st, ok, err := database.Inspect(cfg.Database); err != nil {
			schema = "unreadable: " + err.Error()
		} else if ok {
			schema = st.String()
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Print(renderTable(
			[]string{"Setting", "Value"},
			[][]string{
				{"Base path", cfg.BasePath},
				{"Data dir", cfg.BaseDir},
				{"Log dir", cfg.LogDir},
				{"Operation log", cfg.OperationLog},
				{"Backup folder", cfg.BackupDirName},
				{"Categories", categories},
				{"Database", cfg.Database.Type},
				{"Schema", schema},
				{"Encryption", encryption},
				{"Ignore", fmt.Sprint(cfg.Filesystem.Ignore)},
			},
			nil,
		))
		fmt.Println()
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup [PATH]",
	Short: "Run one backup pass",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cmd, "backup", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		base, err := a.ResolveBase(pathArg(args))
		if err != nil {
			return err
		}

		var bar *progressBar
		if isTerminal(os.Stderr) {
			pending, err := a.Service().Pending(ctx, base)
			if err != nil {
				a.Fail(err)
				return err
			}
			bar = newProgressBar(len(pending))
		}

		result, err := a.Backup(ctx, base, bar.progressFunc())
		bar.finish()
		if err != nil {
			a.Fail(err)
			return fmt.Errorf("backup failed: %w", err)
		}

		printBackupResult(result)
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d file(s) could not be backed up", len(result.Failed))
		}
		return nil
	},
}

// sort command
var sortCmd = &cobra.Command{
	Use:   "sort [PATH]",
	Short: "Move loose files into category folders",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "sort", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Sort(pathArg(args))
		if err != nil {
			a.Fail(err)
			return err
		}

		fmt.Printf("Moved %d file(s)\n", len(result.Moved))
		printFailures(result.Failed)
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch [PATH]",
	Short: "Back up new files as they appear until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cmd, "watch", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		base, err := a.ResolveBase(pathArg(args))
		if err != nil {
			return err
		}

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

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", base)
		<-ctx.Done()
		return w.Stop()
	},
}

// hash command
var hashCmd = &cobra.Command{
	Use:   "hash FILE",
	Short: "Print the SHA-256 of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest, err := sfm.HashFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", digest, args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View backup pass history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		passes, err := a.Service().History(limit)
		if err != nil {
			return err
		}

		if len(passes) == 0 {
			fmt.Println("No backup passes recorded.")
			return nil
		}

		rows := make([][]string, 0, len(passes))
		for _, p := range passes {
			rows = append(rows, []string{
				p.StartedAt.Local().Format("2006-01-02 15:04:05"),
				p.Trigger,
				statusColor(p.Status),
				fmt.Sprint(p.Copied),
				fmt.Sprint(p.Skipped),
				fmt.Sprint(p.Failed),
				p.FinishedAt.Sub(p.StartedAt).Truncate(time.Millisecond).String(),
				p.BasePath,
			})
		}
		fmt.Println(renderTable(
			[]string{"Started", "Trigger", "Status", "Copied", "Skipped", "Failed", "Duration", "Path"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		))
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the file operation log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "log", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Service().OperationLog()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No operations logged.")
			return nil
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			when := e.Timestamp
			if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
				when = humanize.Time(t)
			}
			rows = append(rows, []string{when, e.Operation, e.File})
		}
		fmt.Println(renderTable([]string{"When", "Operation", "File"}, rows, nil))
		return nil
	},
}

func printBackupResult(r *sfm.BackupResult) {
	if r.AlreadyBackedUp() {
		color.Green("All files already backed up. No new files found.")
	} else {
		color.Green("Backed up %d file(s) to %s", len(r.Copied), r.Root)
	}
	fmt.Printf("Skipped %d, ignored %d, took %s\n", r.Skipped, r.Ignored,
		r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond))
	printFailures(r.Failed)
}

func printFailures(failures []sfm.Failure) {
	for _, f := range failures {
		color.Red("  failed: %s", f.Error())
	}
}

func statusColor(status string) string {
	switch status {
	case sfm.PassSuccess:
		return color.GreenString(status)
	case sfm.PassPartial:
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of passes to show")
	logCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show (newest)")
}
