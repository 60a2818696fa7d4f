package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trainingload/internal/export"
	"trainingload/internal/fitfile"
	"trainingload/internal/mcp"
	"trainingload/internal/service"
	"trainingload/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "trainingload",
	Short: "Training load analytics for FIT activity files",
	Long: `Trainingload scores every imported workout (TSS from power, heart rate
or duration), tracks fitness, fatigue and form over time, keeps personal
bests and gives a daily training recommendation.

QUICK START:

  $ trainingload import ~/Downloads/activities   # Import a folder of .fit files
  $ trainingload                                 # Open the dashboard
  $ trainingload export --format csv --out load.csv

Configuration lives in ~/.trainingload/config.json and is created on first run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		app := tui.NewApp(e.query, e.importer, e.cfg.Display)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import FIT files or folders of FIT files",
	Long: `Import decodes each .fit file, scores it and stores it. Folders are
searched recursively. Sessions already imported (same sport and start time)
are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		paths, err := fitfile.Expand(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no .fit files found")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		progress := make(chan service.ImportProgress)
		printed := make(chan struct{})
		go func() {
			defer close(printed)
			printProgress(cmd.OutOrStdout(), progress)
		}()

		result, err := e.importer.ImportFiles(ctx, paths, progress)
		<-printed
		if result != nil {
			printImportSummary(cmd.OutOrStdout(), result)
		}
		return err
	}),
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute training effect, personal bests and the load series",
	Long: `Rebuild recomputes everything derived from stored sessions. Run it after
changing FTP, heart rate settings or threshold pace.`,
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		if err := e.importer.Rebuild(cmd.Context()); err != nil {
			return err
		}
		color.Green("Rebuilt derived metrics")
		return nil
	}),
}

var (
	exportFormat string
	exportOutput string
	exportWhat   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the daily load series or the session list",
	Long: `Export writes the daily CTL/ATL/TSB/ACWR series (or one row per session
with --what sessions) as CSV or Parquet.

EXAMPLES:

  trainingload export                                   # CSV to stdout
  trainingload export --format parquet --out load.parquet
  trainingload export --what sessions --out sessions.csv`,
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		if format == export.FormatParquet && exportOutput == "" {
			return fmt.Errorf("parquet export needs --out")
		}

		var buf bytes.Buffer
		switch exportWhat {
		case "daily":
			metrics, err := e.importer.RecomputeLoad(time.Now())
			if err != nil {
				return err
			}
			err = writeExport(&buf, format,
				func(w io.Writer) error { return export.WriteDailyMetricsCSV(w, metrics) },
				func() ([]byte, error) { return export.MarshalDailyMetricsParquet(metrics) })
			if err != nil {
				return err
			}
		case "sessions":
			sessions, err := e.query.AllSessions()
			if err != nil {
				return err
			}
			err = writeExport(&buf, format,
				func(w io.Writer) error { return export.WriteSessionsCSV(w, sessions) },
				func() ([]byte, error) { return export.MarshalSessionsParquet(sessions) })
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown export %q (want daily or sessions)", exportWhat)
		}

		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(exportOutput, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		color.Green("Exported %s to %s", exportWhat, exportOutput)
		return nil
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		if err := e.query.RenameSession(args[0], args[1]); err != nil {
			return err
		}
		color.Green("Renamed %s", args[0])
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a session and rebuild records and load",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		if err := e.importer.DeleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("Deleted %s", args[0])
		return nil
	}),
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server so AI assistants can read training
load, coaching, sessions and personal bests, and import FIT files.

  {
    "mcpServers": {
      "trainingload": { "command": "trainingload", "args": ["mcp"] }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return mcp.NewServer(e.query, e.importer, e.log).Serve(ctx)
	}),
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or parquet")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "output file (default stdout, csv only)")
	exportCmd.Flags().StringVar(&exportWhat, "what", "daily", "what to export: daily or sessions")

	rootCmd.AddCommand(importCmd, rebuildCmd, exportCmd, renameCmd, deleteCmd, mcpCmd)
}

// withEnv opens config, logging and storage around a command
func withEnv(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if errors.Is(err, errConfigCreated) {
			return nil
		}
		if err != nil {
			return err
		}
		defer e.Close()

		if err := fn(cmd, e, args); err != nil {
			e.log.Errorw("Command failed", "command", cmd.Name(), "error", err)
			return err
		}
		return nil
	}
}

func writeExport(w io.Writer, format export.Format, writeCSV func(io.Writer) error, marshalParquet func() ([]byte, error)) error {
	if format == export.FormatCSV {
		return writeCSV(w)
	}
	data, err := marshalParquet()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printProgress(w io.Writer, progress <-chan service.ImportProgress) {
	for p := range progress {
		switch {
		case p.Phase == "load":
			fmt.Fprintln(w, color.CyanString("Recomputing training load..."))
		case p.Error != nil:
			fmt.Fprintf(w, "  %s %s: %v\n", color.RedString("failed"), p.CurrentFile, p.Error)
		default:
			fmt.Fprintf(w, "[%d/%d] %s\n", p.Completed+1, p.Total, p.CurrentFile)
		}
	}
}

func printImportSummary(w io.Writer, r *service.ImportResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s  %d duplicates skipped  %d errors\n",
		color.GreenString("%d imported", r.Imported), r.Duplicates, len(r.Errors))

	for _, ip := range r.NewPBs {
		d := service.FormatPersonalBest(ip.PB())
		line := fmt.Sprintf("  New %s %s: %s", d.Record.Sport, d.Label, color.New(color.Bold).Sprint(d.Value))
		if prev := ip.Previous(); prev != nil {
			line += color.HiBlackString(" (was %s)", service.FormatPersonalBest(*prev).Value)
		}
		fmt.Fprintln(w, line)
	}
}
