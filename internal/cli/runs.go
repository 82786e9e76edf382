package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/docketscan/internal/export"
	"github.com/ppiankov/docketscan/internal/store"
)

var runsLimit int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
	Long: `Inspect runs saved with --db.

Example:
  docketscan runs list --db ./output/runs.db
  docketscan runs show <run-id> --db ./output/runs.db
  docketscan runs find MMX-CV-24-6012345-S --db ./output/runs.db`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()

		runs, err := archive.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Town", "Started", "Duration", "Cases", "Failed"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.ID.String(),
				r.Town,
				r.StartedAt.Local().Format(time.DateTime),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
				r.Cases,
				r.Failed,
			})
		}
		t.Render()
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the records of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id: %w", err)
		}

		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()

		run, err := archive.LoadRun(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %s, %d cases\n", run.RunID, run.Town, len(run.Records))
		export.RenderRecords(os.Stdout, run.Records)
		if failed := run.Failed(); len(failed) > 0 {
			export.RenderFailures(os.Stdout, failed)
		}
		return nil
	},
}

var runsFindCmd = &cobra.Command{
	Use:   "find <docket>",
	Short: "Show every archived copy of a docket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()

		return findDocket(cmd.Context(), archive, args[0], os.Stdout)
	},
}

// findDocket renders the archived copies of docket, newest first
func findDocket(ctx context.Context, archive *store.Archive, docket string, w io.Writer) error {
	records, err := archive.FindDocket(ctx, strings.TrimSpace(docket))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("docket %s not found in archive", docket)
	}

	export.RenderRecords(w, records)
	return nil
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsFindCmd)

	runsCmd.PersistentFlags().String("db", "", "SQLite archive path")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
}

func openArchive(ctx context.Context) (*store.Archive, error) {
	path, _ := runsCmd.PersistentFlags().GetString("db")
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Output.Database
	}
	if path == "" {
		return nil, fmt.Errorf("no archive configured: pass --db or set output.database")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return store.Open(ctx, path)
}
