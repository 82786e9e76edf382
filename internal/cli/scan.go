package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/docketscan/internal/export"
	"github.com/ppiankov/docketscan/internal/model"
	"github.com/ppiankov/docketscan/internal/store"
	"github.com/ppiankov/docketscan/internal/worker"
)

var (
	townsFile   string
	withPhones  bool
	scanTimeout time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [town...]",
	Short: "Search towns and export enriched case records",
	Long: `Scan runs the property-address search for each town, enriches every
case from its detail page and writes the records as CSV.

A navigation failure stops the run unless --continue-on-error is set, in
which case failed records are reported (and retried with --retries).

Example:
  docketscan scan Middletown
  docketscan scan --towns-file towns.txt --out ./output/cases.csv
  docketscan scan Hartford --continue-on-error --retries 2 --phones`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&townsFile, "towns-file", "", "file with one town per line")
	scanCmd.Flags().BoolVar(&withPhones, "phones", false, "look up phone candidates for enriched records")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "overall scan timeout (0 for none)")

	scanCmd.Flags().String("out", "./output/cases.csv", "output CSV path")
	scanCmd.Flags().String("db", "", "SQLite archive path (optional)")
	scanCmd.Flags().Bool("table", true, "print results as a table")
	scanCmd.Flags().Bool("continue-on-error", false, "record enrichment failures instead of stopping")
	scanCmd.Flags().Int("retries", 0, "retry failed enrichments this many times")
	scanCmd.Flags().Duration("rate-limit", 2*time.Second, "pause before each phone lookup")
	scanCmd.Flags().Bool("headless", true, "run the browser headless")

	bindFlags(scanCmd, map[string]string{
		"output.csv_path":          "out",
		"output.database":          "db",
		"output.table":             "table",
		"enrich.continue_on_error": "continue-on-error",
		"enrich.retries":           "retries",
		"people.rate_limit":        "rate-limit",
		"browser.headless":         "headless",
	})
}

// bindFlags binds config keys to a command's flags
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// commandContext cancels on interrupt and after timeout when set
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	towns := append([]string{}, args...)
	if townsFile != "" {
		fromFile, err := worker.ReadTownsFromFile(townsFile)
		if err != nil {
			return fmt.Errorf("read towns file: %w", err)
		}
		towns = append(towns, fromFile...)
	}
	if len(towns) == 0 {
		return fmt.Errorf("no towns given: pass towns as arguments or use --towns-file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(scanTimeout)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scanning %d town(s)\n", len(towns))
	}

	results, runErr := p.RunTowns(ctx, towns)

	var lookupErr error
	if withPhones {
		for _, result := range results {
			candidates, err := p.LookupCandidates(ctx, result.Records)
			result.Candidates = candidates
			if err != nil {
				lookupErr = fmt.Errorf("phone lookup: %w", err)
				break
			}
		}
	}

	var records []*model.CaseRecord
	var failed []model.EnrichOutcome
	for _, result := range results {
		records = append(records, result.Records...)
		failed = append(failed, result.Failed()...)
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ %s: %d cases (%d enriched) in %s\n",
				result.Town, len(result.Records), countEnriched(result.Records), result.Duration().Round(time.Millisecond))
		}
	}

	written, err := exportRecords(cfg.Output.CSVPath, records, runErr)
	switch {
	case err != nil:
		slog.Warn("csv export failed", "path", cfg.Output.CSVPath, "error", err)
	case !written:
		slog.Warn("run aborted, csv export skipped", "path", cfg.Output.CSVPath)
	case cfg.Output.Verbose:
		fmt.Fprintf(os.Stderr, "✓ Wrote %d records to %s\n", len(records), cfg.Output.CSVPath)
	}

	if cfg.Output.Database != "" {
		if err := archiveRuns(ctx, cfg.Output.Database, results); err != nil {
			slog.Warn("archive failed", "path", cfg.Output.Database, "error", err)
		}
	}

	if cfg.Output.Table {
		export.RenderRecords(os.Stdout, records)
		if len(failed) > 0 {
			export.RenderFailures(os.Stdout, failed)
		}
		for _, result := range results {
			for _, record := range result.Records {
				if candidates := result.Candidates[record.Docket]; len(candidates) > 0 {
					fmt.Printf("\nCandidates for %s (%s):\n", record.Docket, record.Defendant)
					export.RenderCandidates(os.Stdout, candidates)
				}
			}
		}
	}

	return errors.Join(runErr, lookupErr)
}

// exportRecords writes the CSV only for runs that completed; an aborted run
// leaves the previous export untouched
func exportRecords(path string, records []*model.CaseRecord, runErr error) (bool, error) {
	if runErr != nil {
		return false, nil
	}
	if err := export.SaveCSV(path, records); err != nil {
		return false, err
	}
	return true, nil
}

func countEnriched(records []*model.CaseRecord) int {
	n := 0
	for _, record := range records {
		if record.IsEnriched() {
			n++
		}
	}
	return n
}

func archiveRuns(ctx context.Context, path string, results []*model.RunResult) error {
	archive, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = archive.Close() }()

	for _, result := range results {
		if err := archive.SaveRun(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
