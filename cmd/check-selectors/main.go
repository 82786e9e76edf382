// Manual check for site layout drift. Runs one live town search and one
// detail page with the default selectors and reports what still matches.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/docketscan/internal/browser"
	"github.com/ppiankov/docketscan/internal/extract"
	"github.com/ppiankov/docketscan/internal/model"
	"github.com/ppiankov/docketscan/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	town := flag.String("town", "Middletown", "town to search")
	headless := flag.Bool("headless", true, "run the browser headless")
	flag.Parse()

	fmt.Println("=== Selector Drift Check ===")
	fmt.Println()

	cfg := model.DefaultConfig()
	cfg.Browser.Headless = *headless

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	session, err := browser.NewChrome(cfg.Browser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start browser: %v\n", err)
		return 1
	}
	p := pipeline.NewPipeline(session, cfg)
	defer func() { _ = p.Close() }()

	fmt.Printf("Searching: %s\n", *town)
	fmt.Println(strings.Repeat("-", 60))

	source, err := p.Search(ctx, *town)
	if err != nil {
		fmt.Printf("  ✗ Search failed: %v\n", err)
		return 1
	}

	records, err := extract.ParseResultsTable(source, cfg.Court.ResultsTableID)
	if err != nil {
		fmt.Printf("  ✗ Results page unreadable: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		msg := extract.NoResultsMessage(source, cfg.Court.NoResultsSelector)
		fmt.Printf("  ⚠️  No rows parsed (site message: %q)\n", msg)
		fmt.Println("     Check results_table_id and the row layout")
		return 1
	}
	fmt.Printf("  ✓ Parsed %d rows, first docket %s\n", len(records), records[0].Docket)

	enricher := pipeline.NewEnricher(session, cfg.Court, 0)
	record := records[0]
	fmt.Printf("\nDetail: %s\n", enricher.DetailURL(record.Docket))
	fmt.Println(strings.Repeat("-", 60))

	if err := enricher.Enrich(ctx, record); err != nil {
		fmt.Printf("  ✗ Detail page failed: %v\n", err)
		return 1
	}
	report("defendant_selector", record.Defendant)
	report("address_selector", record.PropertyAddress)

	fmt.Println("\n=== Check Complete ===")
	return 0
}

func report(selector, value string) {
	if value == "" {
		fmt.Printf("  ⚠️  %s matched nothing\n", selector)
		return
	}
	fmt.Printf("  ✓ %s: %s\n", selector, value)
}
