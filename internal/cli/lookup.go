package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docketscan/internal/export"
)

var (
	lookupName    string
	lookupAddress string
	lookupJSON    bool
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up phone candidates for a name and address",
	Long: `Lookup searches the people-search site and prints up to five candidates
with their phone numbers. Candidates are unverified; the similarity column
compares names only and is shown for reference.

Example:
  docketscan lookup --name "John Smith" --address "12 Main St, Middletown, CT 06457"
  docketscan lookup --name "Jane Doe" --address "Hartford, CT" --json`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupName, "name", "", "person name")
	lookupCmd.Flags().StringVar(&lookupAddress, "address", "", "street, city, state zip")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print candidates as JSON")
	_ = lookupCmd.MarkFlagRequired("name")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	candidates, err := p.Lookup(ctx, lookupName, lookupAddress)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No candidates with phone numbers found")
		return nil
	}
	export.RenderCandidates(os.Stdout, candidates)
	return nil
}
