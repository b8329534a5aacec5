package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanoform/nanoform/cmd/nanoform/commands"
	"github.com/nanoform/nanoform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "nanoform",
	Short: "nanoform - Ligand-nanoparticle affinity classification engine",
	Long: `nanoform - Ripple-down rule classification for nanomedicine formulations.

nanoform evaluates ligand-nanoparticle formulations against a curated
ripple-down rule knowledge base, predicting binding affinity and protein
corona monolayer order with full provenance tracking.

Available commands:
  evaluate - Classify one concept or free-text description
  batch    - Evaluate JSONL case streams with a worker pool
  kb       - Inspect, validate, and self-test the knowledge base
  import   - Import thesaurus concepts from a CSV export
  db       - Manage the nanoform database

Examples:
  nanoform evaluate C1234              # Classify an imported thesaurus concept
  nanoform evaluate "PEGylated liposome with siRNA payload"
  nanoform batch -i cases.jsonl -o predictions.jsonl
  nanoform kb selftest                 # Replay cornerstone cases
  nanoform import -i thesaurus.csv     # Load the concept thesaurus
  nanoform db stats                    # Show database statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.InitializeWithLevel(jsonOutput, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit JSON logs and machine-readable output")

	rootCmd.AddCommand(commands.EvaluateCmd)
	rootCmd.AddCommand(commands.BatchCmd)
	rootCmd.AddCommand(commands.KbCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
