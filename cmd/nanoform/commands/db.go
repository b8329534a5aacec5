package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanoform/nanoform/config"
	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/storage"
	"github.com/nanoform/nanoform/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the nanoform database",
	Long: sym.DB + ` db — Manage nanoform database operations

Examples:
  nanoform db stats             # Show concept and run counts
  nanoform db stats --runs 10   # Show the last 10 evaluation runs`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics and recent evaluation runs",
	RunE:  runDbStats,
}

var statsRunsFlag int

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	dbStatsCmd.Flags().IntVar(&statsRunsFlag, "runs", 5, "Number of recent runs to show")
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	runStore := storage.NewRunStore(database)
	stats, err := runStore.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:  %s\n", cfg.Database.Path)
	fmt.Printf("Concepts:       %d\n", stats.Concepts)
	fmt.Printf("Runs:           %d\n", stats.Runs)
	fmt.Printf("Predictions:    %d\n", stats.Predictions)
	fmt.Println()

	runs, err := runStore.Recent(statsRunsFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No evaluation runs recorded yet.")
		return nil
	}

	fmt.Printf("Recent Evaluation Runs (last %d):\n", statsRunsFlag)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	for _, r := range runs {
		marker := sym.Check
		if r.Failed > 0 {
			marker = sym.Warn
		}
		if r.KBFault {
			marker = sym.Cross
		}
		fmt.Printf("%s %s  kb v%s  %d records (%d failed)  %s  %s\n",
			marker, r.ID[:8], r.KBVersion, r.Total, r.Failed,
			r.Elapsed.Round(time.Millisecond),
			r.StartedAt.Format(time.RFC3339))
	}
	return nil
}
