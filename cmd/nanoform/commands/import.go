package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/storage"
	"github.com/nanoform/nanoform/sym"
)

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import",
	Short: sym.DB + " Import thesaurus concepts from CSV",
	Long: sym.DB + ` import — Import thesaurus concepts from a CSV export

Expects the standard thesaurus columns (Code, Display Name, Synonyms,
Definition, Semantic Type, Concept in Subset). Re-importing replaces
concepts with the same code.

Examples:
  nanoform import -i thesaurus.csv
  nanoform import -i thesaurus.csv --db research.db`,
	RunE: runImport,
}

var (
	importInput  string
	importDBPath string
)

func init() {
	ImportCmd.Flags().StringVarP(&importInput, "input", "i", "", "CSV file to import (required)")
	ImportCmd.Flags().StringVar(&importDBPath, "db", "", "Path to the concept database")
	ImportCmd.MarkFlagRequired("input")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importInput)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", importInput)
	}
	defer f.Close()

	database, err := openDatabase(importDBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := storage.NewConceptStore(database).ImportCSV(f)
	if err != nil {
		return errors.Wrapf(err, "import of %s failed", importInput)
	}

	fmt.Printf("%s imported %d concepts from %s\n", sym.Check, n, importInput)
	return nil
}
