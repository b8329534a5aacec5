package commands

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/extract"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/recommend"
	"github.com/nanoform/nanoform/storage"
	"github.com/nanoform/nanoform/sym"
)

// EvaluateCmd represents the evaluate command
var EvaluateCmd = &cobra.Command{
	Use:   "evaluate CODE|TEXT",
	Short: sym.Rule + " Classify a concept or free-text description",
	Long: sym.Rule + ` evaluate — Classify one formulation

Accepts either a thesaurus code (looked up in the imported concept
database) or a free-text formulation description. The extraction
heuristics build a structured case, the rule tree classifies it, and
the resulting prediction is synthesized into a production recommendation.

Examples:
  nanoform evaluate C1234
  nanoform evaluate "PEGylated liposome loaded with siRNA"
  nanoform evaluate C1234 --plain          # No terminal styling
  nanoform evaluate C1234 --json           # Machine-readable report
  nanoform evaluate C1234 --kb custom.toml # Evaluate against another table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

var (
	evaluateKBPath string
	evaluateDBPath string
	evaluatePlain  bool
)

func init() {
	EvaluateCmd.Flags().StringVar(&evaluateKBPath, "kb", "", "Path to a rule table (default: configured or embedded)")
	EvaluateCmd.Flags().StringVar(&evaluateDBPath, "db", "", "Path to the concept database")
	EvaluateCmd.Flags().BoolVar(&evaluatePlain, "plain", false, "Plain-text report without terminal styling")
}

// conceptCodeRE matches thesaurus codes like C1234.
var conceptCodeRE = regexp.MustCompile(`^[Cc]\d+$`)

func runEvaluate(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	extractor, err := extract.New()
	if err != nil {
		return errors.Wrap(err, "failed to build extractor")
	}

	var c *rdr.Case
	if conceptCodeRE.MatchString(input) {
		concept, err := lookupConcept(input)
		if err != nil {
			return err
		}
		c = extractor.CaseFromConcept(*concept)
	} else {
		c = extractor.CaseFromText(input)
	}

	snap, err := loadSnapshot(evaluateKBPath)
	if err != nil {
		return errors.Wrap(err, "failed to load knowledge base")
	}

	pred, err := rdr.Evaluate(snap, c)
	if err != nil {
		return errors.Wrap(err, "evaluation failed")
	}

	report := recommend.Synthesize(pred, c.Context)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	switch {
	case jsonOutput:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to format report")
		}
		fmt.Println(string(out))
	case evaluatePlain:
		fmt.Print(recommend.RenderPlain(report))
	default:
		fmt.Print(recommend.RenderTerminal(report))
	}
	return nil
}

func lookupConcept(code string) (*extract.Concept, error) {
	database, err := openDatabase(evaluateDBPath)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	concept, err := storage.NewConceptStore(database).GetByCode(strings.ToUpper(code))
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Newf("concept %s not found - run 'nanoform import' first, or quote a free-text description", code)
	}
	if err != nil {
		return nil, err
	}
	return concept, nil
}
