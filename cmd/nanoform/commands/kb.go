package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/rdr/kb"
	"github.com/nanoform/nanoform/sym"
)

// KbCmd represents the kb command
var KbCmd = &cobra.Command{
	Use:   "kb",
	Short: sym.KB + " Inspect the knowledge base",
	Long: sym.KB + ` kb — Inspect, validate, and self-test the knowledge base

Examples:
  nanoform kb show                   # Print the rule tree
  nanoform kb show --kb custom.toml  # Print another table
  nanoform kb validate custom.toml   # Assemble a table without evaluating
  nanoform kb selftest               # Replay cornerstone cases`,
}

var kbShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the rule tree",
	RunE:  runKbShow,
}

var kbValidateCmd = &cobra.Command{
	Use:   "validate [TABLE]",
	Short: "Assemble a rule table and report its shape",
	Long: `Assemble a rule table, enforcing every structural invariant:
tautological root, unique rule ids, known parents and conditions,
confidences in range, and a supported version. Without an argument the
configured (or embedded) table is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKbValidate,
}

var kbSelftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Replay every cornerstone case against the embedded tables",
	RunE:  runKbSelftest,
}

var (
	kbShowPath   string
	kbShowFormat string
)

func init() {
	kbShowCmd.Flags().StringVar(&kbShowPath, "kb", "", "Path to a rule table (default: configured or embedded)")
	kbShowCmd.Flags().StringVar(&kbShowFormat, "format", "table", "Output format: table or yaml")

	KbCmd.AddCommand(kbShowCmd)
	KbCmd.AddCommand(kbValidateCmd)
	KbCmd.AddCommand(kbSelftestCmd)
}

func runKbShow(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(kbShowPath)
	if err != nil {
		return errors.Wrap(err, "failed to load knowledge base")
	}

	switch kbShowFormat {
	case "yaml":
		return showYAML(snap)
	case "table":
	default:
		return errors.Newf("unknown format %q (want table or yaml)", kbShowFormat)
	}

	pterm.DefaultSection.Printf("%s knowledge base v%s (%d rules, depth %d)",
		sym.KB, snap.Version(), snap.Len(), snap.Depth())

	snap.Walk(func(r *rdr.Rule, depth int) {
		indent := strings.Repeat("  ", depth)
		fmt.Printf("%s%s %s  %s\n",
			indent, pterm.LightCyan(r.ID), pterm.Gray("if "+r.Condition.Name()),
			describeConclusion(r))
	})
	return nil
}

// ruleYAML is the flattened rule shape emitted by kb show --format yaml.
type ruleYAML struct {
	ID         string  `yaml:"id"`
	Depth      int     `yaml:"depth"`
	Condition  string  `yaml:"condition"`
	Conclusion string  `yaml:"conclusion"`
	Confidence float64 `yaml:"confidence"`
}

func showYAML(snap *rdr.Snapshot) error {
	doc := struct {
		Version string     `yaml:"version"`
		Rules   []ruleYAML `yaml:"rules"`
	}{Version: snap.Version()}

	snap.Walk(func(r *rdr.Rule, depth int) {
		doc.Rules = append(doc.Rules, ruleYAML{
			ID:         r.ID,
			Depth:      depth,
			Condition:  r.Condition.Name(),
			Conclusion: describeConclusion(r),
			Confidence: r.Confidence,
		})
	})

	out, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to render tree")
	}
	fmt.Print(string(out))
	return nil
}

func describeConclusion(r *rdr.Rule) string {
	c := r.Conclusion
	if c.Kind == rdr.AssertConclusion {
		return fmt.Sprintf("assert %s.%s from %s.%s (x%.2f)",
			c.Slot, c.Attr, c.Source.Slot, c.Source.Attr, r.Confidence)
	}
	return fmt.Sprintf("%s/%s (x%.2f)", c.Affinity, c.Monolayer, r.Confidence)
}

func runKbValidate(cmd *cobra.Command, args []string) error {
	var (
		snap *rdr.Snapshot
		err  error
		name = "embedded"
	)
	if len(args) == 1 {
		name = args[0]
		snap, err = kb.LoadFile(args[0])
	} else {
		snap, err = loadSnapshot("")
	}
	if err != nil {
		fmt.Printf("%s %s: %v\n", sym.Cross, name, err)
		return errors.Wrap(err, "table rejected")
	}

	fmt.Printf("%s %s: v%s, %d rules, depth %d\n",
		sym.Check, name, snap.Version(), snap.Len(), snap.Depth())
	return nil
}

func runKbSelftest(cmd *cobra.Command, args []string) error {
	report, err := kb.SelfTest()
	if err != nil {
		return errors.Wrap(err, "self-test could not run")
	}

	if report.OK() {
		fmt.Printf("%s %d cornerstone cases replayed, all conclusions stable\n", sym.Check, report.Cases)
		return nil
	}

	fmt.Printf("%s %d of %d cornerstone cases diverged:\n", sym.Cross, len(report.Failures), report.Cases)
	for _, f := range report.Failures {
		fmt.Printf("  %s %s\n", sym.Warn, f)
	}
	return errors.Newf("%d cornerstone regressions", len(report.Failures))
}
