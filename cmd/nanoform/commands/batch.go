package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanoform/nanoform/batch"
	"github.com/nanoform/nanoform/config"
	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/rdr/kb"
	"github.com/nanoform/nanoform/recommend"
	"github.com/nanoform/nanoform/storage"
	"github.com/nanoform/nanoform/sym"
)

// BatchCmd represents the batch command
var BatchCmd = &cobra.Command{
	Use:   "batch",
	Short: sym.Batch + " Evaluate JSONL case streams",
	Long: sym.Batch + ` batch — Evaluate JSONL case streams with a worker pool

Reads one case per input line and writes one prediction per output line,
in input order. A malformed record fails alone; the batch keeps going.

With --watch, processes .jsonl files dropped into a directory until
interrupted, writing a sibling .predictions.jsonl for each. If the
configured rule table is a file, it is hot-rebuilt between files when
it changes on disk.

Examples:
  nanoform batch -i cases.jsonl -o predictions.jsonl
  nanoform batch -i cases.jsonl -o predictions.jsonl --workers 8 --report
  nanoform batch -i cases.jsonl -o predictions.jsonl --store
  nanoform batch --watch ./drop`,
	RunE: runBatch,
}

var (
	batchInput    string
	batchOutput   string
	batchWorkers  int
	batchLimit    int
	batchKBPath   string
	batchReport   bool
	batchStore    bool
	batchWatchDir string
)

func init() {
	BatchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Input JSONL file (- for stdin)")
	BatchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output JSONL file (- for stdout)")
	BatchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Worker pool size (default: configured or 4)")
	BatchCmd.Flags().IntVar(&batchLimit, "limit", 0, "Cap on input records (0 = no cap)")
	BatchCmd.Flags().StringVar(&batchKBPath, "kb", "", "Path to a rule table (default: configured or embedded)")
	BatchCmd.Flags().BoolVar(&batchReport, "report", false, "Print a decision tally after the run")
	BatchCmd.Flags().BoolVar(&batchStore, "store", false, "Persist the run and its predictions to the database")
	BatchCmd.Flags().StringVar(&batchWatchDir, "watch", "", "Process files dropped into this directory until interrupted")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}
	limit := batchLimit
	if limit <= 0 {
		limit = cfg.Batch.Limit
	}

	if batchWatchDir != "" {
		return runBatchWatch(cfg, workers)
	}

	if batchInput == "" || batchOutput == "" {
		return errors.New("batch requires --input and --output (or --watch DIR)")
	}

	snap, err := loadSnapshot(batchKBPath)
	if err != nil {
		return errors.Wrap(err, "failed to load knowledge base")
	}

	in := os.Stdin
	if batchInput != "-" {
		f, err := os.Open(batchInput)
		if err != nil {
			return errors.Wrapf(err, "failed to open input %s", batchInput)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if batchOutput != "-" {
		f, err := os.Create(batchOutput)
		if err != nil {
			return errors.Wrapf(err, "failed to create output %s", batchOutput)
		}
		defer f.Close()
		out = f
	}

	runner := batch.NewRunner(snap, workers).WithLimit(limit)

	var writer *storage.RunWriter
	if batchStore {
		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		writer, err = storage.NewRunStore(database).Start(snap.Version())
		if err != nil {
			return err
		}
		runner = runner.WithObserver(writer.Record)
	}

	summary, err := runner.Run(cmd.Context(), in, out)
	if err != nil {
		return err
	}

	if writer != nil {
		if err := writer.Finish(summary); err != nil {
			return err
		}
		logger.Infow("Run persisted", logger.FieldRunID, writer.ID())
	}

	if batchReport {
		fmt.Print(recommend.RenderBatchSummary(summary.Tally))
	}

	fmt.Printf("%s %d records: %d succeeded, %d failed (%s)\n",
		sym.Batch, summary.Total, summary.Succeeded, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	if summary.KBFault {
		fmt.Printf("%s knowledge base refused at least one case - run 'nanoform kb validate'\n", sym.Warn)
	}
	return nil
}

// runBatchWatch processes dropped files until interrupted. When the rule
// table comes from a file, a KB watcher hot-rebuilds it between files.
func runBatchWatch(cfg *config.Config, workers int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tablePath := batchKBPath
	if tablePath == "" {
		tablePath = cfg.KB.TablePath
	}

	var snapshot batch.SnapshotFunc
	if tablePath != "" && cfg.KB.Watch {
		watcher, err := kb.NewWatcher(tablePath)
		if err != nil {
			return errors.Wrap(err, "failed to start KB watcher")
		}
		defer watcher.Stop()
		watcher.Start()
		snapshot = watcher.Snapshot
	} else {
		snap, err := loadSnapshot(tablePath)
		if err != nil {
			return errors.Wrap(err, "failed to load knowledge base")
		}
		snapshot = func() *rdr.Snapshot { return snap }
	}

	err := batch.WatchDir(ctx, batchWatchDir, snapshot, workers)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
