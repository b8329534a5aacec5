package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/recommend"
)

// DefaultWorkers is the pool size when the config leaves it unset.
const DefaultWorkers = 4

// maxLineBytes bounds one JSONL line; thesaurus definitions run long but
// nowhere near this.
const maxLineBytes = 1 << 20

// Summary aggregates one batch run.
type Summary struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Tally     recommend.Tally `json:"tally"`
	Elapsed   time.Duration   `json:"-"`

	// KBFault marks that at least one failure was the knowledge base's own
	// (root refused a case). Per-record processing continues, but the run as
	// a whole must not pass silently.
	KBFault bool `json:"kb_fault,omitempty"`
}

// Runner evaluates JSONL case streams against one published snapshot with a
// bounded worker pool. The snapshot is immutable, so workers share it
// without locks.
type Runner struct {
	snap     *rdr.Snapshot
	workers  int
	limit    int
	observer func(OutputRecord)
}

// NewRunner returns a runner with the given pool size (0 means
// DefaultWorkers).
func NewRunner(snap *rdr.Snapshot, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{snap: snap, workers: workers}
}

// WithLimit caps the number of input records processed (0 = no cap).
func (r *Runner) WithLimit(limit int) *Runner {
	r.limit = limit
	return r
}

// WithObserver registers a callback invoked for every output record, in
// input order, as it is written. Used to persist run results.
func (r *Runner) WithObserver(fn func(OutputRecord)) *Runner {
	r.observer = fn
	return r
}

// Run reads JSONL cases from in, evaluates them, and writes one JSONL result
// per input line to out, in input order. Record-level faults (bad JSON,
// invalid attributes, no applicable rule) land in that record's Error field;
// Run itself errors only on I/O or cancellation.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	start := time.Now()

	lines, err := readLines(ctx, in, r.limit)
	if err != nil {
		return Summary{}, err
	}

	results := make([]OutputRecord, len(lines))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.evaluateLine(i, lines[i])
			}
		}()
	}

	feed := func() error {
		defer close(jobs)
		for i := range lines {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	feedErr := feed()
	wg.Wait()
	if feedErr != nil {
		return Summary{}, feedErr
	}

	summary := Summary{Total: len(results)}
	writer := bufio.NewWriter(out)
	enc := json.NewEncoder(writer)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return summary, errors.Wrap(err, "write batch output")
		}
		if r.observer != nil {
			r.observer(res)
		}
		if res.Error != "" {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Tally.Add(res.Decision)
	}
	if err := writer.Flush(); err != nil {
		return summary, errors.Wrap(err, "flush batch output")
	}

	for _, res := range results {
		if res.kbFault {
			summary.KBFault = true
			break
		}
	}
	summary.Elapsed = time.Since(start)

	logger.Infow("Batch run complete",
		logger.FieldCount, summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		logger.FieldDurationMS, summary.Elapsed.Milliseconds())
	return summary, nil
}

func (r *Runner) evaluateLine(index int, line []byte) OutputRecord {
	var in InputRecord
	if err := json.Unmarshal(line, &in); err != nil {
		return OutputRecord{Index: index, Error: errors.Wrap(err, "parse input record").Error()}
	}

	c, err := in.Case()
	if err != nil {
		return OutputRecord{Index: index, Context: in.Context, Error: err.Error()}
	}

	pred, err := rdr.Evaluate(r.snap, c)
	if err != nil {
		logger.Errorw("Case evaluation failed",
			logger.FieldCaseCode, in.Context.SourceCode,
			logger.FieldError, err)
		return OutputRecord{
			Index:   index,
			Context: in.Context,
			Error:   err.Error(),
			kbFault: errors.Is(err, errors.ErrNoApplicableRule),
		}
	}

	out := OutputRecord{Index: index, Context: in.Context, Prediction: &pred}
	if pred.Asserted == nil {
		out.Decision = recommend.Decide(pred.Affinity, pred.Monolayer, pred.Confidence)
	}
	return out
}

// readLines slurps non-empty JSONL lines, honoring the limit and the
// context.
func readLines(ctx context.Context, in io.Reader, limit int) ([][]byte, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines [][]byte
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}
		copied := make([]byte, len(line))
		copy(copied, line)
		lines = append(lines, copied)
		if limit > 0 && len(lines) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read batch input")
	}
	return lines, nil
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r' || b[start] == '\n') {
		start++
	}
	return b[start:]
}
