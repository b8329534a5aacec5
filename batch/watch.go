package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
)

// outputSuffix names the result file written next to each processed drop.
const outputSuffix = ".predictions.jsonl"

// settleDelay gives the producer time to finish writing a dropped file
// before we read it.
const settleDelay = 500 * time.Millisecond

// SnapshotFunc supplies the snapshot for the next file. Wiring it to
// kb.(*Watcher).Snapshot gives the drop loop hot KB rebuilds between files.
type SnapshotFunc func() *rdr.Snapshot

// WatchDir processes .jsonl files dropped into dir until the context is
// canceled. Each input file produces a sibling output file; per-file
// failures are logged and the loop keeps watching.
func WatchDir(ctx context.Context, dir string, snapshot SnapshotFunc, workers int) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer fsw.Close()
	if err := fsw.Add(dir); err != nil {
		return errors.Wrapf(err, "watch drop directory %s", dir)
	}

	logger.Infow("Watching drop directory",
		logger.FieldPath, dir,
		"workers", workers)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isDropFile(event.Name) {
				continue
			}
			// Let the producer finish writing.
			timer := time.NewTimer(settleDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			if err := processDrop(ctx, event.Name, snapshot(), workers); err != nil {
				logger.Errorw("Drop file processing failed",
					logger.FieldPath, event.Name,
					logger.FieldError, err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Drop directory watcher error",
				logger.FieldError, err)
		}
	}
}

func isDropFile(path string) bool {
	return strings.HasSuffix(path, ".jsonl") && !strings.HasSuffix(path, outputSuffix)
}

func processDrop(ctx context.Context, path string, snap *rdr.Snapshot, workers int) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open drop file %s", path)
	}
	defer in.Close()

	outPath := strings.TrimSuffix(path, ".jsonl") + outputSuffix
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "create output file %s", outPath)
	}
	defer out.Close()

	summary, err := NewRunner(snap, workers).Run(ctx, in, out)
	if err != nil {
		return err
	}

	logger.Infow("Drop file processed",
		logger.FieldPath, filepath.Base(path),
		logger.FieldCount, summary.Total,
		"failed", summary.Failed,
		logger.FieldKBVersion, snap.Version())
	return nil
}
