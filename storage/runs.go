package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nanoform/nanoform/batch"
	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
)

// RunStore persists evaluation runs and their per-record predictions.
type RunStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, logger: logger.Logger}
}

// Run is one persisted evaluation run.
type Run struct {
	ID        string        `json:"id"`
	KBVersion string        `json:"kb_version"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	KBFault   bool          `json:"kb_fault"`
}

// RunWriter streams one run's records into the store. Create it with
// Start, feed it records via Record (safe to wire as a batch observer),
// and seal the run with Finish.
type RunWriter struct {
	store     *RunStore
	id        string
	startedAt time.Time
	err       error
}

// Start registers a new run and returns a writer for its records.
func (s *RunStore) Start(kbVersion string) (*RunWriter, error) {
	w := &RunWriter{
		store:     s,
		id:        uuid.NewString(),
		startedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO evaluation_runs (id, kb_version, started_at)
		VALUES (?, ?, ?)
	`, w.id, kbVersion, w.startedAt)
	if err != nil {
		return nil, errors.Wrap(err, "register evaluation run")
	}
	return w, nil
}

// ID returns the run's identifier.
func (w *RunWriter) ID() string { return w.id }

// Record persists one output record. The first storage error sticks and is
// surfaced by Finish; later calls become no-ops so a batch observer does
// not spam a broken connection.
func (w *RunWriter) Record(rec batch.OutputRecord) {
	if w.err != nil {
		return
	}

	var ruleID, affinity, monolayer string
	var confidence float64
	if rec.Prediction != nil {
		ruleID = rec.Prediction.RuleID
		affinity = rec.Prediction.Affinity
		monolayer = rec.Prediction.Monolayer
		confidence = rec.Prediction.Confidence
	}

	_, err := w.store.db.Exec(`
		INSERT INTO run_predictions
			(run_id, record_index, context, rule_id, affinity, monolayer, confidence, decision, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.id, rec.Index, rec.Context.SourceCode, ruleID, affinity, monolayer, confidence,
		string(rec.Decision), rec.Error)
	if err != nil {
		w.err = errors.Wrapf(err, "persist prediction %d", rec.Index)
		w.store.logger.Errorw("Failed to persist prediction",
			logger.FieldRunID, w.id,
			logger.FieldError, w.err)
	}
}

// Finish records the run summary and returns any record-persistence error.
func (w *RunWriter) Finish(summary batch.Summary) error {
	if w.err != nil {
		return w.err
	}
	kbFault := 0
	if summary.KBFault {
		kbFault = 1
	}
	_, err := w.store.db.Exec(`
		UPDATE evaluation_runs
		SET elapsed_ms = ?, total = ?, succeeded = ?, failed = ?, kb_fault = ?
		WHERE id = ?
	`, summary.Elapsed.Milliseconds(), summary.Total, summary.Succeeded, summary.Failed, kbFault, w.id)
	if err != nil {
		return errors.Wrapf(err, "finalize run %s", w.id)
	}
	return nil
}

// Get returns one run by id.
func (s *RunStore) Get(id string) (*Run, error) {
	var r Run
	var elapsedMS int64
	var kbFault int
	err := s.db.QueryRow(`
		SELECT id, kb_version, started_at, elapsed_ms, total, succeeded, failed, kb_fault
		FROM evaluation_runs WHERE id = ?
	`, id).Scan(&r.ID, &r.KBVersion, &r.StartedAt, &elapsedMS, &r.Total, &r.Succeeded, &r.Failed, &kbFault)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "run %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query run %s", id)
	}
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	r.KBFault = kbFault != 0
	return &r, nil
}

// Recent returns the most recent runs, newest first.
func (s *RunStore) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, kb_version, started_at, elapsed_ms, total, succeeded, failed, kb_fault
		FROM evaluation_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query recent runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var elapsedMS int64
		var kbFault int
		if err := rows.Scan(&r.ID, &r.KBVersion, &r.StartedAt, &elapsedMS,
			&r.Total, &r.Succeeded, &r.Failed, &kbFault); err != nil {
			return nil, errors.Wrap(err, "scan run row")
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		r.KBFault = kbFault != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats summarizes what the database holds.
type Stats struct {
	Concepts    int `json:"concepts"`
	Runs        int `json:"runs"`
	Predictions int `json:"predictions"`
}

// Stats returns row counts across the schema.
func (s *RunStore) Stats() (Stats, error) {
	var st Stats
	for _, q := range []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM thesaurus_concepts", &st.Concepts},
		{"SELECT COUNT(*) FROM evaluation_runs", &st.Runs},
		{"SELECT COUNT(*) FROM run_predictions", &st.Predictions},
	} {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return Stats{}, errors.Wrap(err, "gather database stats")
		}
	}
	return st, nil
}
