package storage

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoform/nanoform/batch"
	dbtest "github.com/nanoform/nanoform/internal/testing"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/recommend"
)

func openRunStore(t *testing.T) *RunStore {
	t.Helper()
	return NewRunStore(dbtest.CreateTestDB(t))
}

func TestRunWriterPersistsRecords(t *testing.T) {
	store := openRunStore(t)

	w, err := store.Start("1.2.0")
	require.NoError(t, err)
	require.NotEmpty(t, w.ID())

	w.Record(batch.OutputRecord{
		Index:   0,
		Context: rdr.Context{SourceCode: "C1234"},
		Prediction: &rdr.Prediction{
			RuleID:     "metallic_adsorption",
			Affinity:   "high",
			Monolayer:  "ordered",
			Confidence: 0.81,
		},
		Decision: recommend.DecisionApproved,
	})
	w.Record(batch.OutputRecord{
		Index:   1,
		Context: rdr.Context{SourceCode: "C5678"},
		Error:   "nanoparticle.type: confidence out of [0,1]",
	})

	summary := batch.Summary{Total: 2, Succeeded: 1, Failed: 1, Elapsed: 120 * time.Millisecond}
	require.NoError(t, w.Finish(summary))

	run, err := store.Get(w.ID())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", run.KBVersion)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.KBFault)
	assert.Equal(t, 120*time.Millisecond, run.Elapsed)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 2, stats.Predictions)
}

func TestRunWriterMarksKBFault(t *testing.T) {
	store := openRunStore(t)

	w, err := store.Start("1.2.0")
	require.NoError(t, err)
	require.NoError(t, w.Finish(batch.Summary{Total: 1, Failed: 1, KBFault: true}))

	run, err := store.Get(w.ID())
	require.NoError(t, err)
	assert.True(t, run.KBFault)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openRunStore(t)

	first, err := store.Start("1.1.0")
	require.NoError(t, err)
	require.NoError(t, first.Finish(batch.Summary{}))

	// started_at has second resolution in SQLite comparisons; force ordering
	_, err = store.db.Exec("UPDATE evaluation_runs SET started_at = datetime('now', '-1 hour') WHERE id = ?", first.ID())
	require.NoError(t, err)

	second, err := store.Start("1.2.0")
	require.NoError(t, err)
	require.NoError(t, second.Finish(batch.Summary{}))

	runs, err := store.Recent(5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID(), runs[0].ID)
	assert.Equal(t, first.ID(), runs[1].ID)
}

func TestRunWriterStickyError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewRunStore(conn)

	mock.ExpectExec("INSERT INTO evaluation_runs").
		WithArgs(sqlmock.AnyArg(), "1.2.0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO run_predictions").
		WillReturnError(assert.AnError)

	w, err := store.Start("1.2.0")
	require.NoError(t, err)

	w.Record(batch.OutputRecord{Index: 0})
	// second record must not hit the database after the first failure
	w.Record(batch.OutputRecord{Index: 1})

	err = w.Finish(batch.Summary{Total: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist prediction 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
