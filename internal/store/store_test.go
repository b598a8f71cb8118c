package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(runID string) *RunReport {
	return &RunReport{
		RunID:          runID,
		Objective:      "maximize",
		Selection:      "rank",
		Adaptive:       true,
		PopulationSize: 20,
		Generations:    50,
		Exploration:    0.25,
		KeepTop:        2,
		BestParameters: map[string]float64{"x": 9.8, "y": 9.9},
		Prediction:     19.7,
		History:        []float64{15.1, 17.2, 19.7},
		CreatedAt:      time.Now().UTC(),
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	report := testReport("run_1")
	require.NoError(t, fs.SaveReport(report))

	loaded, err := fs.LoadReport("run_1")
	require.NoError(t, err)

	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.BestParameters, loaded.BestParameters)
	assert.Equal(t, report.History, loaded.History)
	assert.Equal(t, report.Prediction, loaded.Prediction)
	assert.Equal(t, report.Selection, loaded.Selection)
}

func TestSaveReportOverwrites(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	first := testReport("run_1")
	require.NoError(t, fs.SaveReport(first))

	second := testReport("run_1")
	second.Prediction = 20.0
	require.NoError(t, fs.SaveReport(second))

	loaded, err := fs.LoadReport("run_1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, loaded.Prediction)
}

func TestSaveReportValidation(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, fs.SaveReport(nil))
	assert.Error(t, fs.SaveReport(&RunReport{}))
}

func TestLoadReportNotFound(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.LoadReport("missing")
	require.Error(t, err)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.RunID)
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFSStore(dir)
	require.NoError(t, err)

	ids, err := fs.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, fs.SaveReport(testReport("run_b")))
	require.NoError(t, fs.SaveReport(testReport("run_a")))

	ids, err = fs.ListRuns()
	require.NoError(t, err)
	assert.Equal(t, []string{"run_a", "run_b"}, ids)

	// Report file, not just the directory, decides membership.
	assert.FileExists(t, filepath.Join(dir, "runs", "run_a", "report.json"))
}
