// Package store persists optimization run reports to durable storage.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RunReport captures the outcome of one optimization run: the settings that
// produced it, the best parameter assignment, its raw prediction, and the
// per-generation convergence history.
type RunReport struct {
	// RunID is the unique identifier for the run
	RunID string `json:"runId"`

	// Objective is the run direction, "maximize" or "minimize"
	Objective string `json:"objective"`

	// Selection is the selection strategy name
	Selection string `json:"selection"`

	// Adaptive records whether fitness-adaptive mutation was enabled
	Adaptive bool `json:"adaptive"`

	// PopulationSize is the number of individuals per generation
	PopulationSize int `json:"populationSize"`

	// Generations is the number of generational steps executed
	Generations int `json:"generations"`

	// Exploration is the base mutation rate used
	Exploration float64 `json:"exploration"`

	// KeepTop is the elitism count actually applied
	KeepTop int `json:"keepTop"`

	// BestParameters maps parameter names to the best assignment found
	BestParameters map[string]float64 `json:"bestParameters"`

	// Prediction is the raw score of the best assignment
	Prediction float64 `json:"prediction"`

	// History holds one rounded best-score observation per generation
	History []float64 `json:"history"`

	// CreatedAt records when the report was written
	CreatedAt time.Time `json:"createdAt"`
}

// NotFoundError is returned when no report exists for a run ID.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no report for run %q", e.RunID)
}

// FSStore persists run reports under a base directory, one JSON file per
// run at <baseDir>/runs/<runID>/report.json.
//
// Writes use the temp file + rename pattern, so concurrent readers never
// observe a partial report and no locking is needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-backed report store.
// The base directory is created if it does not exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// runDir returns the directory path for a given run ID.
func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, "runs", runID)
}

// reportPath returns the path to the report.json file for a run.
func (fs *FSStore) reportPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "report.json")
}

// SaveReport atomically writes the report for its run ID.
func (fs *FSStore) SaveReport(report *RunReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if report.RunID == "" {
		return fmt.Errorf("report runId cannot be empty")
	}

	if err := os.MkdirAll(fs.runDir(report.RunID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Write to temporary file first, then rename into place
	finalPath := fs.reportPath(report.RunID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	return nil
}

// LoadReport retrieves the report for the given run ID.
func (fs *FSStore) LoadReport(runID string) (*RunReport, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	data, err := os.ReadFile(fs.reportPath(runID))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}

// ListRuns returns the IDs of all stored runs, sorted.
func (fs *FSStore) ListRuns() ([]string, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(fs.reportPath(entry.Name())); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
