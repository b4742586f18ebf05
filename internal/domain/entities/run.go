package entities

import (
	"fmt"
	"time"
)

// RunStatus is the outcome of an ingestion run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// UnresolvedKey is an accord-sheet row whose code matched no perfume.
type UnresolvedKey struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Row  int    `json:"row"` // 1-indexed sheet row
}

func (u UnresolvedKey) String() string {
	return fmt.Sprintf("row %d: key %q (%s) has no matching perfume", u.Row, u.Key, u.Name)
}

// Run records one execution of the pipeline.
type Run struct {
	ID           string          `json:"id"`
	SourcePath   string          `json:"source_path"`
	OutputDir    string          `json:"output_dir"`
	Status       RunStatus       `json:"status"`
	Perfumes     int             `json:"perfumes"`
	Accords      int             `json:"accords"`
	FilesWritten int             `json:"files_written"`
	Unresolved   []UnresolvedKey `json:"unresolved,omitempty"`
	Error        string          `json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
