package history

import (
	"encoding/json"
	"time"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one persisted synchronization run.
type Run struct {
	ID             string          `json:"id"`
	Trigger        string          `json:"trigger"`
	Status         Status          `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at,omitempty"`
	Engines        []string        `json:"engines"`
	Paths          []string        `json:"paths,omitempty"`
	FilesTotal     int             `json:"files_total"`
	FilesSucceeded int             `json:"files_succeeded"`
	FilesFailed    int             `json:"files_failed"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Report         json.RawMessage `json:"report,omitempty"`
}

// Duration returns how long the run took, or zero if it never finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
