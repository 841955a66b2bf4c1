package api

import (
	"encoding/json"

	"subsyncarr/internal/scan"
	"subsyncarr/internal/syncrun"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Request headers carrying per-run engine overrides.
const (
	HeaderAudioTrackLanguage = "AUDIO_TRACK_LANGUAGE"
	HeaderFFsubsyncArgs      = "FFSUBSYNC_ARGS"
	HeaderAutosubsyncArgs    = "AUTOSUBSYNC_ARGS"
	HeaderAlassArgs          = "ALASS_ARGS"
	HeaderOverwrite          = "OVERWRITE"
)

// PathsResponse wraps a scan of the configured roots.
type PathsResponse struct {
	Directories scan.Result `json:"directories"`
}

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	Engine []string `json:"engine"`
	Path   []string `json:"path"`
}

// SyncHeaders are the optional overrides sent alongside a SyncRequest.
type SyncHeaders struct {
	AudioTrackLanguage string
	FFsubsyncArgs      string
	AutosubsyncArgs    string
	AlassArgs          string
	Overwrite          *bool
}

// SyncResponse reports a finished run.
type SyncResponse struct {
	Message string         `json:"message"`
	RunID   string         `json:"runId"`
	Engines []string       `json:"engines"`
	Files   int            `json:"files"`
	Report  syncrun.Report `json:"report"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	// HeldForSeconds is set on 409 responses.
	HeldForSeconds float64 `json:"heldForSeconds,omitempty"`
}

// LockStatus mirrors the run lock.
type LockStatus struct {
	Held           bool    `json:"held"`
	HeldFor        string  `json:"heldFor,omitempty"`
	HeldForSeconds float64 `json:"heldForSeconds"`
	TimeoutSeconds float64 `json:"timeoutSeconds"`
}

// UnlockResponse reports the result of POST /unlock.
type UnlockResponse struct {
	Message string `json:"message"`
	// WasHeld is false when the lock was already free.
	WasHeld bool   `json:"wasHeld"`
	HeldFor string `json:"heldFor,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	HistoryDBPath  string             `json:"historyDbPath"`
	LockFilePath   string             `json:"lockFilePath"`
	MaxConcurrent  int                `json:"maxConcurrent"`
	IncludeEngines []string           `json:"includeEngines"`
	Lock           LockStatus         `json:"lock"`
	Dependencies   []DependencyStatus `json:"dependencies"`
}

// RunSummary describes one recorded run.
type RunSummary struct {
	ID              string          `json:"id"`
	Trigger         string          `json:"trigger"`
	Status          string          `json:"status"`
	StartedAt       string          `json:"startedAt"`
	FinishedAt      string          `json:"finishedAt,omitempty"`
	DurationSeconds float64         `json:"durationSeconds"`
	Engines         []string        `json:"engines"`
	Paths           []string        `json:"paths,omitempty"`
	FilesTotal      int             `json:"filesTotal"`
	FilesSucceeded  int             `json:"filesSucceeded"`
	FilesFailed     int             `json:"filesFailed"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	Report          json.RawMessage `json:"report,omitempty"`
}

// RunsResponse wraps recent runs, newest first.
type RunsResponse struct {
	Runs []RunSummary `json:"runs"`
}
