package syncrun

import (
	"subsyncarr/internal/engine"
)

// FileResult holds the outcome of every selected engine for one subtitle. A
// kind missing from Engines was not selected; it did not fail. Media is empty
// when no matching video was found.
type FileResult struct {
	File    string                         `json:"file"`
	Media   string                         `json:"media,omitempty"`
	Engines map[engine.Kind]engine.Outcome `json:"engines"`
}

// Failure is the diagnostic detail of one failed engine run.
type Failure struct {
	Engine   engine.Kind `json:"engine"`
	Message  string      `json:"message"`
	ExitCode *int        `json:"exitCode,omitempty"`
	Signal   string      `json:"signal,omitempty"`
	Stderr   string      `json:"stderr,omitempty"`
	Stdout   string      `json:"stdout,omitempty"`
	Command  string      `json:"command,omitempty"`
}

// Report aggregates a run. A path appears under Success only if at least one
// engine succeeded for it and under Failure only if at least one failed.
type Report struct {
	Success map[string][]engine.Kind `json:"success"`
	Failure map[string][]Failure     `json:"failure"`
}

// NewReport returns an empty report.
func NewReport() Report {
	return Report{
		Success: map[string][]engine.Kind{},
		Failure: map[string][]Failure{},
	}
}

// Merge folds incoming results into existing, keyed by file path. Engines are
// listed in canonical order. A path seen again replaces its earlier entries.
func Merge(existing Report, incoming []FileResult) Report {
	if existing.Success == nil {
		existing.Success = map[string][]engine.Kind{}
	}
	if existing.Failure == nil {
		existing.Failure = map[string][]Failure{}
	}
	for _, result := range incoming {
		var succeeded []engine.Kind
		var failed []Failure
		for _, kind := range engine.All {
			outcome, ok := result.Engines[kind]
			if !ok {
				continue
			}
			if outcome.Success {
				succeeded = append(succeeded, kind)
				continue
			}
			failed = append(failed, Failure{
				Engine:   kind,
				Message:  outcome.Message,
				ExitCode: outcome.ExitCode,
				Signal:   outcome.Signal,
				Stderr:   outcome.Stderr,
				Stdout:   outcome.Stdout,
				Command:  outcome.Command,
			})
		}

		delete(existing.Success, result.File)
		delete(existing.Failure, result.File)
		if len(succeeded) > 0 {
			existing.Success[result.File] = succeeded
		}
		if len(failed) > 0 {
			existing.Failure[result.File] = failed
		}
	}
	return existing
}

// Counts summarizes a report: files with at least one success and files with
// at least one failure. A file can count toward both.
func (r Report) Counts() (succeeded, failed int) {
	return len(r.Success), len(r.Failure)
}
