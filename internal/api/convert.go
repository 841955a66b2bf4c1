package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"subsyncarr/internal/deps"
	"subsyncarr/internal/engine"
	"subsyncarr/internal/history"
	"subsyncarr/internal/services"
	"subsyncarr/internal/syncrun"
)

// EnvFromHeaders reads per-run overrides from request headers. Blank headers
// are treated as unset.
func EnvFromHeaders(h http.Header) (engine.Env, error) {
	env := engine.Env{
		AudioTrackLanguage: strings.TrimSpace(h.Get(HeaderAudioTrackLanguage)),
		ExtraArgs: map[engine.Kind]string{
			engine.FFsubsync:   strings.TrimSpace(h.Get(HeaderFFsubsyncArgs)),
			engine.Autosubsync: strings.TrimSpace(h.Get(HeaderAutosubsyncArgs)),
			engine.Alass:       strings.TrimSpace(h.Get(HeaderAlassArgs)),
		},
	}
	if raw := strings.TrimSpace(h.Get(HeaderOverwrite)); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return engine.Env{}, services.Wrap(services.ErrValidation, "api", "parse headers",
				fmt.Sprintf("Invalid %s header %q", HeaderOverwrite, raw), err)
		}
		env.Overwrite = engine.Bool(value)
	}
	return env, nil
}

// Apply writes the non-empty overrides onto h.
func (s SyncHeaders) Apply(h http.Header) {
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			h.Set(key, value)
		}
	}
	set(HeaderAudioTrackLanguage, s.AudioTrackLanguage)
	set(HeaderFFsubsyncArgs, s.FFsubsyncArgs)
	set(HeaderAutosubsyncArgs, s.AutosubsyncArgs)
	set(HeaderAlassArgs, s.AlassArgs)
	if s.Overwrite != nil {
		h.Set(HeaderOverwrite, strconv.FormatBool(*s.Overwrite))
	}
}

// FromSyncResult converts a finished run into its response payload.
func FromSyncResult(req SyncRequest, result syncrun.Result) SyncResponse {
	names := make([]string, len(result.Engines))
	for i, kind := range result.Engines {
		names[i] = string(kind)
	}
	return SyncResponse{
		Message: fmt.Sprintf("Sync triggered for path: %s with engines: %s", strings.Join(req.Path, ","), strings.Join(names, ", ")),
		RunID:   result.RunID,
		Engines: names,
		Files:   result.Files,
		Report:  result.Report,
	}
}

// FromLockStatus converts the run lock state.
func FromLockStatus(status syncrun.LockStatus) LockStatus {
	out := LockStatus{
		Held:           status.Held,
		TimeoutSeconds: status.Timeout.Seconds(),
	}
	if status.Held {
		out.HeldFor = status.HeldFor.Round(time.Second).String()
		out.HeldForSeconds = status.HeldFor.Seconds()
	}
	return out
}

// FromDependencies converts dependency checks.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// FromRun converts a history record. The report is only included when
// withReport is set because it can be large.
func FromRun(run history.Run, withReport bool) RunSummary {
	summary := RunSummary{
		ID:              run.ID,
		Trigger:         run.Trigger,
		Status:          string(run.Status),
		DurationSeconds: run.Duration().Seconds(),
		Engines:         run.Engines,
		Paths:           run.Paths,
		FilesTotal:      run.FilesTotal,
		FilesSucceeded:  run.FilesSucceeded,
		FilesFailed:     run.FilesFailed,
		ErrorMessage:    run.ErrorMessage,
	}
	if !run.StartedAt.IsZero() {
		summary.StartedAt = run.StartedAt.UTC().Format(dateTimeFormat)
	}
	if !run.FinishedAt.IsZero() {
		summary.FinishedAt = run.FinishedAt.UTC().Format(dateTimeFormat)
	}
	if withReport && len(run.Report) > 0 {
		summary.Report = run.Report
	}
	return summary
}
