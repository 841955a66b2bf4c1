package syncrun

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subsyncarr/internal/config"
	"subsyncarr/internal/engine"
	"subsyncarr/internal/history"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/media/ffprobe"
	"subsyncarr/internal/notifications"
	"subsyncarr/internal/scan"
	"subsyncarr/internal/services"
)

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Notifier announces finished runs.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, summary notifications.RunSummary) error
	NotifyRunFailed(ctx context.Context, runID string, err error) error
}

// Request asks for a path-scoped run. Paths become include roots; configured
// exclusions still apply.
type Request struct {
	Engines []string
	Paths   []string
	Env     engine.Env
	// Trigger names what started the run (api, cli) for history.
	Trigger string
}

// Result is a finished run.
type Result struct {
	RunID   string        `json:"runId"`
	Engines []engine.Kind `json:"engines"`
	Files   int           `json:"files"`
	Report  Report        `json:"report"`
	// Details lists every processed file in scan order, including files
	// without a matching video.
	Details []FileResult `json:"details,omitempty"`
}

// LockStatus describes the run lock.
type LockStatus struct {
	Held    bool          `json:"held"`
	HeldFor time.Duration `json:"heldFor"`
	Timeout time.Duration `json:"timeout"`
}

// Orchestrator owns the process-wide run lock and drives scans and runs.
type Orchestrator struct {
	cfg       *config.Config
	lock      *RunLock
	scheduler *Scheduler
	recorder  Recorder
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*orchestratorOptions)

type orchestratorOptions struct {
	runners  map[engine.Kind]Runner
	match    MatchFunc
	recorder Recorder
	notifier Notifier
	lock     *RunLock
	exec     engine.Executor
}

// WithRunners replaces the engine adapters built from configuration.
func WithRunners(runners map[engine.Kind]Runner) Option {
	return func(o *orchestratorOptions) { o.runners = runners }
}

// WithMatcher replaces media pairing.
func WithMatcher(match MatchFunc) Option {
	return func(o *orchestratorOptions) { o.match = match }
}

// WithRecorder persists every run through recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *orchestratorOptions) { o.recorder = recorder }
}

// WithNotifier announces every finished run through n.
func WithNotifier(n Notifier) Option {
	return func(o *orchestratorOptions) { o.notifier = n }
}

// WithLock shares an existing lock.
func WithLock(lock *RunLock) Option {
	return func(o *orchestratorOptions) { o.lock = lock }
}

// WithExecutor swaps the process runner used by the configured adapters.
func WithExecutor(exec engine.Executor) Option {
	return func(o *orchestratorOptions) { o.exec = exec }
}

// New builds an orchestrator from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "syncrun", "new", "Configuration is required", nil)
	}
	var o orchestratorOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.runners == nil {
		var adapterOpts []engine.AdapterOption
		if o.exec != nil {
			adapterOpts = append(adapterOpts, engine.WithExecutor(o.exec))
		}
		registry, err := engine.NewRegistry(cfg, ffprobe.NewLocator(cfg.Engines.FFprobeBinary), logger, adapterOpts...)
		if err != nil {
			return nil, err
		}
		o.runners = make(map[engine.Kind]Runner, len(engine.All))
		for _, kind := range engine.All {
			if adapter, ok := registry.Adapter(kind); ok {
				o.runners[kind] = adapter
			}
		}
	}
	if o.lock == nil {
		o.lock = NewRunLock(time.Duration(cfg.Sync.LockTimeoutMinutes) * time.Minute)
	}

	return &Orchestrator{
		cfg:       cfg,
		lock:      o.lock,
		scheduler: NewScheduler(o.runners, o.match, logger),
		recorder:  o.recorder,
		notifier:  o.notifier,
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
		now:       time.Now,
	}, nil
}

// ScanConfig returns the configured roots, or paths as include roots when
// any are given.
func (o *Orchestrator) ScanConfig(paths []string) scan.Config {
	include := o.cfg.Scan.IncludePaths
	if len(paths) > 0 {
		include = paths
	}
	return scan.Config{
		IncludeRoots: append([]string(nil), include...),
		ExcludeRoots: append([]string(nil), o.cfg.Scan.ExcludePaths...),
	}
}

// ScanDirectories performs read-only discovery. It does not take the run lock.
func (o *Orchestrator) ScanDirectories(cfg scan.Config) (scan.Result, error) {
	if len(cfg.IncludeRoots) == 0 {
		return scan.Result{}, services.Wrap(services.ErrValidation, "syncrun", "scan", "No scan paths configured", nil)
	}
	return scan.Scan(cfg)
}

// Status reports the run lock state.
func (o *Orchestrator) Status() LockStatus {
	heldFor, held := o.lock.HeldDuration()
	return LockStatus{Held: held, HeldFor: heldFor, Timeout: o.lock.Timeout()}
}

// ForceUnlock frees the run lock unconditionally.
func (o *Orchestrator) ForceUnlock() {
	heldFor, held := o.lock.HeldDuration()
	o.lock.Release()
	if held {
		o.logger.Warn("run lock force-released",
			logging.Duration("held_for", heldFor),
			logging.String(logging.FieldEventType, "lock_forced"),
			logging.String(logging.FieldErrorHint, "an in-flight run keeps going until its engines exit"),
		)
		return
	}
	o.logger.Info("unlock requested while no run was active")
}

// EffectiveKinds validates requested engine names and restricts them to the
// configured include_engines filter. An empty request selects every allowed
// engine.
func (o *Orchestrator) EffectiveKinds(requested []string) ([]engine.Kind, error) {
	allowed := engine.AllowedKinds(o.cfg)
	if len(requested) == 0 {
		return allowed, nil
	}
	kinds, err := engine.ParseKinds(requested)
	if err != nil {
		return nil, err
	}
	effective := engine.Intersect(kinds, allowed)
	if len(effective) == 0 {
		return nil, services.Wrap(services.ErrValidation, "syncrun", "select engines",
			fmt.Sprintf("None of the requested engines are enabled (enabled: %s)", joinKinds(allowed)), nil)
	}
	return effective, nil
}

// Sync validates req, then under the run lock scans its paths and runs every
// discovered subtitle. Validation failures never touch the lock or the
// filesystem.
func (o *Orchestrator) Sync(ctx context.Context, req Request) (Result, error) {
	if len(req.Engines) == 0 || len(req.Paths) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "syncrun", "sync", "Missing engine or path parameter", nil)
	}
	kinds, err := o.EffectiveKinds(req.Engines)
	if err != nil {
		return Result{}, err
	}
	scanCfg := o.ScanConfig(req.Paths)
	return o.run(ctx, runSpec{
		kinds:   kinds,
		env:     req.Env,
		max:     o.cfg.Sync.MaxConcurrent,
		paths:   req.Paths,
		trigger: req.Trigger,
		files: func() ([]string, error) {
			result, err := scan.Scan(scanCfg)
			if err != nil {
				return nil, err
			}
			return result.SubtitleFiles, nil
		},
	})
}

// RunSync runs an explicit list of subtitles under the run lock. A busy lock
// yields a *services.LockBusyError instead of blocking.
func (o *Orchestrator) RunSync(ctx context.Context, files []string, kinds []engine.Kind, env engine.Env, maxConcurrent int) (Result, error) {
	for _, kind := range kinds {
		if !kind.Valid() {
			return Result{}, services.Wrap(services.ErrValidation, "syncrun", "run", fmt.Sprintf("Invalid engines: %s", kind), nil)
		}
	}
	return o.run(ctx, runSpec{
		kinds:   kinds,
		env:     env,
		max:     maxConcurrent,
		trigger: "direct",
		files:   func() ([]string, error) { return files, nil },
	})
}

type runSpec struct {
	kinds   []engine.Kind
	env     engine.Env
	max     int
	paths   []string
	trigger string
	files   func() ([]string, error)
}

func (o *Orchestrator) run(ctx context.Context, spec runSpec) (result Result, err error) {
	if !o.lock.TryAcquire() {
		heldFor, _ := o.lock.HeldDuration()
		return Result{}, &services.LockBusyError{HeldFor: heldFor}
	}

	// In-flight runs are not cancellable; engines always run to completion.
	ctx = context.WithoutCancel(ctx)
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	started := o.now()
	result = Result{RunID: runID, Engines: spec.kinds, Report: NewReport()}

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "sync run panicked", "run_panic", logging.Any("panic", r))
			err = services.Wrap(services.ErrInternal, "syncrun", "run", "Internal error during sync", fmt.Errorf("panic: %v", r))
		}
		o.lock.Release()
		finished := o.now()
		o.record(ctx, spec, result, started, finished, err)
		o.notify(ctx, spec, result, finished.Sub(started), err)
	}()

	files, err := spec.files()
	if err != nil {
		return result, err
	}
	result.Files = len(files)
	env := spec.env.Merge(engine.DefaultEnv(o.cfg))

	logger.Info("sync run started",
		logging.Int("files", len(files)),
		logging.String("engines", joinKinds(spec.kinds)),
		logging.Int("max_concurrent", spec.max),
	)

	result.Details = o.scheduler.RunAll(ctx, files, spec.kinds, env, spec.max, func(_ int, chunk []FileResult) {
		result.Report = Merge(result.Report, chunk)
	})

	succeeded, failed := result.Report.Counts()
	logger.Info("sync run finished",
		logging.Int("files", len(files)),
		logging.Int("files_succeeded", succeeded),
		logging.Int("files_failed", failed),
		logging.Duration("elapsed", o.now().Sub(started)),
	)
	return result, nil
}

func (o *Orchestrator) record(ctx context.Context, spec runSpec, result Result, started, finished time.Time, runErr error) {
	if o.recorder == nil {
		return
	}
	succeeded, failed := result.Report.Counts()
	entry := history.Run{
		ID:             result.RunID,
		Trigger:        spec.trigger,
		Status:         history.StatusCompleted,
		StartedAt:      started,
		FinishedAt:     finished,
		Engines:        kindNames(spec.kinds),
		Paths:          spec.paths,
		FilesTotal:     result.Files,
		FilesSucceeded: succeeded,
		FilesFailed:    failed,
	}
	if runErr != nil {
		entry.Status = history.StatusFailed
		entry.ErrorMessage = runErr.Error()
	}
	if encoded, err := json.Marshal(result.Report); err == nil {
		entry.Report = encoded
	}
	if err := o.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
		)
	}
}

func (o *Orchestrator) notify(ctx context.Context, spec runSpec, result Result, elapsed time.Duration, runErr error) {
	if o.notifier == nil {
		return
	}
	var err error
	if runErr != nil {
		err = o.notifier.NotifyRunFailed(ctx, result.RunID, runErr)
	} else {
		succeeded, failed := result.Report.Counts()
		err = o.notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
			RunID:     result.RunID,
			Trigger:   spec.trigger,
			Engines:   kindNames(spec.kinds),
			Files:     result.Files,
			Succeeded: succeeded,
			Failed:    failed,
			Duration:  elapsed,
		})
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func kindNames(kinds []engine.Kind) []string {
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	return names
}

func joinKinds(kinds []engine.Kind) string {
	return strings.Join(kindNames(kinds), ", ")
}
