package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"subsyncarr/internal/config"
	"subsyncarr/internal/deps"
	"subsyncarr/internal/history"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/syncrun"
)

// Daemon serves the HTTP API around one orchestrator and enforces
// single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	orch   *syncrun.Orchestrator
	store  *history.Store

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	api     *apiServer
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	HistoryDBPath string
	LockFilePath  string
	Lock          syncrun.LockStatus
	Dependencies  []deps.Status
}

// New constructs a daemon with initialized dependencies. store may be nil, in
// which case run history is unavailable.
func New(cfg *config.Config, orch *syncrun.Orchestrator, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || orch == nil {
		return nil, errors.New("daemon requires config and orchestrator")
	}
	lockPath := cfg.DaemonLockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		orch:     orch,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another subsyncarr daemon instance or local sync is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv := newAPIServer(d.cfg, d, d.logger)
	if err := srv.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.api = srv
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("subsyncarr daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", srv.address()),
	)
	return nil
}

// Stop shuts the API server down and releases the daemon lock. An in-flight
// sync run keeps going until its engines exit.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.api = nil
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("subsyncarr daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Address returns the API listen address, or "" when not running.
func (d *Daemon) Address() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.api == nil {
		return ""
	}
	return d.api.address()
}

// Orchestrator exposes the run coordinator.
func (d *Daemon) Orchestrator() *syncrun.Orchestrator {
	return d.orch
}

// ListRuns returns recent run history.
func (d *Daemon) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.List(ctx, limit)
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Lock:         d.orch.Status(),
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
	if d.store != nil {
		status.HistoryDBPath = d.store.Path()
	}
	return status
}
