package daemon_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"subsyncarr/internal/api"
	"subsyncarr/internal/config"
	"subsyncarr/internal/daemon"
	"subsyncarr/internal/engine"
	"subsyncarr/internal/history"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/syncrun"
	"subsyncarr/internal/testsupport"
)

type okRunner struct{ kind engine.Kind }

func (r okRunner) Run(_ context.Context, subtitlePath, _ string, _ engine.Env) engine.Outcome {
	return engine.Outcome{Success: true, Message: "Successfully processed: " + r.kind.OutputPath(subtitlePath)}
}

func newDaemon(t *testing.T) (*daemon.Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	orch, err := syncrun.New(cfg, logging.NewNop(),
		syncrun.WithRecorder(store),
		syncrun.WithRunners(map[engine.Kind]syncrun.Runner{
			engine.FFsubsync:   okRunner{kind: engine.FFsubsync},
			engine.Autosubsync: okRunner{kind: engine.Autosubsync},
			engine.Alass:       okRunner{kind: engine.Alass},
		}),
	)
	if err != nil {
		t.Fatalf("syncrun.New: %v", err)
	}
	d, err := daemon.New(cfg, orch, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, testsupport.MediaDir(cfg)
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Status(ctx).Running {
		t.Fatal("expected daemon to report running")
	}
	if d.Address() == "" {
		t.Fatal("expected api listen address")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to report stopped")
	}
	if d.Address() != "" {
		t.Fatal("expected no listen address after Stop")
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first := bareDaemon(t, cfg)
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	second := bareDaemon(t, cfg)
	err := second.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected already running error, got %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("expected lock to be free after Stop, got %v", err)
	}
}

func bareDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	orch, err := syncrun.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("syncrun.New: %v", err)
	}
	d, err := daemon.New(cfg, orch, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDaemonServesSyncOverHTTP(t *testing.T) {
	d, media := newDaemon(t)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	subtitle := testsupport.WritePair(t, filepath.Join(media, "Movie (2020)"), "Movie.2020", ".mkv")

	client := api.NewClient(d.Address(), "")
	resp, err := client.Sync(ctx, api.SyncRequest{Engine: []string{"alass"}, Path: []string{media}}, api.SyncHeaders{})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if resp.Files != 1 || resp.RunID == "" {
		t.Fatalf("unexpected sync response: %+v", resp)
	}
	if len(resp.Report.Success[subtitle]) != 1 {
		t.Fatalf("expected one success entry for %s, got %+v", subtitle, resp.Report)
	}

	runs, err := client.Runs(ctx, 5)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs.Runs) != 1 || runs.Runs[0].ID != resp.RunID || runs.Runs[0].Status != string(history.StatusCompleted) {
		t.Fatalf("unexpected run history: %+v", runs.Runs)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Running || status.Lock.Held {
		t.Fatalf("unexpected status: %+v", status)
	}

	_, err = client.Sync(ctx, api.SyncRequest{Path: []string{media}}, api.SyncHeaders{})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing engine, got %v", err)
	}
}
