package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subsyncarr/internal/config"
)

const userAgent = "subsyncarr/0.1.0"

// RunSummary describes a finished synchronization run.
type RunSummary struct {
	RunID     string
	Trigger   string
	Engines   []string
	Files     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Service defines the notification surface used by the orchestrator.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifyRunFailed(ctx context.Context, runID string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		emptyRuns: cfg.Notifications.NotifyEmptyRuns,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	emptyRuns bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	if summary.Files == 0 && !n.emptyRuns {
		return nil
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d subtitles with %s", summary.Files, strings.Join(summary.Engines, ", "))
	fmt.Fprintf(&builder, "\n%d succeeded, %d failed", summary.Succeeded, summary.Failed)
	if summary.Duration > 0 {
		fmt.Fprintf(&builder, " in %s", summary.Duration.Round(time.Second))
	}
	if summary.Trigger != "" {
		fmt.Fprintf(&builder, "\nTriggered by %s", summary.Trigger)
	}

	data := payload{
		title:   "subsyncarr - Sync Complete",
		message: builder.String(),
		tags:    []string{"subsyncarr", "sync", "completed"},
	}
	if summary.Failed > 0 {
		data.title = "subsyncarr - Sync Finished With Failures"
		data.tags = []string{"subsyncarr", "sync", "warning"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID string, err error) error {
	message := "Sync run failed"
	if err != nil {
		message = fmt.Sprintf("Sync run failed: %v", err)
	}
	if runID = strings.TrimSpace(runID); runID != "" {
		message += "\nRun " + runID
	}
	data := payload{
		title:    "subsyncarr - Sync Failed",
		message:  message,
		tags:     []string{"subsyncarr", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "subsyncarr - Test",
		message:  "Notification system test",
		tags:     []string{"subsyncarr", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
