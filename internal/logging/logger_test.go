package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsyncarr/internal/config"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "debug",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPrintsComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewComponentLogger(logging.NewConsole(&buf, "info"), "scheduler")
	logger.Info("chunk complete", logging.Int("files", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO scheduler: chunk complete") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "files=2") {
		t.Fatalf("expected key=value attrs, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["msg"] != "json message" || record["k"] != "v" || record["level"] != "info" {
		t.Fatalf("unexpected json record: %v", record)
	}
}

func TestConsoleLoggerLeadsWithRunAndEngine(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewComponentLogger(logging.NewConsole(&buf, "info"), "scheduler").
		With(logging.String("file", "show.srt"))
	ctx := services.WithEngine(services.WithRunID(context.Background(), "run-1"), "alass")
	logging.WithContext(ctx, logger).Info("alass result: ok", logging.Int("exit", 0))

	line := strings.TrimSpace(buf.String())
	if !strings.HasSuffix(line, "INFO scheduler: alass result: ok run_id=run-1 engine=alass file=show.srt exit=0") {
		t.Fatalf("unexpected field order: %q", line)
	}
}

func TestConsoleLoggerFlattensGroupsAndQuotes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsole(&buf, "debug").WithGroup("media")
	logger.Debug("streams", logging.String("path", "/media/My Show.mkv"), logging.Int("audio", 2))

	line := buf.String()
	for _, want := range []string{`media.path="/media/My Show.mkv"`, "media.audio=2", "DEBUG streams"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestWarnWithContextAddsEventFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsole(&buf, "info")
	logging.WarnWithContext(logger, "lookup failed", "pairing_failed", logging.String(logging.FieldErrorHint, "check permissions"))

	line := buf.String()
	if !strings.Contains(line, "event_type=pairing_failed") || !strings.Contains(line, `error_hint="check permissions"`) {
		t.Fatalf("expected event fields, got %q", line)
	}
	if strings.Contains(line, "check logs for details") {
		t.Fatalf("explicit hint should win over the default, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-abc")
	ctx = services.WithEngine(ctx, "ffsubsync")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var buf bytes.Buffer
	logging.WithContext(ctx, logging.NewConsole(&buf, "info")).Info("contextual log")

	line := buf.String()
	for _, want := range []string{"run_id=run-abc", "engine=ffsubsync", "correlation_id=req-xyz"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("expected no-op logger to be disabled")
	}
}
